package codec

import (
	"github.com/wippyai/attachments/attach"
)

type attaching[R any] struct {
	inner    Codec[R]
	bindings attach.Bindings
}

// Attaching pushes bindings around every call to inner. The bindings are
// popped when inner returns, including when it fails or panics.
func Attaching[R any](inner Codec[R], bindings ...attach.Binding) Codec[R] {
	return attaching[R]{inner: inner, bindings: bindings}
}

func (c attaching[R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	wrapped, release := pushAll(ops, c.bindings)
	defer release()
	return c.inner.Decode(wrapped, in)
}

func (c attaching[R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	wrapped, release := pushAll(ops, c.bindings)
	defer release()
	return c.inner.Encode(v, wrapped, prefix)
}

type attachingMap[R any] struct {
	inner    MapCodec[R]
	bindings attach.Bindings
}

// AttachingMap is Attaching for map codecs.
func AttachingMap[R any](inner MapCodec[R], bindings ...attach.Binding) MapCodec[R] {
	return attachingMap[R]{inner: inner, bindings: bindings}
}

func (c attachingMap[R]) Keys() []string {
	return c.inner.Keys()
}

func (c attachingMap[R]) Decode(ops Ops, m MapLike) Result[R] {
	wrapped, release := pushAll(ops, c.bindings)
	defer release()
	return c.inner.Decode(wrapped, m)
}

func (c attachingMap[R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	wrapped, release := pushAll(ops, c.bindings)
	defer release()
	restore := b.Rebind(wrapped)
	defer restore()
	return c.inner.Encode(v, wrapped, b)
}
