package codec

import (
	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
)

type keyAttaching[K, R any] struct {
	keyCodec    MapCodec[K]
	attachments func(K) (attach.Bindings, error)
	inner       MapCodec[R]
	keyOf       func(R) (K, error)
	keyLast     bool
}

// KeyAttaching reads a key with keyCodec, derives bindings from it and makes
// them visible to inner. On encode the key comes from keyOf and is written
// before inner. A keyOf failure is recorded on the builder and inner is not
// encoded.
func KeyAttaching[K, R any](keyCodec MapCodec[K], attachments func(K) (attach.Bindings, error), inner MapCodec[R], keyOf func(R) (K, error)) MapCodec[R] {
	return keyAttaching[K, R]{keyCodec: keyCodec, attachments: attachments, inner: inner, keyOf: keyOf}
}

// KeyAttachingSingle is KeyAttaching where the key itself is attached under key.
func KeyAttachingSingle[A, R any](key *attach.Key[A], keyCodec MapCodec[A], inner MapCodec[R], keyOf func(R) (A, error)) MapCodec[R] {
	return KeyAttaching(keyCodec, single(key), inner, keyOf)
}

// MutKeyAttaching is KeyAttaching with inner encoded first and the key
// written afterwards, so inner may change what the key value refers to.
func MutKeyAttaching[K, R any](keyCodec MapCodec[K], attachments func(K) (attach.Bindings, error), inner MapCodec[R], keyOf func(R) (K, error)) MapCodec[R] {
	return keyAttaching[K, R]{keyCodec: keyCodec, attachments: attachments, inner: inner, keyOf: keyOf, keyLast: true}
}

// MutKeyAttachingSingle attaches the key under key and writes whatever value
// key holds once inner has been encoded.
func MutKeyAttachingSingle[A, R any](key *attach.Key[A], keyCodec MapCodec[A], inner MapCodec[R], keyOf func(R) (A, error)) MapCodec[R] {
	return mutKeyAttachingSingle[A, R]{key: key, keyCodec: keyCodec, inner: inner, keyOf: keyOf}
}

func single[A any](key *attach.Key[A]) func(A) (attach.Bindings, error) {
	return func(a A) (attach.Bindings, error) {
		return attach.Bindings{attach.Bind(key, a)}, nil
	}
}

func (c keyAttaching[K, R]) Keys() []string {
	return concatKeys(c.keyCodec.Keys(), c.inner.Keys())
}

func (c keyAttaching[K, R]) Decode(ops Ops, m MapLike) Result[R] {
	k, err := c.keyCodec.Decode(ops, m).Get()
	if err != nil {
		return Failure[R](err)
	}
	bindings, err := c.attachments(k)
	if err != nil {
		return Failure[R](err)
	}
	wrapped, release := pushAll(ops, bindings)
	defer release()
	return c.inner.Decode(wrapped, m)
}

func (c keyAttaching[K, R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	k, err := c.keyOf(v)
	if err != nil {
		return b.WithError(errors.KeyDerivation(err))
	}
	bindings, err := c.attachments(k)
	if err != nil {
		return b.WithError(err)
	}
	if !c.keyLast {
		b = c.keyCodec.Encode(k, ops, b)
	}
	b = c.encodeInner(v, ops, b, bindings)
	if c.keyLast {
		b = c.keyCodec.Encode(k, ops, b)
	}
	return b
}

func (c keyAttaching[K, R]) encodeInner(v R, ops Ops, b *RecordBuilder, bindings attach.Bindings) *RecordBuilder {
	wrapped, release := pushAll(ops, bindings)
	defer release()
	restore := b.Rebind(wrapped)
	defer restore()
	return c.inner.Encode(v, wrapped, b)
}

type mutKeyAttachingSingle[A, R any] struct {
	key      *attach.Key[A]
	keyCodec MapCodec[A]
	inner    MapCodec[R]
	keyOf    func(R) (A, error)
}

func (c mutKeyAttachingSingle[A, R]) Keys() []string {
	return concatKeys(c.keyCodec.Keys(), c.inner.Keys())
}

func (c mutKeyAttachingSingle[A, R]) Decode(ops Ops, m MapLike) Result[R] {
	return keyAttaching[A, R]{keyCodec: c.keyCodec, attachments: single(c.key), inner: c.inner}.Decode(ops, m)
}

func (c mutKeyAttachingSingle[A, R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	a, err := c.keyOf(v)
	if err != nil {
		return b.WithError(errors.KeyDerivation(err))
	}
	final, b := c.encodeInner(a, v, ops, b)
	return c.keyCodec.Encode(final, ops, b)
}

// encodeInner encodes v with a attached and returns the value the key holds
// when inner is done.
func (c mutKeyAttachingSingle[A, R]) encodeInner(a A, v R, ops Ops, b *RecordBuilder) (A, *RecordBuilder) {
	wrapped, s := WithStore(ops)
	c.key.Push(s, a)
	popped := false
	defer func() {
		if !popped {
			c.key.Pop(s)
		}
	}()

	restore := b.Rebind(wrapped)
	b = c.inner.Encode(v, wrapped, b)
	restore()

	final, _ := c.key.Pop(s)
	popped = true
	return final, b
}
