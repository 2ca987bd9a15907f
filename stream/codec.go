package stream

import (
	"github.com/wippyai/attachments/attach"
)

// Codec reads and writes V on a Buffer. Both directions fail fast; after a
// failed Decode the read position is unspecified.
type Codec[V any] interface {
	Decode(b *Buffer) (V, error)
	Encode(b *Buffer, v V) error
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs[V any] struct {
	DecodeFunc func(b *Buffer) (V, error)
	EncodeFunc func(b *Buffer, v V) error
}

func (c CodecFuncs[V]) Decode(b *Buffer) (V, error) {
	return c.DecodeFunc(b)
}

func (c CodecFuncs[V]) Encode(b *Buffer, v V) error {
	return c.EncodeFunc(b, v)
}

// Of builds a Codec from a decode and an encode function.
func Of[V any](decode func(b *Buffer) (V, error), encode func(b *Buffer, v V) error) Codec[V] {
	return CodecFuncs[V]{DecodeFunc: decode, EncodeFunc: encode}
}

// ChildFactory creates the buffer for a length-delimited sub-region of parent.
// capacityHint is the region length on decode and 0 on encode.
type ChildFactory func(capacityHint int, parent *Buffer) *Buffer

// NewChild returns a pooled buffer sharing parent's transport, with its own
// cursor and a fresh store. Release returns it to the pool.
func NewChild(capacityHint int, parent *Buffer) *Buffer {
	stage := getStage(capacityHint)
	child := NewBuffer(stage, WithTransport(parent.Transport()), WithStore(attach.NewStore()))
	child.stage = stage
	return child
}

// DefaultChild is the ChildFactory used when none is given.
var DefaultChild ChildFactory = NewChild

// Unit decodes to v without reading and encodes nothing.
func Unit[V any](v V) Codec[V] {
	return Of(
		func(*Buffer) (V, error) { return v, nil },
		func(*Buffer, V) error { return nil },
	)
}
