package codec

import (
	"github.com/wippyai/attachments/errors"
)

// Decoded is a decoded value and the input left over after it.
type Decoded[R any] struct {
	Value R
	Rest  Node
}

// Codec converts between R and a node.
type Codec[R any] interface {
	Decode(ops Ops, in Node) Result[Decoded[R]]
	Encode(v R, ops Ops, prefix Node) Result[Node]
}

// MapCodec converts between R and a set of fields in a map node.
type MapCodec[R any] interface {
	Keys() []string
	Decode(ops Ops, m MapLike) Result[R]
	Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder
}

// Func adapts a pair of functions to Codec.
type Func[R any] struct {
	DecodeFunc func(ops Ops, in Node) Result[Decoded[R]]
	EncodeFunc func(v R, ops Ops, prefix Node) Result[Node]
}

func (f Func[R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	return f.DecodeFunc(ops, in)
}

func (f Func[R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	return f.EncodeFunc(v, ops, prefix)
}

// Of builds a Codec from a decode and an encode function.
func Of[R any](decode func(ops Ops, in Node) Result[Decoded[R]], encode func(v R, ops Ops, prefix Node) Result[Node]) Codec[R] {
	return Func[R]{DecodeFunc: decode, EncodeFunc: encode}
}

// RecordBuilder collects the entries of a map node during a MapCodec encode.
type RecordBuilder struct {
	ops     Ops
	err     error
	entries []Entry
}

func NewRecordBuilder(ops Ops) *RecordBuilder {
	return &RecordBuilder{ops: ops}
}

// Ops returns the carrier the builder currently encodes with.
func (b *RecordBuilder) Ops() Ops {
	return b.ops
}

// Rebind replaces the builder's carrier until restore is called.
func (b *RecordBuilder) Rebind(ops Ops) (restore func()) {
	prev := b.ops
	b.ops = ops
	return func() {
		b.ops = prev
	}
}

func (b *RecordBuilder) Add(key string, value Node) *RecordBuilder {
	b.entries = append(b.entries, Entry{Key: key, Value: value})
	return b
}

// AddResult adds the value of r, keeping a partial value and recording
// its error.
func (b *RecordBuilder) AddResult(key string, r Result[Node]) *RecordBuilder {
	if v, ok := r.PartialValue(); ok {
		b.Add(key, v)
	}
	return b.WithError(r.Err())
}

// WithError records err. Build reports every recorded error.
func (b *RecordBuilder) WithError(err error) *RecordBuilder {
	b.err = errors.Join(b.err, err)
	return b
}

func (b *RecordBuilder) Err() error {
	return b.err
}

// Build merges the collected entries into prefix.
func (b *RecordBuilder) Build(prefix Node) Result[Node] {
	node, err := b.ops.MergeToMap(prefix, b.entries)
	if err != nil {
		return Failure[Node](errors.Join(b.err, err))
	}
	return Partial(node, b.err)
}

type mapAsCodec[R any] struct {
	inner MapCodec[R]
}

// AsCodec turns a MapCodec into a Codec over a whole map node.
func AsCodec[R any](mc MapCodec[R]) Codec[R] {
	return mapAsCodec[R]{inner: mc}
}

func (c mapAsCodec[R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	m, err := ops.GetMap(in)
	if err != nil {
		return Failure[Decoded[R]](err)
	}
	return Map(c.inner.Decode(ops, m), func(v R) Decoded[R] {
		return Decoded[R]{Value: v, Rest: in}
	})
}

func (c mapAsCodec[R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	return c.inner.Encode(v, ops, NewRecordBuilder(ops)).Build(prefix)
}

// Parse decodes in and drops the rest.
func Parse[R any](c Codec[R], ops Ops, in Node) Result[R] {
	return Map(c.Decode(ops, in), func(d Decoded[R]) R { return d.Value })
}

// EncodeStart encodes v onto an empty prefix.
func EncodeStart[R any](c Codec[R], ops Ops, v R) Result[Node] {
	return c.Encode(v, ops, ops.Empty())
}

type xmap[A, B any] struct {
	inner Codec[A]
	to    func(A) (B, error)
	from  func(B) (A, error)
}

// XMap converts the codec's value type with a pair of total functions.
func XMap[A, B any](c Codec[A], to func(A) B, from func(B) A) Codec[B] {
	return xmap[A, B]{
		inner: c,
		to:    func(a A) (B, error) { return to(a), nil },
		from:  func(b B) (A, error) { return from(b), nil },
	}
}

// FlatXMap converts the codec's value type with functions that may fail.
func FlatXMap[A, B any](c Codec[A], to func(A) (B, error), from func(B) (A, error)) Codec[B] {
	return xmap[A, B]{inner: c, to: to, from: from}
}

func (c xmap[A, B]) Decode(ops Ops, in Node) Result[Decoded[B]] {
	return Then(c.inner.Decode(ops, in), func(d Decoded[A]) Result[Decoded[B]] {
		b, err := c.to(d.Value)
		if err != nil {
			return Failure[Decoded[B]](err)
		}
		return Success(Decoded[B]{Value: b, Rest: d.Rest})
	})
}

func (c xmap[A, B]) Encode(v B, ops Ops, prefix Node) Result[Node] {
	a, err := c.from(v)
	if err != nil {
		return Failure[Node](err)
	}
	return c.inner.Encode(a, ops, prefix)
}

type unit[R any] struct {
	value R
}

// Unit decodes to v without reading anything and encodes nothing.
func Unit[R any](v R) MapCodec[R] {
	return unit[R]{value: v}
}

func (unit[R]) Keys() []string { return nil }

func (c unit[R]) Decode(Ops, MapLike) Result[R] {
	return Success(c.value)
}

func (unit[R]) Encode(_ R, _ Ops, b *RecordBuilder) *RecordBuilder {
	return b
}
