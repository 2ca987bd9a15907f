package codec

import (
	"github.com/wippyai/attachments/errors"
)

type fieldCodec[R any] struct {
	elem Codec[R]
	name string
}

// FieldOf reads and writes one named entry of a map node.
func FieldOf[R any](name string, elem Codec[R]) MapCodec[R] {
	return fieldCodec[R]{name: name, elem: elem}
}

func (c fieldCodec[R]) Keys() []string {
	return []string{c.name}
}

func (c fieldCodec[R]) Decode(ops Ops, m MapLike) Result[R] {
	n, ok := m.Get(c.name)
	if !ok {
		return Failure[R](errors.FieldMissing(errors.PhaseDecode, nil, c.name))
	}
	return Parse(c.elem, ops, n)
}

func (c fieldCodec[R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	return b.AddResult(c.name, EncodeStart(c.elem, ops, v))
}

type optionalFieldCodec[R any] struct {
	elem Codec[R]
	name string
}

// OptionalFieldOf is FieldOf for an entry that may be missing.
func OptionalFieldOf[R any](name string, elem Codec[R]) MapCodec[Optional[R]] {
	return optionalFieldCodec[R]{name: name, elem: elem}
}

func (c optionalFieldCodec[R]) Keys() []string {
	return []string{c.name}
}

func (c optionalFieldCodec[R]) Decode(ops Ops, m MapLike) Result[Optional[R]] {
	n, ok := m.Get(c.name)
	if !ok {
		return Success(None[R]())
	}
	return Map(Parse(c.elem, ops, n), Some[R])
}

func (c optionalFieldCodec[R]) Encode(v Optional[R], ops Ops, b *RecordBuilder) *RecordBuilder {
	r, ok := v.Get()
	if !ok {
		return b
	}
	return b.AddResult(c.name, EncodeStart(c.elem, ops, r))
}

// Field is one component of a record: how to transcode it and how to read it
// from the record value.
type Field[O, F any] struct {
	codec MapCodec[F]
	get   func(O) F
}

// For pairs a map codec with a getter. A nil getter encodes the zero value.
func For[O, F any](mc MapCodec[F], get func(O) F) Field[O, F] {
	return Field[O, F]{codec: mc, get: get}
}

// Virtual is a field with no getter, for codecs such as Retrieve that ignore
// their input on encode. O cannot be inferred and must be given:
//
//	codec.Virtual[Reading](codec.RetrieveValue(unitKey))
func Virtual[O, F any](mc MapCodec[F]) Field[O, F] {
	return Field[O, F]{codec: mc}
}

func (f Field[O, F]) decode(ops Ops, m MapLike, errs *error) F {
	v, err := f.codec.Decode(ops, m).Get()
	if err != nil {
		*errs = errors.Join(*errs, err)
	}
	return v
}

func (f Field[O, F]) encode(o O, ops Ops, b *RecordBuilder) *RecordBuilder {
	var v F
	if f.get != nil {
		v = f.get(o)
	}
	return f.codec.Encode(v, ops, b)
}

func concatKeys(sets ...[]string) []string {
	var keys []string
	for _, s := range sets {
		keys = append(keys, s...)
	}
	return keys
}

type record1[O, F1 any] struct {
	f1    Field[O, F1]
	build func(F1) O
}

// Record1 builds a record codec from one field.
func Record1[O, F1 any](f1 Field[O, F1], build func(F1) O) MapCodec[O] {
	return record1[O, F1]{f1: f1, build: build}
}

func (c record1[O, F1]) Keys() []string { return c.f1.codec.Keys() }

func (c record1[O, F1]) Decode(ops Ops, m MapLike) Result[O] {
	var errs error
	v1 := c.f1.decode(ops, m, &errs)
	if errs != nil {
		return Failure[O](errs)
	}
	return Success(c.build(v1))
}

func (c record1[O, F1]) Encode(v O, ops Ops, b *RecordBuilder) *RecordBuilder {
	return c.f1.encode(v, ops, b)
}

type record2[O, F1, F2 any] struct {
	f1    Field[O, F1]
	f2    Field[O, F2]
	build func(F1, F2) O
}

// Record2 builds a record codec from two fields.
func Record2[O, F1, F2 any](f1 Field[O, F1], f2 Field[O, F2], build func(F1, F2) O) MapCodec[O] {
	return record2[O, F1, F2]{f1: f1, f2: f2, build: build}
}

func (c record2[O, F1, F2]) Keys() []string {
	return concatKeys(c.f1.codec.Keys(), c.f2.codec.Keys())
}

func (c record2[O, F1, F2]) Decode(ops Ops, m MapLike) Result[O] {
	var errs error
	v1 := c.f1.decode(ops, m, &errs)
	v2 := c.f2.decode(ops, m, &errs)
	if errs != nil {
		return Failure[O](errs)
	}
	return Success(c.build(v1, v2))
}

func (c record2[O, F1, F2]) Encode(v O, ops Ops, b *RecordBuilder) *RecordBuilder {
	b = c.f1.encode(v, ops, b)
	return c.f2.encode(v, ops, b)
}

type record3[O, F1, F2, F3 any] struct {
	f1    Field[O, F1]
	f2    Field[O, F2]
	f3    Field[O, F3]
	build func(F1, F2, F3) O
}

// Record3 builds a record codec from three fields.
func Record3[O, F1, F2, F3 any](f1 Field[O, F1], f2 Field[O, F2], f3 Field[O, F3], build func(F1, F2, F3) O) MapCodec[O] {
	return record3[O, F1, F2, F3]{f1: f1, f2: f2, f3: f3, build: build}
}

func (c record3[O, F1, F2, F3]) Keys() []string {
	return concatKeys(c.f1.codec.Keys(), c.f2.codec.Keys(), c.f3.codec.Keys())
}

func (c record3[O, F1, F2, F3]) Decode(ops Ops, m MapLike) Result[O] {
	var errs error
	v1 := c.f1.decode(ops, m, &errs)
	v2 := c.f2.decode(ops, m, &errs)
	v3 := c.f3.decode(ops, m, &errs)
	if errs != nil {
		return Failure[O](errs)
	}
	return Success(c.build(v1, v2, v3))
}

func (c record3[O, F1, F2, F3]) Encode(v O, ops Ops, b *RecordBuilder) *RecordBuilder {
	b = c.f1.encode(v, ops, b)
	b = c.f2.encode(v, ops, b)
	return c.f3.encode(v, ops, b)
}
