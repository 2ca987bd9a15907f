package codec

import (
	"strconv"

	"github.com/wippyai/attachments/errors"
)

type primitive[R any] struct {
	get    func(ops Ops, n Node) (R, error)
	create func(ops Ops, v R) Node
}

func (p primitive[R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	v, err := p.get(ops, in)
	if err != nil {
		return Failure[Decoded[R]](err)
	}
	return Success(Decoded[R]{Value: v, Rest: ops.Empty()})
}

func (p primitive[R]) Encode(v R, ops Ops, _ Node) Result[Node] {
	return Success(p.create(ops, v))
}

// Primitive codecs.
var (
	String Codec[string] = primitive[string]{
		get:    func(ops Ops, n Node) (string, error) { return ops.GetString(n) },
		create: func(ops Ops, v string) Node { return ops.CreateString(v) },
	}
	Float64 Codec[float64] = primitive[float64]{
		get:    func(ops Ops, n Node) (float64, error) { return ops.GetNumber(n) },
		create: func(ops Ops, v float64) Node { return ops.CreateNumber(v) },
	}
	Int Codec[int] = primitive[int]{
		get: func(ops Ops, n Node) (int, error) {
			f, err := ops.GetNumber(n)
			if err != nil {
				return 0, err
			}
			if f != float64(int(f)) {
				return 0, errors.InvalidData(errors.PhaseDecode, nil, "not an integer: "+strconv.FormatFloat(f, 'g', -1, 64))
			}
			return int(f), nil
		},
		create: func(ops Ops, v int) Node { return ops.CreateNumber(float64(v)) },
	}
	Bool Codec[bool] = primitive[bool]{
		get:    func(ops Ops, n Node) (bool, error) { return ops.GetBool(n) },
		create: func(ops Ops, v bool) Node { return ops.CreateBool(v) },
	}
)

type listCodec[R any] struct {
	elem Codec[R]
}

// ListOf encodes a slice as a list node. Decoding keeps every element that
// decoded and reports the failures.
func ListOf[R any](elem Codec[R]) Codec[[]R] {
	return listCodec[R]{elem: elem}
}

func (c listCodec[R]) Decode(ops Ops, in Node) Result[Decoded[[]R]] {
	items, err := ops.GetList(in)
	if err != nil {
		return Failure[Decoded[[]R]](err)
	}
	out := make([]R, 0, len(items))
	var errs error
	for i, item := range items {
		v, err := Parse(c.elem, ops, item).Get()
		if err != nil {
			errs = errors.Join(errs, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "element "+strconv.Itoa(i)))
			continue
		}
		out = append(out, v)
	}
	return Partial(Decoded[[]R]{Value: out, Rest: ops.Empty()}, errs)
}

func (c listCodec[R]) Encode(v []R, ops Ops, _ Node) Result[Node] {
	items := make([]Node, 0, len(v))
	var errs error
	for _, e := range v {
		r := EncodeStart(c.elem, ops, e)
		if n, ok := r.PartialValue(); ok {
			items = append(items, n)
		}
		errs = errors.Join(errs, r.Err())
	}
	return Partial(ops.CreateList(items), errs)
}
