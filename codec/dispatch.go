package codec

import (
	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"go.uber.org/zap"
)

// DispatchedKey is the single entry a compressed map dispatch writes.
const DispatchedKey = "dispatched"

func selectCodec[A, C any](ops Ops, key *attach.Key[A], phase errors.Phase, dispatcher func(A) (C, error)) (C, error) {
	var zero C
	a, err := key.Require(StoreOf(ops), phase)
	if err != nil {
		return zero, err
	}
	inner, err := dispatcher(a)
	if err != nil {
		return zero, errors.DispatchFailure(errors.PhaseDispatch, key.Name(), err)
	}
	if ce := Logger().Check(zap.DebugLevel, "dispatched on attachment"); ce != nil {
		ce.Write(zap.String("key", key.Name()), zap.String("phase", string(phase)))
	}
	return inner, nil
}

type dispatch[A, R any] struct {
	key        *attach.Key[A]
	dispatcher func(A) (Codec[R], error)
}

// Dispatch picks the codec to use from the current value of key. The
// dispatcher must return the same codec for the same value on decode and
// encode.
func Dispatch[A, R any](key *attach.Key[A], dispatcher func(A) (Codec[R], error)) Codec[R] {
	return dispatch[A, R]{key: key, dispatcher: dispatcher}
}

func (c dispatch[A, R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	inner, err := selectCodec(ops, c.key, errors.PhaseDecode, c.dispatcher)
	if err != nil {
		return Failure[Decoded[R]](err)
	}
	return inner.Decode(ops, in)
}

func (c dispatch[A, R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	inner, err := selectCodec(ops, c.key, errors.PhaseEncode, c.dispatcher)
	if err != nil {
		return Failure[Node](err)
	}
	return inner.Encode(v, ops, prefix)
}

// decodeMapWith decodes with inner, reading the whole value from entry when
// ops compresses maps.
func decodeMapWith[R any](ops Ops, m MapLike, inner MapCodec[R], entry string) Result[R] {
	if !ops.CompressMaps() {
		return inner.Decode(ops, m)
	}
	n, ok := m.Get(entry)
	if !ok {
		return Failure[R](errors.InvalidData(errors.PhaseDecode, nil, "input does not have \""+entry+"\" entry"))
	}
	return Parse(AsCodec(inner), ops, n)
}

func encodeMapWith[R any](v R, ops Ops, b *RecordBuilder, inner MapCodec[R], entry string) *RecordBuilder {
	if !ops.CompressMaps() {
		return inner.Encode(v, ops, b)
	}
	return b.AddResult(entry, EncodeStart(AsCodec(inner), ops, v))
}

type dispatchMap[A, R any] struct {
	key        *attach.Key[A]
	dispatcher func(A) (MapCodec[R], error)
}

// DispatchMap is Dispatch for map codecs. When ops compresses maps the
// selected codec's value is stored whole under DispatchedKey.
func DispatchMap[A, R any](key *attach.Key[A], dispatcher func(A) (MapCodec[R], error)) MapCodec[R] {
	return dispatchMap[A, R]{key: key, dispatcher: dispatcher}
}

func (c dispatchMap[A, R]) Keys() []string {
	return []string{DispatchedKey}
}

func (c dispatchMap[A, R]) Decode(ops Ops, m MapLike) Result[R] {
	inner, err := selectCodec(ops, c.key, errors.PhaseDecode, c.dispatcher)
	if err != nil {
		return Failure[R](err)
	}
	return decodeMapWith(ops, m, inner, DispatchedKey)
}

func (c dispatchMap[A, R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	inner, err := selectCodec(ops, c.key, errors.PhaseEncode, c.dispatcher)
	if err != nil {
		return b.WithError(err)
	}
	return encodeMapWith(v, ops, b, inner, DispatchedKey)
}

type ifPresent[R any] struct {
	key     attach.AnyKey
	present Codec[R]
	absent  Codec[R]
}

// IfPresent uses present when key has a value and absent otherwise. Only
// presence matters, not the value.
func IfPresent[R any](key attach.AnyKey, present, absent Codec[R]) Codec[R] {
	return ifPresent[R]{key: key, present: present, absent: absent}
}

func (c ifPresent[R]) pick(ops Ops) Codec[R] {
	if StoreOf(ops).Has(c.key) {
		return c.present
	}
	return c.absent
}

func (c ifPresent[R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	return c.pick(ops).Decode(ops, in)
}

func (c ifPresent[R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	return c.pick(ops).Encode(v, ops, prefix)
}

type ifPresentMap[R any] struct {
	key     attach.AnyKey
	present MapCodec[R]
	absent  MapCodec[R]
}

// IfPresentMap is IfPresent for map codecs.
func IfPresentMap[R any](key attach.AnyKey, present, absent MapCodec[R]) MapCodec[R] {
	return ifPresentMap[R]{key: key, present: present, absent: absent}
}

func (c ifPresentMap[R]) Keys() []string {
	return concatKeys(c.present.Keys(), c.absent.Keys())
}

func (c ifPresentMap[R]) pick(ops Ops) MapCodec[R] {
	if StoreOf(ops).Has(c.key) {
		return c.present
	}
	return c.absent
}

func (c ifPresentMap[R]) Decode(ops Ops, m MapLike) Result[R] {
	return c.pick(ops).Decode(ops, m)
}

func (c ifPresentMap[R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	return c.pick(ops).Encode(v, ops, b)
}

type ifPresentDispatch[A, R any] struct {
	key        *attach.Key[A]
	dispatcher func(A) (Codec[R], error)
	fallback   Codec[R]
}

// IfPresentDispatch dispatches on key when it has a value and uses fallback
// otherwise.
func IfPresentDispatch[A, R any](key *attach.Key[A], dispatcher func(A) (Codec[R], error), fallback Codec[R]) Codec[R] {
	return ifPresentDispatch[A, R]{key: key, dispatcher: dispatcher, fallback: fallback}
}

func (c ifPresentDispatch[A, R]) pick(ops Ops, phase errors.Phase) (Codec[R], error) {
	if !StoreOf(ops).Has(c.key) {
		return c.fallback, nil
	}
	return selectCodec(ops, c.key, phase, c.dispatcher)
}

func (c ifPresentDispatch[A, R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	inner, err := c.pick(ops, errors.PhaseDecode)
	if err != nil {
		return Failure[Decoded[R]](err)
	}
	return inner.Decode(ops, in)
}

func (c ifPresentDispatch[A, R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	inner, err := c.pick(ops, errors.PhaseEncode)
	if err != nil {
		return Failure[Node](err)
	}
	return inner.Encode(v, ops, prefix)
}

type ifPresentDispatchMap[A, R any] struct {
	key        *attach.Key[A]
	dispatcher func(A) (MapCodec[R], error)
	fallback   MapCodec[R]
}

// IfPresentDispatchMap is IfPresentDispatch for map codecs. A dispatched
// codec honours map compression like DispatchMap; the fallback does not.
func IfPresentDispatchMap[A, R any](key *attach.Key[A], dispatcher func(A) (MapCodec[R], error), fallback MapCodec[R]) MapCodec[R] {
	return ifPresentDispatchMap[A, R]{key: key, dispatcher: dispatcher, fallback: fallback}
}

func (c ifPresentDispatchMap[A, R]) Keys() []string {
	return concatKeys([]string{DispatchedKey}, c.fallback.Keys())
}

func (c ifPresentDispatchMap[A, R]) Decode(ops Ops, m MapLike) Result[R] {
	if !StoreOf(ops).Has(c.key) {
		return c.fallback.Decode(ops, m)
	}
	inner, err := selectCodec(ops, c.key, errors.PhaseDecode, c.dispatcher)
	if err != nil {
		return Failure[R](err)
	}
	return decodeMapWith(ops, m, inner, DispatchedKey)
}

func (c ifPresentDispatchMap[A, R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	if !StoreOf(ops).Has(c.key) {
		return c.fallback.Encode(v, ops, b)
	}
	inner, err := selectCodec(ops, c.key, errors.PhaseEncode, c.dispatcher)
	if err != nil {
		return b.WithError(err)
	}
	return encodeMapWith(v, ops, b, inner, DispatchedKey)
}
