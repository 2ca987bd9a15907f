package codec

import (
	"github.com/wippyai/attachments/errors"
	"go.uber.org/zap"
)

// ErrorMode selects how ErrorHandling treats a failed decode.
type ErrorMode uint8

const (
	// LogErrors logs the failure and succeeds with the partial value, or
	// with None when there is none.
	LogErrors ErrorMode = iota
	// KeepPartial returns the partial value together with the error.
	KeepPartial
)

type errorHandling[R any] struct {
	inner  MapCodec[R]
	logger func(string)
	mode   ErrorMode
}

// ErrorHandling makes decode failures of inner non-fatal. A nil logger logs
// through the package logger at warn level. Encoding None writes nothing.
func ErrorHandling[R any](inner MapCodec[R], mode ErrorMode, logger func(string)) MapCodec[Optional[R]] {
	if logger == nil {
		logger = func(msg string) {
			Logger().Warn("decode failed, continuing", zap.String("error", msg))
		}
	}
	return errorHandling[R]{inner: inner, mode: mode, logger: logger}
}

func (c errorHandling[R]) Keys() []string {
	return c.inner.Keys()
}

func (c errorHandling[R]) Decode(ops Ops, m MapLike) Result[Optional[R]] {
	r := c.inner.Decode(ops, m)
	if r.IsSuccess() {
		return Map(r, Some[R])
	}

	opt := None[R]()
	if v, ok := r.PartialValue(); ok {
		opt = Some(v)
	}
	if c.mode == KeepPartial {
		return Partial(opt, r.Err())
	}
	c.logger(r.Err().Error())
	return Success(opt)
}

func (c errorHandling[R]) Encode(v Optional[R], ops Ops, b *RecordBuilder) *RecordBuilder {
	r, ok := v.Get()
	if !ok {
		return b
	}
	return c.inner.Encode(r, ops, b)
}

type keyChecking[O any] struct {
	inner    MapCodec[O]
	required []string
}

// KeyChecking decodes to None without calling inner when any of the required
// raw entries is missing.
func KeyChecking[O any](required []string, inner MapCodec[O]) MapCodec[Optional[O]] {
	return keyChecking[O]{required: required, inner: inner}
}

func (c keyChecking[O]) Keys() []string {
	return c.inner.Keys()
}

func (c keyChecking[O]) Decode(ops Ops, m MapLike) Result[Optional[O]] {
	for _, k := range c.required {
		if _, ok := m.Get(k); !ok {
			return Success(None[O]())
		}
	}
	return Map(c.inner.Decode(ops, m), Some[O])
}

func (c keyChecking[O]) Encode(v Optional[O], ops Ops, b *RecordBuilder) *RecordBuilder {
	o, ok := v.Get()
	if !ok {
		return b
	}
	return c.inner.Encode(o, ops, b)
}

// DispatchValueKey is the entry MapKeyDispatch writes the value under when
// ops compresses maps.
const DispatchValueKey = "dispatch_value"

type mapKeyDispatch[K, V any] struct {
	keyCodec MapCodec[K]
	keyOf    func(V) (K, error)
	byKey    func(K) (MapCodec[V], error)
}

// MapKeyDispatch reads a key with keyCodec and selects the value codec from
// it. The key lives next to the value's fields, or next to a single
// DispatchValueKey entry when ops compresses maps.
func MapKeyDispatch[K, V any](keyCodec MapCodec[K], keyOf func(V) (K, error), byKey func(K) (MapCodec[V], error)) MapCodec[V] {
	return mapKeyDispatch[K, V]{keyCodec: keyCodec, keyOf: keyOf, byKey: byKey}
}

func (c mapKeyDispatch[K, V]) Keys() []string {
	return concatKeys(c.keyCodec.Keys(), []string{DispatchValueKey})
}

func (c mapKeyDispatch[K, V]) Decode(ops Ops, m MapLike) Result[V] {
	k, err := c.keyCodec.Decode(ops, m).Get()
	if err != nil {
		return Failure[V](err)
	}
	inner, err := c.byKey(k)
	if err != nil {
		return Failure[V](errors.DispatchFailure(errors.PhaseDispatch, "", err))
	}
	return decodeMapWith(ops, m, inner, DispatchValueKey)
}

func (c mapKeyDispatch[K, V]) Encode(v V, ops Ops, b *RecordBuilder) *RecordBuilder {
	k, err := c.keyOf(v)
	if err != nil {
		return b.WithError(errors.KeyDerivation(err))
	}
	inner, err := c.byKey(k)
	if err != nil {
		return b.WithError(errors.DispatchFailure(errors.PhaseDispatch, "", err))
	}
	b = c.keyCodec.Encode(k, ops, b)
	return encodeMapWith(v, ops, b, inner, DispatchValueKey)
}
