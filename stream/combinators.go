package stream

import (
	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"go.uber.org/zap"
)

// Attaching pushes bindings on the buffer's store around every call to inner.
func Attaching[V any](inner Codec[V], bindings ...attach.Binding) Codec[V] {
	bs := attach.Bindings(bindings)
	return Of(
		func(b *Buffer) (V, error) {
			release := bs.Push(b.AttachmentStore())
			defer release()
			return inner.Decode(b)
		},
		func(b *Buffer, v V) error {
			release := bs.Push(b.AttachmentStore())
			defer release()
			return inner.Encode(b, v)
		},
	)
}

// Retrieve decodes to retriever(a) for the current value a of key without
// reading. Encode writes nothing and ignores its input.
func Retrieve[A, V any](key *attach.Key[A], retriever func(A) V) Codec[V] {
	return Of(
		func(b *Buffer) (V, error) {
			a, err := key.Require(b.AttachmentStore(), errors.PhaseDecode)
			if err != nil {
				var zero V
				return zero, err
			}
			return retriever(a), nil
		},
		func(*Buffer, V) error { return nil },
	)
}

// RetrieveValue decodes to the current value of key.
func RetrieveValue[A any](key *attach.Key[A]) Codec[A] {
	return Retrieve(key, func(a A) A { return a })
}

// RetrieveWith transcodes a D with inner and combines it with the current
// value of key.
func RetrieveWith[A, D, V any](key *attach.Key[A], inner Codec[D], decode func(A, D) (V, error), encode func(A, V) (D, error)) Codec[V] {
	return Of(
		func(b *Buffer) (V, error) {
			var zero V
			a, err := key.Require(b.AttachmentStore(), errors.PhaseDecode)
			if err != nil {
				return zero, err
			}
			d, err := inner.Decode(b)
			if err != nil {
				return zero, err
			}
			return decode(a, d)
		},
		func(b *Buffer, v V) error {
			a, err := key.Require(b.AttachmentStore(), errors.PhaseEncode)
			if err != nil {
				return err
			}
			d, err := encode(a, v)
			if err != nil {
				return err
			}
			return inner.Encode(b, d)
		},
	)
}

func selectCodec[A, V any](b *Buffer, key *attach.Key[A], phase errors.Phase, dispatcher func(A) (Codec[V], error)) (Codec[V], error) {
	a, err := key.Require(b.AttachmentStore(), phase)
	if err != nil {
		return nil, err
	}
	inner, err := dispatcher(a)
	if err != nil {
		return nil, errors.DispatchFailure(errors.PhaseDispatch, key.Name(), err)
	}
	if ce := Logger().Check(zap.DebugLevel, "dispatched on attachment"); ce != nil {
		ce.Write(zap.String("key", key.Name()), zap.String("phase", string(phase)))
	}
	return inner, nil
}

// Dispatch picks the codec from the current value of key.
func Dispatch[A, V any](key *attach.Key[A], dispatcher func(A) (Codec[V], error)) Codec[V] {
	return Of(
		func(b *Buffer) (V, error) {
			inner, err := selectCodec(b, key, errors.PhaseDecode, dispatcher)
			if err != nil {
				var zero V
				return zero, err
			}
			return inner.Decode(b)
		},
		func(b *Buffer, v V) error {
			inner, err := selectCodec(b, key, errors.PhaseEncode, dispatcher)
			if err != nil {
				return err
			}
			return inner.Encode(b, v)
		},
	)
}

// IfPresent uses present when key has a value and absent otherwise.
func IfPresent[V any](key attach.AnyKey, present, absent Codec[V]) Codec[V] {
	pick := func(b *Buffer) Codec[V] {
		if b.AttachmentStore().Has(key) {
			return present
		}
		return absent
	}
	return Of(
		func(b *Buffer) (V, error) { return pick(b).Decode(b) },
		func(b *Buffer, v V) error { return pick(b).Encode(b, v) },
	)
}

// IfPresentDispatch dispatches on key when it has a value and uses fallback
// otherwise.
func IfPresentDispatch[A, V any](key *attach.Key[A], dispatcher func(A) (Codec[V], error), fallback Codec[V]) Codec[V] {
	pick := func(b *Buffer, phase errors.Phase) (Codec[V], error) {
		if !b.AttachmentStore().Has(key) {
			return fallback, nil
		}
		return selectCodec(b, key, phase, dispatcher)
	}
	return Of(
		func(b *Buffer) (V, error) {
			inner, err := pick(b, errors.PhaseDecode)
			if err != nil {
				var zero V
				return zero, err
			}
			return inner.Decode(b)
		},
		func(b *Buffer, v V) error {
			inner, err := pick(b, errors.PhaseEncode)
			if err != nil {
				return err
			}
			return inner.Encode(b, v)
		},
	)
}

// KeyDispatch writes a key followed by the value, with the value codec
// selected by the key.
func KeyDispatch[K, V any](keyCodec Codec[K], keyOf func(V) (K, error), byKey func(K) (Codec[V], error)) Codec[V] {
	return Of(
		func(b *Buffer) (V, error) {
			var zero V
			k, err := keyCodec.Decode(b)
			if err != nil {
				return zero, err
			}
			inner, err := byKey(k)
			if err != nil {
				return zero, errors.DispatchFailure(errors.PhaseDispatch, "", err)
			}
			return inner.Decode(b)
		},
		func(b *Buffer, v V) error {
			k, err := keyOf(v)
			if err != nil {
				return errors.KeyDerivation(err)
			}
			inner, err := byKey(k)
			if err != nil {
				return errors.DispatchFailure(errors.PhaseDispatch, "", err)
			}
			if err := keyCodec.Encode(b, k); err != nil {
				return err
			}
			return inner.Encode(b, v)
		},
	)
}

func single[A any](key *attach.Key[A]) func(A) (attach.Bindings, error) {
	return func(a A) (attach.Bindings, error) {
		return attach.Bindings{attach.Bind(key, a)}, nil
	}
}

// ReadAttaching reads a key, derives bindings from it and makes them visible
// to inner. On encode the key from keyOf is written before inner.
func ReadAttaching[K, V any](keyCodec Codec[K], attachments func(K) (attach.Bindings, error), inner Codec[V], keyOf func(V) (K, error)) Codec[V] {
	return Of(
		func(b *Buffer) (V, error) {
			var zero V
			k, err := keyCodec.Decode(b)
			if err != nil {
				return zero, err
			}
			bindings, err := attachments(k)
			if err != nil {
				return zero, err
			}
			release := bindings.Push(b.AttachmentStore())
			defer release()
			return inner.Decode(b)
		},
		func(b *Buffer, v V) error {
			k, err := keyOf(v)
			if err != nil {
				return errors.KeyDerivation(err)
			}
			bindings, err := attachments(k)
			if err != nil {
				return err
			}
			if err := keyCodec.Encode(b, k); err != nil {
				return err
			}
			release := bindings.Push(b.AttachmentStore())
			defer release()
			return inner.Encode(b, v)
		},
	)
}

// ReadAttachingSingle is ReadAttaching where the key itself is attached
// under key.
func ReadAttachingSingle[A, V any](key *attach.Key[A], keyCodec Codec[A], inner Codec[V], keyOf func(V) (A, error)) Codec[V] {
	return ReadAttaching(keyCodec, single(key), inner, keyOf)
}
