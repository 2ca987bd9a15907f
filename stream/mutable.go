package stream

import (
	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"go.uber.org/zap"
)

type mutReadAttaching[K, V any] struct {
	keyCodec    Codec[K]
	attachments func(K) (attach.Bindings, error)
	child       ChildFactory
	inner       Codec[V]
	keyOf       func(V) (K, error)
	// finalKey, when set, replaces the key with what the attachment holds
	// once inner has been encoded. It runs while the bindings are active.
	finalKey func(s *attach.Store) (K, bool)
}

// MutReadAttaching lets inner change the attached key while encoding. Inner
// is encoded into a child buffer first; the key is written afterwards,
// followed by the uvarint length of the child region and its bytes. Nothing
// reaches the parent when inner fails or the region exceeds
// Limits.MaxChildLength. A nil child uses DefaultChild.
func MutReadAttaching[K, V any](keyCodec Codec[K], attachments func(K) (attach.Bindings, error), child ChildFactory, inner Codec[V], keyOf func(V) (K, error)) Codec[V] {
	if child == nil {
		child = DefaultChild
	}
	return mutReadAttaching[K, V]{keyCodec: keyCodec, attachments: attachments, child: child, inner: inner, keyOf: keyOf}
}

// MutReadAttachingSingle attaches the key under key and writes the value key
// holds once inner has been encoded.
func MutReadAttachingSingle[A, V any](key *attach.Key[A], keyCodec Codec[A], child ChildFactory, inner Codec[V], keyOf func(V) (A, error)) Codec[V] {
	if child == nil {
		child = DefaultChild
	}
	return mutReadAttaching[A, V]{
		keyCodec:    keyCodec,
		attachments: single(key),
		child:       child,
		inner:       inner,
		keyOf:       keyOf,
		finalKey:    key.Get,
	}
}

func (c mutReadAttaching[K, V]) Decode(b *Buffer) (V, error) {
	var zero V
	k, err := c.keyCodec.Decode(b)
	if err != nil {
		return zero, err
	}
	bindings, err := c.attachments(k)
	if err != nil {
		return zero, err
	}
	release := bindings.Push(b.AttachmentStore())
	defer release()

	n, err := b.ReadLength("child length", b.limits().MaxChildLength)
	if err != nil {
		return zero, err
	}
	region, err := b.ReadN(n)
	if err != nil {
		return zero, err
	}

	child := c.child(n, b)
	defer child.Release()
	if err := child.WriteAll(region); err != nil {
		return zero, err
	}

	unsync, err := attach.Sync(b, child)
	if err != nil {
		return zero, err
	}
	defer unsync()

	return c.inner.Decode(child)
}

func (c mutReadAttaching[K, V]) Encode(b *Buffer, v V) error {
	k, err := c.keyOf(v)
	if err != nil {
		return errors.KeyDerivation(err)
	}
	bindings, err := c.attachments(k)
	if err != nil {
		return err
	}

	child := c.child(0, b)
	defer child.Release()

	k, err = c.encodeInner(b, child, v, k, bindings)
	if err != nil {
		return err
	}

	staged, err := child.ReadN(child.Len())
	if err != nil {
		return err
	}
	if limit := b.limits().MaxChildLength; limit > 0 && len(staged) > limit {
		return errors.LimitExceeded(errors.PhaseEncode, "child length", len(staged), limit)
	}
	if ce := Logger().Check(zap.DebugLevel, "staged child region"); ce != nil {
		ce.Write(zap.Int("bytes", len(staged)), zap.Strings("keys", bindings.Names()))
	}

	if err := c.keyCodec.Encode(b, k); err != nil {
		return err
	}
	if err := b.WriteUvarint(uint64(len(staged))); err != nil {
		return err
	}
	return b.WriteAll(staged)
}

// encodeInner encodes v into child with the bindings active on the parent's
// store and returns the key to write.
func (c mutReadAttaching[K, V]) encodeInner(b, child *Buffer, v V, k K, bindings attach.Bindings) (K, error) {
	release := bindings.Push(b.AttachmentStore())
	defer release()

	unsync, err := attach.Sync(b, child)
	if err != nil {
		return k, err
	}
	err = c.inner.Encode(child, v)
	unsync()
	if err != nil {
		return k, err
	}

	if c.finalKey != nil {
		if final, ok := c.finalKey(b.AttachmentStore()); ok {
			k = final
		}
	}
	return k, nil
}
