package codec

import (
	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
)

type retrieval[A, R any] struct {
	key       *attach.Key[A]
	retriever func(A) (R, error)
}

// Retrieve decodes to retriever(a), where a is the current value of key. It
// reads no input, writes no output and ignores the value on encode, so it can
// sit in a record as a Virtual field.
func Retrieve[A, R any](key *attach.Key[A], retriever func(A) (R, error)) MapCodec[R] {
	return retrieval[A, R]{key: key, retriever: retriever}
}

// RetrieveValue decodes to the current value of key.
func RetrieveValue[A any](key *attach.Key[A]) MapCodec[A] {
	return Retrieve(key, func(a A) (A, error) { return a, nil })
}

func (c retrieval[A, R]) Keys() []string { return nil }

func (c retrieval[A, R]) Decode(ops Ops, _ MapLike) Result[R] {
	a, err := c.key.Require(StoreOf(ops), errors.PhaseDecode)
	if err != nil {
		return Failure[R](err)
	}
	r, err := c.retriever(a)
	if err != nil {
		return Failure[R](err)
	}
	return Success(r)
}

func (c retrieval[A, R]) Encode(_ R, _ Ops, b *RecordBuilder) *RecordBuilder {
	return b
}

type retrieveWith[A, D, R any] struct {
	key    *attach.Key[A]
	inner  Codec[D]
	decode func(A, D) (R, error)
	encode func(A, R) (D, error)
}

// RetrieveWith transcodes a D with inner and combines it with the current
// value of key. decode builds the result from both, encode splits it back.
func RetrieveWith[A, D, R any](key *attach.Key[A], inner Codec[D], decode func(A, D) (R, error), encode func(A, R) (D, error)) Codec[R] {
	return retrieveWith[A, D, R]{key: key, inner: inner, decode: decode, encode: encode}
}

func (c retrieveWith[A, D, R]) Decode(ops Ops, in Node) Result[Decoded[R]] {
	a, err := c.key.Require(StoreOf(ops), errors.PhaseDecode)
	if err != nil {
		return Failure[Decoded[R]](err)
	}
	return Then(c.inner.Decode(ops, in), func(d Decoded[D]) Result[Decoded[R]] {
		r, err := c.decode(a, d.Value)
		if err != nil {
			return Failure[Decoded[R]](err)
		}
		return Success(Decoded[R]{Value: r, Rest: d.Rest})
	})
}

func (c retrieveWith[A, D, R]) Encode(v R, ops Ops, prefix Node) Result[Node] {
	a, err := c.key.Require(StoreOf(ops), errors.PhaseEncode)
	if err != nil {
		return Failure[Node](err)
	}
	d, err := c.encode(a, v)
	if err != nil {
		return Failure[Node](err)
	}
	return c.inner.Encode(d, ops, prefix)
}

type retrieveWithMap[A, D, R any] struct {
	key    *attach.Key[A]
	inner  MapCodec[D]
	decode func(A, D) (R, error)
	encode func(A, R) (D, error)
}

// RetrieveWithMap is RetrieveWith for map codecs.
func RetrieveWithMap[A, D, R any](key *attach.Key[A], inner MapCodec[D], decode func(A, D) (R, error), encode func(A, R) (D, error)) MapCodec[R] {
	return retrieveWithMap[A, D, R]{key: key, inner: inner, decode: decode, encode: encode}
}

func (c retrieveWithMap[A, D, R]) Keys() []string {
	return c.inner.Keys()
}

func (c retrieveWithMap[A, D, R]) Decode(ops Ops, m MapLike) Result[R] {
	a, err := c.key.Require(StoreOf(ops), errors.PhaseDecode)
	if err != nil {
		return Failure[R](err)
	}
	return Then(c.inner.Decode(ops, m), func(d D) Result[R] {
		r, err := c.decode(a, d)
		if err != nil {
			return Failure[R](err)
		}
		return Success(r)
	})
}

func (c retrieveWithMap[A, D, R]) Encode(v R, ops Ops, b *RecordBuilder) *RecordBuilder {
	a, err := c.key.Require(StoreOf(ops), errors.PhaseEncode)
	if err != nil {
		return b.WithError(err)
	}
	d, err := c.encode(a, v)
	if err != nil {
		return b.WithError(err)
	}
	return c.inner.Encode(d, ops, b)
}
