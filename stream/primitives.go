package stream

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/attachments/errors"
)

// Primitive codecs. Lengths and VarInt use LEB128; VarInt zig-zag encodes
// its sign.
var (
	Uvarint Codec[uint64] = Of(
		func(b *Buffer) (uint64, error) { return b.ReadUvarint() },
		func(b *Buffer, v uint64) error { return b.WriteUvarint(v) },
	)

	VarInt Codec[int] = Of(
		func(b *Buffer) (int, error) {
			v, err := binary.ReadVarint(b)
			if err != nil {
				return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "read varint")
			}
			return int(v), nil
		},
		func(b *Buffer, v int) error {
			var scratch [binary.MaxVarintLen64]byte
			return b.WriteAll(binary.AppendVarint(scratch[:0], int64(v)))
		},
	)

	Bool Codec[bool] = Of(
		func(b *Buffer) (bool, error) {
			c, err := b.ReadByte()
			if err != nil {
				return false, errors.OutOfBounds(errors.PhaseDecode, nil, 1, 0)
			}
			switch c {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
			return false, errors.New(errors.PhaseDecode, errors.KindInvalidData).Detail("bool byte %d", c).Value(c).Build()
		},
		func(b *Buffer, v bool) error {
			var c byte
			if v {
				c = 1
			}
			return b.WriteByte(c)
		},
	)

	Uint32LE Codec[uint32] = Of(
		func(b *Buffer) (uint32, error) {
			p, err := b.ReadN(4)
			if err != nil {
				return 0, err
			}
			return binary.LittleEndian.Uint32(p), nil
		},
		func(b *Buffer, v uint32) error {
			return b.WriteAll(binary.LittleEndian.AppendUint32(nil, v))
		},
	)

	Float64LE Codec[float64] = Of(
		func(b *Buffer) (float64, error) {
			p, err := b.ReadN(8)
			if err != nil {
				return 0, err
			}
			return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
		},
		func(b *Buffer, v float64) error {
			return b.WriteAll(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
		},
	)

	// Bytes is a length-prefixed byte slice bounded by Limits.MaxChildLength.
	Bytes Codec[[]byte] = Of(
		func(b *Buffer) ([]byte, error) {
			n, err := b.ReadLength("byte length", b.limits().MaxChildLength)
			if err != nil {
				return nil, err
			}
			return b.ReadN(n)
		},
		func(b *Buffer, v []byte) error {
			if limit := b.limits().MaxChildLength; limit > 0 && len(v) > limit {
				return errors.LimitExceeded(errors.PhaseEncode, "byte length", len(v), limit)
			}
			if err := b.WriteUvarint(uint64(len(v))); err != nil {
				return err
			}
			return b.WriteAll(v)
		},
	)

	// String is a length-prefixed UTF-8 string bounded by Limits.MaxStringLength.
	String Codec[string] = Of(
		func(b *Buffer) (string, error) {
			n, err := b.ReadLength("string length", b.limits().MaxStringLength)
			if err != nil {
				return "", err
			}
			p, err := b.ReadN(n)
			if err != nil {
				return "", err
			}
			return string(p), nil
		},
		func(b *Buffer, v string) error {
			if limit := b.limits().MaxStringLength; limit > 0 && len(v) > limit {
				return errors.LimitExceeded(errors.PhaseEncode, "string length", len(v), limit)
			}
			if err := b.WriteUvarint(uint64(len(v))); err != nil {
				return err
			}
			return b.WriteAll([]byte(v))
		},
	)
)

// ListOf writes a uvarint count followed by each element. The count is
// bounded by Limits.MaxListLength since elements may occupy no bytes.
func ListOf[V any](elem Codec[V]) Codec[[]V] {
	return Of(
		func(b *Buffer) ([]V, error) {
			n, err := b.ReadUvarint()
			if err != nil {
				return nil, err
			}
			if limit := b.limits().MaxListLength; limit > 0 && n > uint64(limit) {
				return nil, errors.LimitExceeded(errors.PhaseDecode, "list length", int(min(n, uint64(maxInt))), limit)
			}
			out := make([]V, 0, min(n, uint64(b.Len())))
			for i := uint64(0); i < n; i++ {
				v, err := elem.Decode(b)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
		func(b *Buffer, vs []V) error {
			if limit := b.limits().MaxListLength; limit > 0 && len(vs) > limit {
				return errors.LimitExceeded(errors.PhaseEncode, "list length", len(vs), limit)
			}
			if err := b.WriteUvarint(uint64(len(vs))); err != nil {
				return err
			}
			for _, v := range vs {
				if err := elem.Encode(b, v); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
