package witcodec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/stream"
)

// TypeKey carries the WIT type that Value transcodes.
var TypeKey = attach.NewKey[wit.Type]("wit_type")

// Value transcodes a single value whose codec is selected by the current
// TypeKey attachment.
var Value stream.Codec[any] = stream.Dispatch(TypeKey, For)

// Typed returns a codec that transcodes values of t, attaching t for the
// duration of each call.
func Typed(t wit.Type) stream.Codec[any] {
	return stream.Attaching(Value, attach.Bind(TypeKey, t))
}

// For returns the codec for t. Primitives use their canonical little-endian
// widths; chars are u32 code points; strings and lists are length-prefixed.
func For(t wit.Type) (stream.Codec[any], error) {
	switch v := t.(type) {
	case wit.Bool:
		return boxed(stream.Bool), nil
	case wit.U8:
		return fixed(1, func(p []byte) uint8 { return p[0] }, func(p []byte, x uint8) { p[0] = x }), nil
	case wit.S8:
		return fixed(1, func(p []byte) int8 { return int8(p[0]) }, func(p []byte, x int8) { p[0] = byte(x) }), nil
	case wit.U16:
		return fixed(2, binary.LittleEndian.Uint16, binary.LittleEndian.PutUint16), nil
	case wit.S16:
		return fixed(2,
			func(p []byte) int16 { return int16(binary.LittleEndian.Uint16(p)) },
			func(p []byte, x int16) { binary.LittleEndian.PutUint16(p, uint16(x)) }), nil
	case wit.U32:
		return boxed(stream.Uint32LE), nil
	case wit.S32:
		return fixed(4,
			func(p []byte) int32 { return int32(binary.LittleEndian.Uint32(p)) },
			func(p []byte, x int32) { binary.LittleEndian.PutUint32(p, uint32(x)) }), nil
	case wit.U64:
		return fixed(8, binary.LittleEndian.Uint64, binary.LittleEndian.PutUint64), nil
	case wit.S64:
		return fixed(8,
			func(p []byte) int64 { return int64(binary.LittleEndian.Uint64(p)) },
			func(p []byte, x int64) { binary.LittleEndian.PutUint64(p, uint64(x)) }), nil
	case wit.F32:
		return fixed(4,
			func(p []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(p)) },
			func(p []byte, x float32) { binary.LittleEndian.PutUint32(p, math.Float32bits(x)) }), nil
	case wit.F64:
		return boxed(stream.Float64LE), nil
	case wit.Char:
		return charCodec, nil
	case wit.String:
		return boxed(stream.String), nil
	case *wit.TypeDef:
		if list, ok := v.Kind.(*wit.List); ok {
			elem, err := For(list.Type)
			if err != nil {
				return nil, err
			}
			return boxed(stream.ListOf(elem)), nil
		}
	}
	return nil, fmt.Errorf("no canonical codec for %s", TypeName(t))
}

// boxed adapts a typed codec to one over any, rejecting values of another
// Go type on encode.
func boxed[V any](c stream.Codec[V]) stream.Codec[any] {
	return stream.Of(
		func(b *stream.Buffer) (any, error) {
			v, err := c.Decode(b)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		func(b *stream.Buffer, v any) error {
			x, ok := v.(V)
			if !ok {
				var want V
				return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", want), v)
			}
			return c.Encode(b, x)
		},
	)
}

func fixed[V any](size int, get func([]byte) V, put func([]byte, V)) stream.Codec[any] {
	return boxed(stream.Of(
		func(b *stream.Buffer) (V, error) {
			p, err := b.ReadN(size)
			if err != nil {
				var zero V
				return zero, err
			}
			return get(p), nil
		},
		func(b *stream.Buffer, v V) error {
			var scratch [8]byte
			put(scratch[:size], v)
			return b.WriteAll(scratch[:size])
		},
	))
}

var charCodec = boxed(stream.Of(
	func(b *stream.Buffer) (rune, error) {
		code, err := stream.Uint32LE.Decode(b)
		if err != nil {
			return 0, err
		}
		r := rune(code)
		if code > utf8.MaxRune || !utf8.ValidRune(r) {
			return 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("invalid char code point 0x%x", code).
				Value(code).
				Build()
		}
		return r, nil
	},
	func(b *stream.Buffer, r rune) error {
		if !utf8.ValidRune(r) {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Detail("invalid char %U", r).
				Value(r).
				Build()
		}
		return stream.Uint32LE.Encode(b, uint32(r))
	},
))

// TypeName renders t the way WIT source spells it.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if list, ok := v.Kind.(*wit.List); ok {
			return "list<" + TypeName(list.Type) + ">"
		}
		return "typedef"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", t)
	}
}
