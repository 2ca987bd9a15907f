package witcodec

import (
	"bytes"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/stream"
)

func newBuf() (*stream.Buffer, *bytes.Buffer) {
	raw := &bytes.Buffer{}
	return stream.NewBuffer(raw), raw
}

func TestTyped_RoundTrip(t *testing.T) {
	strName := "names"
	tests := []struct {
		name  string
		typ   wit.Type
		value any
		wire  []byte
	}{
		{"bool", wit.Bool{}, true, []byte{1}},
		{"u8", wit.U8{}, uint8(200), []byte{200}},
		{"s8", wit.S8{}, int8(-1), []byte{0xff}},
		{"u16", wit.U16{}, uint16(0x0102), []byte{0x02, 0x01}},
		{"s16", wit.S16{}, int16(-2), []byte{0xfe, 0xff}},
		{"u32", wit.U32{}, uint32(7), []byte{7, 0, 0, 0}},
		{"s32", wit.S32{}, int32(-1), []byte{0xff, 0xff, 0xff, 0xff}},
		{"u64", wit.U64{}, uint64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"s64", wit.S64{}, int64(-1), bytes.Repeat([]byte{0xff}, 8)},
		{"f32", wit.F32{}, float32(1), []byte{0, 0, 0x80, 0x3f}},
		{"f64", wit.F64{}, float64(1), []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}},
		{"char", wit.Char{}, 'é', []byte{0xe9, 0, 0, 0}},
		{"string", wit.String{}, "hi", []byte{2, 'h', 'i'}},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, []any{uint8(1), uint8(2)}, []byte{2, 1, 2}},
		{"named list", &wit.TypeDef{Name: &strName, Kind: &wit.List{Type: wit.String{}}}, []any{"a"}, []byte{1, 1, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, raw := newBuf()
			c := Typed(tt.typ)
			if err := c.Encode(b, tt.value); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(raw.Bytes(), tt.wire) {
				t.Errorf("wire = %x, want %x", raw.Bytes(), tt.wire)
			}
			got, err := c.Decode(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if list, ok := tt.value.([]any); ok {
				gotList, ok := got.([]any)
				if !ok || len(gotList) != len(list) {
					t.Fatalf("decode = %#v", got)
				}
				for i := range list {
					if gotList[i] != list[i] {
						t.Errorf("element %d = %#v, want %#v", i, gotList[i], list[i])
					}
				}
			} else if got != tt.value {
				t.Errorf("decode = %#v, want %#v", got, tt.value)
			}
			if !b.AttachmentStore().IsEmpty() {
				t.Error("type attachment left on the store")
			}
		})
	}
}

func TestValue_Errors(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		b, _ := newBuf()
		_, err := Value.Decode(b)
		var e *errors.Error
		if !errors.As(err, &e) || e.Kind != errors.KindMissingAttachment || e.Key != "wit_type" {
			t.Errorf("got %v", err)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		b, _ := newBuf()
		err := Typed(&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}}).Encode(b, uint32(1))
		var e *errors.Error
		if !errors.As(err, &e) || e.Kind != errors.KindDispatchFailure {
			t.Errorf("got %v", err)
		}
	})

	t.Run("go type mismatch", func(t *testing.T) {
		b, raw := newBuf()
		err := Typed(wit.U32{}).Encode(b, "seven")
		var e *errors.Error
		if !errors.As(err, &e) || e.Kind != errors.KindTypeMismatch {
			t.Errorf("got %v", err)
		}
		if raw.Len() != 0 {
			t.Error("bytes written on mismatch")
		}
	})

	t.Run("invalid char", func(t *testing.T) {
		b, _ := newBuf()
		if err := stream.Uint32LE.Encode(b, 0xD800); err != nil {
			t.Fatal(err)
		}
		if _, err := Typed(wit.Char{}).Decode(b); err == nil {
			t.Error("surrogate code point accepted")
		}
	})

	t.Run("short input", func(t *testing.T) {
		b, _ := newBuf()
		if _, err := Typed(wit.U64{}).Decode(b); err == nil {
			t.Error("decode of empty buffer succeeded")
		}
	})
}

func TestValue_FollowsAttachment(t *testing.T) {
	b, raw := newBuf()
	s := b.AttachmentStore()

	release := attach.Bindings{attach.Bind[wit.Type](TypeKey, wit.U16{})}.Push(s)
	if err := Value.Encode(b, uint16(3)); err != nil {
		t.Fatal(err)
	}
	inner := attach.Bindings{attach.Bind[wit.Type](TypeKey, wit.U8{})}.Push(s)
	if err := Value.Encode(b, uint8(4)); err != nil {
		t.Fatal(err)
	}
	inner()
	if err := Value.Encode(b, uint16(5)); err != nil {
		t.Fatal(err)
	}
	release()

	if want := []byte{3, 0, 4, 5, 0}; !bytes.Equal(raw.Bytes(), want) {
		t.Errorf("wire = %x, want %x", raw.Bytes(), want)
	}
}

func TestTypeName(t *testing.T) {
	name := "point"
	tests := []struct {
		typ  wit.Type
		want string
	}{
		{wit.Bool{}, "bool"},
		{wit.S32{}, "s32"},
		{wit.Char{}, "char"},
		{wit.String{}, "string"},
		{&wit.TypeDef{Name: &name}, "point"},
		{&wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, "list<u8>"},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.typ); got != tt.want {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
