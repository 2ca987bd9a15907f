package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/attachments/attach"
)

func TestRoundTrip(t *testing.T) {
	want := []byte{
		0x02, 0x03, 'r', 'e', 'd', 0x05, 'g', 'r', 'e', 'e', 'n',
		0x04,
		0x03, 0x00, 0x01, 0x00,
	}

	for _, guest := range []bool{false, true} {
		name := "host"
		if guest {
			name = "guest"
		}
		t.Run(name, func(t *testing.T) {
			tr, err := roundTrip(context.Background(), []string{"red", "green", "red"}, guest)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(tr.wire, want) {
				t.Errorf("wire = %x, want %x", tr.wire, want)
			}
			if strings.Join(tr.decoded, ",") != "red,green,red" {
				t.Errorf("decoded = %v", tr.decoded)
			}

			var pushes, pops int
			for _, e := range tr.events {
				if e.Key != "palette" {
					t.Errorf("unexpected key %q", e.Key)
				}
				switch e.Op {
				case attach.OpPush:
					pushes++
				case attach.OpPop:
					pops++
				}
			}
			if pushes != 2 || pops != 2 {
				t.Errorf("pushes=%d pops=%d, want 2 each", pushes, pops)
			}
		})
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	tr, err := roundTrip(context.Background(), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x00, 0x01, 0x00}; !bytes.Equal(tr.wire, want) {
		t.Errorf("wire = %x, want %x", tr.wire, want)
	}
	if len(tr.decoded) != 0 {
		t.Errorf("decoded = %v", tr.decoded)
	}
}

func TestPalette_BadReference(t *testing.T) {
	p := newPalette([]string{"a"})
	if _, err := p.word(1); err == nil {
		t.Error("out of range reference accepted")
	}
	if w, err := p.word(0); err != nil || w != "a" {
		t.Errorf("word(0) = %q, %v", w, err)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b", []string{"a", "b"}},
		{" a , ,b ", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := splitWords(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("splitWords(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	tr, err := roundTrip(context.Background(), []string{"x"}, false)
	if err != nil {
		t.Fatal(err)
	}
	out := renderTrace(tr, 40)
	for _, want := range []string{"palette", "push", "pop", "host buffer"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if bytesPerRow(40) != 8 || bytesPerRow(200) != 16 || bytesPerRow(10) != 4 {
		t.Error("bytesPerRow does not fit the width")
	}
}

func TestRun(t *testing.T) {
	t.Cleanup(func() { setLoggers(zap.NewNop()) })

	if code := run([]string{"a", "b", "a"}, false, true, false); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if code := run(nil, false, false, false); code != 0 {
		t.Errorf("exit code for no words = %d, want 0", code)
	}
}
