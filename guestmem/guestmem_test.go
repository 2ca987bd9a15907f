package guestmem

import (
	"context"
	"io"
	"testing"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/stream"
)

func newGuest(t *testing.T) *Guest {
	t.Helper()
	ctx := context.Background()
	g, err := Instantiate(ctx, 1)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	t.Cleanup(func() { _ = g.Close(ctx) })
	return g
}

func TestMemoryModule(t *testing.T) {
	bin := memoryModule("memory", 1)
	want := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x03, 0x01, 0x00, 0x01,
		0x07, 0x0A, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	if string(bin) != string(want) {
		t.Errorf("module bytes:\n got %x\nwant %x", bin, want)
	}
}

func TestInstantiate(t *testing.T) {
	g := newGuest(t)
	if got := g.Memory().Size(); got != 65536 {
		t.Errorf("memory size = %d, want 65536", got)
	}
}

func TestRegion_ReadWrite(t *testing.T) {
	g := newGuest(t)
	r, err := g.Region(128, 8)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Write([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteByte(4); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if raw, ok := g.Memory().Read(128, 4); !ok || raw[3] != 4 {
		t.Errorf("guest memory = %v", raw)
	}

	p := make([]byte, 8)
	n, err := r.Read(p)
	if err != nil || n != 4 || p[0] != 1 {
		t.Errorf("Read = %d, %v, %v", n, p, err)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		t.Errorf("ReadByte on empty region: %v", err)
	}
	if _, err := r.Read(p); err != io.EOF {
		t.Errorf("Read on empty region: %v", err)
	}
}

func TestRegion_Bounds(t *testing.T) {
	g := newGuest(t)

	if _, err := g.Region(65530, 16); err == nil {
		t.Error("region past memory end accepted")
	}

	r, err := g.Region(0, 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Write([]byte{1, 2, 3})
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindOutOfBounds {
		t.Errorf("overflowing write: %v", err)
	}
	if r.Len() != 0 {
		t.Error("failed write advanced the cursor")
	}

	if err := r.WriteByte(1); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteByte(2); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteByte(3); err == nil {
		t.Error("WriteByte past region end accepted")
	}

	r.Reset()
	if r.Len() != 0 {
		t.Error("Reset left bytes")
	}
}

func TestRegion_StreamCodecs(t *testing.T) {
	g := newGuest(t)
	region, err := g.Region(1024, 256)
	if err != nil {
		t.Fatal(err)
	}

	unitKey := attach.NewKey[string]("unit")
	labelled := stream.ReadAttachingSingle(unitKey, stream.String,
		stream.Retrieve(unitKey, func(u string) string { return "reading in " + u }),
		func(string) (string, error) { return "celsius", nil },
	)

	b := stream.NewBuffer(region)
	if err := labelled.Encode(b, "ignored"); err != nil {
		t.Fatal(err)
	}
	if err := stream.Uvarint.Encode(b, 300); err != nil {
		t.Fatal(err)
	}

	got, err := labelled.Decode(b)
	if err != nil || got != "reading in celsius" {
		t.Errorf("decode = %q, %v", got, err)
	}
	if n, err := stream.Uvarint.Decode(b); err != nil || n != 300 {
		t.Errorf("uvarint = %d, %v", n, err)
	}
	if !b.AttachmentStore().IsEmpty() {
		t.Error("attachment leaked onto the buffer store")
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	g, err := Instantiate(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.Close(ctx); err != nil {
		t.Errorf("second close: %v", err)
	}
}
