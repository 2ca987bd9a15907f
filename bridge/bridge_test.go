package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/codec"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/stream"
)

type entry struct {
	Name   string
	Prefix string
}

var prefixKey = attach.NewKey[string]("prefix")

var entryCodec = codec.AsCodec(codec.Record2(
	codec.For(codec.FieldOf("name", codec.String), func(e entry) string { return e.Name }),
	codec.Virtual[entry](codec.RetrieveValue(prefixKey)),
	func(name, prefix string) entry { return entry{Name: name, Prefix: prefix} },
))

func isKind(err error, kind errors.Kind) bool {
	var e *errors.Error
	return errors.As(err, &e) && e.Kind == kind
}

func TestApply(t *testing.T) {
	own := attach.NewStore()
	other := attach.NewStore()

	t.Run("swaps a native store", func(t *testing.T) {
		ops := codec.UsingStore(codec.Tree{}, own)
		applied, restore := Apply(ops, other)
		if applied != ops {
			t.Error("swappable ops must be reused")
		}
		if codec.StoreOf(applied) != other {
			t.Error("store not swapped in")
		}
		restore()
		if codec.StoreOf(ops) != own {
			t.Error("store not restored")
		}
	})

	t.Run("wraps a plain ops", func(t *testing.T) {
		applied, restore := Apply(codec.Compressed(codec.Tree{}), other)
		defer restore()
		if codec.StoreOf(applied) != other {
			t.Error("store not attached")
		}
		if !applied.CompressMaps() {
			t.Error("decorator lost")
		}
	})
}

func TestFromCodec(t *testing.T) {
	c := stream.Attaching(FromCodec(entryCodec, codec.Tree{}), attach.Bind(prefixKey, "p"))
	b := stream.NewBuffer(&bytes.Buffer{})

	if err := c.Encode(b, entry{Name: "x", Prefix: "p"}); err != nil {
		t.Fatal(err)
	}

	payload, err := stream.Bytes.Decode(stream.NewBuffer(bytes.NewBuffer(append([]byte(nil), b.Raw().(*bytes.Buffer).Bytes()...))))
	if err != nil {
		t.Fatal(err)
	}
	var node map[string]any
	if err := json.Unmarshal(payload, &node); err != nil || node["name"] != "x" || len(node) != 1 {
		t.Errorf("payload %s, %v", payload, err)
	}

	out, err := c.Decode(b)
	if err != nil || out != (entry{Name: "x", Prefix: "p"}) {
		t.Errorf("decode = %+v, %v", out, err)
	}
	if !b.AttachmentStore().IsEmpty() {
		t.Error("attachment left on buffer store")
	}

	if _, err := FromCodec(entryCodec, codec.Tree{}).Decode(stream.NewBuffer(bytes.NewBuffer(mustEncode(t, payload)))); !isKind(err, errors.KindMissingAttachment) {
		t.Errorf("without attachment: %v", err)
	}
}

func mustEncode(t *testing.T, payload []byte) []byte {
	t.Helper()
	b := stream.NewBuffer(&bytes.Buffer{})
	if err := stream.Bytes.Encode(b, payload); err != nil {
		t.Fatal(err)
	}
	return b.Raw().(*bytes.Buffer).Bytes()
}

// opaque decodes a JSON node and parses it with a fixed Tree ops, without any
// access to the buffer's store.
func opaque[R any](c codec.Codec[R]) stream.Codec[R] {
	return stream.Of(
		func(b *stream.Buffer) (R, error) {
			var zero R
			payload, err := stream.Bytes.Decode(b)
			if err != nil {
				return zero, err
			}
			var node codec.Node
			if err := json.Unmarshal(payload, &node); err != nil {
				return zero, err
			}
			return codec.Parse(c, codec.Tree{}, node).Get()
		},
		func(b *stream.Buffer, v R) error {
			node, err := codec.EncodeStart(c, codec.Tree{}, v).Get()
			if err != nil {
				return err
			}
			payload, err := json.Marshal(node)
			if err != nil {
				return err
			}
			return stream.Bytes.Encode(b, payload)
		},
	)
}

func TestHandoff_GrabAndApply(t *testing.T) {
	h := NewHandoff()
	c := stream.Attaching(Grabbing(h, opaque(Applying(h, entryCodec))), attach.Bind(prefixKey, "p"))
	b := stream.NewBuffer(&bytes.Buffer{})

	if err := c.Encode(b, entry{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(b)
	if err != nil || out != (entry{Name: "x", Prefix: "p"}) {
		t.Errorf("decode = %+v, %v", out, err)
	}
	if _, ok := h.Current(); ok {
		t.Error("slot not cleared after the call")
	}
}

func TestHandoff_ApplyingWithoutGrab(t *testing.T) {
	h := NewHandoff()
	_, err := codec.Parse(Applying(h, entryCodec), codec.Tree{}, map[string]any{"name": "x"}).Get()
	if !isKind(err, errors.KindMissingAttachment) {
		t.Errorf("got %v", err)
	}
}

func TestHandoff_RejectsReentry(t *testing.T) {
	h := NewHandoff()
	inner := stream.Unit(1)
	c := Grabbing(h, Grabbing(h, inner))

	_, err := c.Decode(stream.NewBuffer(&bytes.Buffer{}))
	if !isKind(err, errors.KindHandoffBusy) {
		t.Fatalf("got %v", err)
	}
	if _, ok := h.Current(); ok {
		t.Error("outer slot not cleared after failure")
	}

	leave, err := h.Enter(attach.NewStore())
	if err != nil {
		t.Fatalf("slot unusable after rejected reentry: %v", err)
	}
	leave()
}

func TestHandoff_IndependentGoroutines(t *testing.T) {
	h := NewHandoff()
	const workers = 4

	var entered, done sync.WaitGroup
	entered.Add(workers)
	done.Add(workers)
	errs := make(chan error, workers)
	mismatch := make(chan int, workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			s := attach.NewStore()
			leave, err := h.Enter(s)
			entered.Done()
			if err != nil {
				errs <- err
				return
			}
			defer leave()
			entered.Wait()
			if got, ok := h.Current(); !ok || got != s {
				mismatch <- i
			}
		}(i)
	}
	done.Wait()
	close(errs)
	close(mismatch)

	for err := range errs {
		t.Errorf("enter failed: %v", err)
	}
	for i := range mismatch {
		t.Errorf("goroutine %d saw another goroutine's store", i)
	}
}

func TestDefaultHandoff(t *testing.T) {
	c := stream.Attaching(Grabbing(nil, opaque(Applying(nil, entryCodec))), attach.Bind(prefixKey, "q"))
	b := stream.NewBuffer(&bytes.Buffer{})
	if err := c.Encode(b, entry{Name: "y"}); err != nil {
		t.Fatal(err)
	}
	if out, err := c.Decode(b); err != nil || out.Prefix != "q" {
		t.Errorf("decode = %+v, %v", out, err)
	}
}

// runConcurrently runs each worker's round trip of a shared codec under its
// own prefix attachment and reports decodes that saw another prefix.
func runConcurrently(t *testing.T, shared stream.Codec[entry]) {
	t.Helper()
	const (
		workers = 8
		rounds  = 200
	)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			prefix := fmt.Sprintf("p%d", w)
			c := stream.Attaching(shared, attach.Bind(prefixKey, prefix))
			for i := 0; i < rounds; i++ {
				b := stream.NewBuffer(&bytes.Buffer{})
				if err := c.Encode(b, entry{Name: "x"}); err != nil {
					errs <- err
					return
				}
				out, err := c.Decode(b)
				if err != nil {
					errs <- err
					return
				}
				if out.Prefix != prefix {
					errs <- fmt.Errorf("worker %s decoded prefix %q", prefix, out.Prefix)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFromCodec_SharedAcrossGoroutines(t *testing.T) {
	ops := codec.UsingStore(codec.Tree{}, attach.NewStore())
	runConcurrently(t, FromCodec(entryCodec, ops))

	if !codec.StoreOf(ops).IsEmpty() {
		t.Error("shared ops store was modified")
	}
}

func TestFromCodec_LeavesOpsStore(t *testing.T) {
	own := attach.NewStore()
	ops := codec.UsingStore(codec.Tree{}, own)
	c := stream.Attaching(FromCodec(entryCodec, ops), attach.Bind(prefixKey, "p"))

	b := stream.NewBuffer(&bytes.Buffer{})
	if err := c.Encode(b, entry{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(b); err != nil {
		t.Fatal(err)
	}
	if codec.StoreOf(ops) != own || !own.IsEmpty() {
		t.Error("ops store replaced or written")
	}
}

func TestHandoff_SharedAcrossGoroutines(t *testing.T) {
	h := NewHandoff()
	runConcurrently(t, Grabbing(h, opaque(Applying(h, entryCodec))))
	if _, ok := h.Current(); ok {
		t.Error("slot left set")
	}
}
