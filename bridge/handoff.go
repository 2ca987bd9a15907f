package bridge

import (
	"sync"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/codec"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/internal/goid"
	"github.com/wippyai/attachments/stream"
	"go.uber.org/zap"
)

// Handoff passes a store from a stream codec to a structural codec nested
// inside it when the code in between cannot thread it explicitly. Each
// goroutine has one slot, set just before the nested call and cleared right
// after it. Entering a slot that is already set fails.
type Handoff struct {
	slots map[uint64]*attach.Store
	mu    sync.Mutex
}

func NewHandoff() *Handoff {
	return &Handoff{slots: make(map[uint64]*attach.Store)}
}

// Default is the handoff used by Grabbing and Applying when nil is passed.
var Default = NewHandoff()

func orDefault(h *Handoff) *Handoff {
	if h == nil {
		return Default
	}
	return h
}

// Enter stores s in the calling goroutine's slot until leave is called.
func (h *Handoff) Enter(s *attach.Store) (leave func(), err error) {
	id := goid.ID()

	h.mu.Lock()
	if _, busy := h.slots[id]; busy {
		h.mu.Unlock()
		return func() {}, errors.HandoffBusy(id)
	}
	h.slots[id] = s
	h.mu.Unlock()

	if ce := Logger().Check(zap.DebugLevel, "handoff entered"); ce != nil {
		ce.Write(zap.Uint64("goroutine", id), zap.Stringer("store", s.ID()))
	}
	return func() {
		h.mu.Lock()
		delete(h.slots, id)
		h.mu.Unlock()
	}, nil
}

// Current returns the store in the calling goroutine's slot.
func (h *Handoff) Current() (*attach.Store, bool) {
	id := goid.ID()
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.slots[id]
	return s, ok
}

// Grabbing publishes the buffer's store in h for the duration of each call to
// inner.
func Grabbing[V any](h *Handoff, inner stream.Codec[V]) stream.Codec[V] {
	h = orDefault(h)
	return stream.Of(
		func(b *stream.Buffer) (V, error) {
			leave, err := h.Enter(b.AttachmentStore())
			if err != nil {
				var zero V
				return zero, err
			}
			defer leave()
			return inner.Decode(b)
		},
		func(b *stream.Buffer, v V) error {
			leave, err := h.Enter(b.AttachmentStore())
			if err != nil {
				return err
			}
			defer leave()
			return inner.Encode(b, v)
		},
	)
}

type applying[R any] struct {
	handoff *Handoff
	inner   codec.Codec[R]
}

// Applying runs inner with the store published by an enclosing Grabbing on
// the same goroutine. Without one, inner runs on ops unchanged.
func Applying[R any](h *Handoff, inner codec.Codec[R]) codec.Codec[R] {
	return applying[R]{handoff: orDefault(h), inner: inner}
}

func (c applying[R]) apply(ops codec.Ops) (codec.Ops, func()) {
	s, ok := c.handoff.Current()
	if !ok {
		return ops, func() {}
	}
	return Apply(ops, s)
}

func (c applying[R]) Decode(ops codec.Ops, in codec.Node) codec.Result[codec.Decoded[R]] {
	applied, restore := c.apply(ops)
	defer restore()
	return c.inner.Decode(applied, in)
}

func (c applying[R]) Encode(v R, ops codec.Ops, prefix codec.Node) codec.Result[codec.Node] {
	applied, restore := c.apply(ops)
	defer restore()
	return c.inner.Encode(v, applied, prefix)
}
