package codec

import (
	"github.com/wippyai/attachments/attach"
)

// attachOps gives a plain Ops an attachment store.
type attachOps struct {
	Forwarding
	store *attach.Store
}

func (o *attachOps) HasStore() bool {
	return o.store != nil
}

func (o *attachOps) AttachmentStore() *attach.Store {
	return o.store
}

func (o *attachOps) SetAttachmentStore(s *attach.Store) *attach.Store {
	prev := o.store
	o.store = s
	return prev
}

// WithStore returns ops together with the store reachable from it, wrapping
// ops in a store-carrying decorator when it has none. Use the returned Ops
// for the rest of the scope.
func WithStore(ops Ops) (Ops, *attach.Store) {
	return attach.Wrap(ops, UsingStore)
}

// UsingStore wraps ops so that it carries s, regardless of any store further
// down the delegate chain.
func UsingStore(ops Ops, s *attach.Store) Ops {
	return &attachOps{Forwarding: Forwarding{Ops: ops}, store: s}
}

// StoreOf returns the store reachable from ops, or nil.
func StoreOf(ops Ops) *attach.Store {
	return attach.Find(ops)
}

// Push pushes v under key and returns the Ops that carries it.
func Push[A any](ops Ops, key *attach.Key[A], v A) Ops {
	wrapped, s := WithStore(ops)
	key.Push(s, v)
	return wrapped
}

// Pop removes the current value for key.
func Pop[A any](ops Ops, key *attach.Key[A]) (A, bool) {
	return attach.Pop(ops, key)
}

// Get returns the current value for key.
func Get[A any](ops Ops, key *attach.Key[A]) (A, bool) {
	return attach.Get(ops, key)
}

func pushAll(ops Ops, bindings attach.Bindings) (Ops, func()) {
	wrapped, s := WithStore(ops)
	return wrapped, bindings.Push(s)
}
