package attach

import (
	"github.com/wippyai/attachments/errors"
)

// MaxDelegateDepth bounds the walk through Delegating carriers.
const MaxDelegateDepth = 16

// Carrier is implemented by carriers that may own a store.
type Carrier interface {
	HasStore() bool
	AttachmentStore() *Store
}

// Delegating is implemented by decorators. Delegate returns the carrier
// one level down.
type Delegating interface {
	Delegate() any
}

// Swappable is implemented by carriers whose store can be replaced for a
// bounded scope. SetAttachmentStore returns the store it replaced.
type Swappable interface {
	Carrier
	SetAttachmentStore(s *Store) *Store
}

// walk calls visit for c and each delegate below it until visit returns true
// or the chain ends.
func walk(c any, visit func(any) bool) {
	for i := 0; i < MaxDelegateDepth && c != nil; i++ {
		if visit(c) {
			return
		}
		d, ok := c.(Delegating)
		if !ok {
			return
		}
		c = d.Delegate()
	}
}

// Find returns the store of the first carrier in c's delegate chain that has
// one, or nil.
func Find(c any) *Store {
	var found *Store
	walk(c, func(c any) bool {
		if holder, ok := c.(Carrier); ok && holder.HasStore() {
			found = holder.AttachmentStore()
			return found != nil
		}
		return false
	})
	return found
}

// FindSwappable returns the first Swappable carrier in c's delegate chain.
func FindSwappable(c any) (Swappable, bool) {
	var found Swappable
	walk(c, func(c any) bool {
		sw, ok := c.(Swappable)
		if ok {
			found = sw
		}
		return ok
	})
	return found, found != nil
}

// Wrap returns c unchanged with its store when the delegate chain already
// has one. Otherwise it creates a store and returns decorate(c, store).
// Callers must keep using the returned carrier for the rest of the scope.
func Wrap[C any](c C, decorate func(C, *Store) C) (C, *Store) {
	if s := Find(c); s != nil {
		return c, s
	}
	s := NewStore()
	return decorate(c, s), s
}

// Sync shares the store of parent with child until restore is called, which
// puts back whatever store child had before. A parent without a store leaves
// the child alone.
func Sync(parent, child any) (restore func(), err error) {
	s := Find(parent)
	if s == nil {
		return func() {}, nil
	}
	sw, ok := FindSwappable(child)
	if !ok {
		return func() {}, errors.UnsupportedCarrier(errors.PhaseSync, child, "cannot replace attachment store")
	}
	prev := sw.SetAttachmentStore(s)
	return func() {
		sw.SetAttachmentStore(prev)
	}, nil
}

// Get returns the current value for key on c's store.
func Get[A any](c any, key *Key[A]) (A, bool) {
	return key.Get(Find(c))
}

// Pop removes the current value for key from c's store.
func Pop[A any](c any, key *Key[A]) (A, bool) {
	return key.Pop(Find(c))
}

// Present reports whether key has a value on c's store.
func Present(c any, key AnyKey) bool {
	return Find(c).Has(key)
}
