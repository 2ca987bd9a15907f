package attach

import (
	"github.com/wippyai/attachments/errors"
)

// AnyKey is the untyped view of a Key, used for diagnostics and presence checks.
type AnyKey interface {
	Name() string
	String() string
	height(s *Store) int
}

// Key identifies one attachment slot holding values of type A.
// Keys are compared by pointer identity, never by name.
type Key[A any] struct {
	name string
}

// NewKey creates a key. The name is used only in diagnostics.
func NewKey[A any](name string) *Key[A] {
	return &Key[A]{name: name}
}

// Name returns the diagnostic name.
func (k *Key[A]) Name() string {
	return k.name
}

func (k *Key[A]) String() string {
	return "Key[" + k.name + "]"
}

// frame holds one pushed value and the frame it shadows.
type frame[A any] struct {
	value A
	prev  *frame[A]
	depth int
}

func (k *Key[A]) top(s *Store) *frame[A] {
	if s == nil {
		return nil
	}
	f, _ := s.frames[k].(*frame[A])
	return f
}

func (k *Key[A]) height(s *Store) int {
	if f := k.top(s); f != nil {
		return f.depth
	}
	return 0
}

// Push makes v the current value for k in s. The previous value is retained
// and becomes current again after the matching Pop. s must not be nil.
func (k *Key[A]) Push(s *Store, v A) {
	prev := k.top(s)
	depth := 1
	if prev != nil {
		depth = prev.depth + 1
	}
	s.frames[k] = &frame[A]{value: v, prev: prev, depth: depth}
	s.emit(OpPush, k, depth)
}

// Pop removes and returns the current value. It reports false and leaves the
// store untouched if k has no value.
func (k *Key[A]) Pop(s *Store) (A, bool) {
	top := k.top(s)
	if top == nil {
		var zero A
		return zero, false
	}
	if top.prev == nil {
		delete(s.frames, k)
	} else {
		s.frames[k] = top.prev
	}
	s.emit(OpPop, k, top.depth)
	return top.value, true
}

// Get returns the current value without removing it.
func (k *Key[A]) Get(s *Store) (A, bool) {
	top := k.top(s)
	if top == nil {
		var zero A
		return zero, false
	}
	return top.value, true
}

// Require returns the current value or a missing attachment error listing
// the names of the keys that are present.
func (k *Key[A]) Require(s *Store, phase errors.Phase) (A, error) {
	if v, ok := k.Get(s); ok {
		return v, nil
	}
	var zero A
	return zero, errors.MissingAttachment(phase, k.name, s.Names())
}
