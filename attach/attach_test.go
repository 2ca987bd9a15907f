package attach

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/wippyai/attachments/errors"
)

func TestKey_PushPopShadowing(t *testing.T) {
	k := NewKey[string]("k")
	s := NewStore()

	k.Push(s, "v1")
	k.Push(s, "v2")

	if v, ok := k.Get(s); !ok || v != "v2" {
		t.Fatalf("Get = %q, %v; want v2", v, ok)
	}
	if d := s.Depth(k); d != 2 {
		t.Errorf("Depth = %d, want 2", d)
	}
	if v, ok := k.Pop(s); !ok || v != "v2" {
		t.Fatalf("Pop = %q, %v; want v2", v, ok)
	}
	if v, ok := k.Get(s); !ok || v != "v1" {
		t.Fatalf("Get after pop = %q, %v; want v1", v, ok)
	}
	if v, ok := k.Pop(s); !ok || v != "v1" {
		t.Fatalf("Pop = %q, %v; want v1", v, ok)
	}
	if _, ok := k.Get(s); ok {
		t.Error("expected key absent after balanced pops")
	}
	if !s.IsEmpty() {
		t.Errorf("store not empty: %v", s)
	}
}

func TestKey_NeverPushed(t *testing.T) {
	pushed := NewKey[int]("pushed")
	never := NewKey[int]("never")
	s := NewStore()
	pushed.Push(s, 7)

	if _, ok := never.Get(s); ok {
		t.Error("Get of never-pushed key reported present")
	}
	if _, ok := never.Pop(s); ok {
		t.Error("Pop of never-pushed key reported present")
	}
	if v, ok := pushed.Get(s); !ok || v != 7 {
		t.Errorf("other key disturbed: %d, %v", v, ok)
	}
}

func TestKey_IdentityNotName(t *testing.T) {
	a := NewKey[string]("same")
	b := NewKey[string]("same")
	s := NewStore()
	a.Push(s, "x")

	if _, ok := b.Get(s); ok {
		t.Error("key with equal name must not see another key's value")
	}
	if !s.Has(a) || s.Has(b) {
		t.Error("Has must compare by identity")
	}
}

func TestKey_NilStore(t *testing.T) {
	k := NewKey[int]("k")
	if _, ok := k.Get(nil); ok {
		t.Error("Get on nil store reported present")
	}
	if _, ok := k.Pop(nil); ok {
		t.Error("Pop on nil store reported present")
	}
	if _, err := k.Require(nil, errors.PhaseDecode); err == nil {
		t.Error("Require on nil store should fail")
	}
}

func TestKey_Require(t *testing.T) {
	want := NewKey[int]("registry")
	s := NewStore()
	NewKey[string]("version").Push(s, "1")
	NewKey[string]("palette").Push(s, "p")

	_, err := want.Require(s, errors.PhaseDecode)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindMissingAttachment}) {
		t.Errorf("unexpected error kind: %v", err)
	}
	msg := err.Error()
	for _, s := range []string{"registry", "[palette, version]"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q missing %q", msg, s)
		}
	}

	want.Push(s, 3)
	if v, err := want.Require(s, errors.PhaseDecode); err != nil || v != 3 {
		t.Errorf("Require = %d, %v", v, err)
	}
}

func TestStore_Diagnostics(t *testing.T) {
	id := uuid.MustParse("6f1c2f56-3c63-4a8e-9d4c-6b5b8e1c2a10")
	s := NewStore(WithID(id))
	if s.ID() != id {
		t.Errorf("ID = %s, want %s", s.ID(), id)
	}
	if NewStore().ID() == uuid.Nil {
		t.Error("generated id is nil")
	}

	NewKey[int]("b").Push(s, 1)
	NewKey[int]("a").Push(s, 2)

	if got := s.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names = %v", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}
	if !strings.Contains(s.String(), "[a, b]") {
		t.Errorf("String = %q", s.String())
	}
}

func TestBindings_PushRelease(t *testing.T) {
	rec := &Recorder{}
	s := NewStore(WithObserver(rec))
	a := NewKey[string]("a")
	b := NewKey[int]("b")

	release := Bindings{Bind(a, "x"), Bind(b, 1)}.Push(s)
	if v, _ := a.Get(s); v != "x" {
		t.Errorf("a = %q", v)
	}
	if v, _ := b.Get(s); v != 1 {
		t.Errorf("b = %d", v)
	}

	release()
	release()

	if !s.IsEmpty() {
		t.Errorf("store not empty after release: %v", s)
	}
	if rec.Pushes() != 2 || rec.Pops() != 2 {
		t.Errorf("pushes=%d pops=%d, want 2/2", rec.Pushes(), rec.Pops())
	}

	events := rec.Events()
	var order []string
	for _, e := range events {
		order = append(order, e.Op.String()+":"+e.Key)
	}
	want := []string{"push:a", "push:b", "pop:b", "pop:a"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("event order = %v, want %v", order, want)
	}
	if events[0].Store != s.ID() {
		t.Error("event carries wrong store id")
	}
}

func TestBindings_ReleaseOnPanic(t *testing.T) {
	rec := &Recorder{}
	s := NewStore(WithObserver(rec))
	k := NewKey[int]("k")

	func() {
		defer func() { _ = recover() }()
		release := Bindings{Bind(k, 1)}.Push(s)
		defer release()
		panic("inner failure")
	}()

	if !rec.Balanced() {
		t.Errorf("unbalanced: pushes=%d pops=%d", rec.Pushes(), rec.Pops())
	}
	if s.Has(k) {
		t.Error("key still present after panic")
	}
}

// plain carries nothing.
type plain struct{}

// holder owns a store.
type holder struct {
	store *Store
}

func (h *holder) HasStore() bool          { return h.store != nil }
func (h *holder) AttachmentStore() *Store { return h.store }
func (h *holder) SetAttachmentStore(s *Store) *Store {
	prev := h.store
	h.store = s
	return prev
}

// decorator wraps one level.
type decorator struct {
	inner any
}

func (d decorator) Delegate() any { return d.inner }

func TestFind(t *testing.T) {
	s := NewStore()
	h := &holder{store: s}

	tests := []struct {
		name    string
		carrier any
		want    *Store
	}{
		{"plain", plain{}, nil},
		{"nil", nil, nil},
		{"native", h, s},
		{"native without store", &holder{}, nil},
		{"one decorator", decorator{h}, s},
		{"three decorators", decorator{decorator{decorator{h}}}, s},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Find(tt.carrier); got != tt.want {
				t.Errorf("Find = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("beyond max depth", func(t *testing.T) {
		var c any = h
		for i := 0; i < MaxDelegateDepth; i++ {
			c = decorator{c}
		}
		if Find(c) != nil {
			t.Error("store found beyond MaxDelegateDepth")
		}
	})
}

type wrapped struct {
	inner plain
	store *Store
}

func (w *wrapped) HasStore() bool          { return true }
func (w *wrapped) AttachmentStore() *Store { return w.store }

func TestWrap(t *testing.T) {
	k := NewKey[string]("K")
	decorate := func(c any, s *Store) any {
		return &wrapped{inner: c.(plain), store: s}
	}

	var c any = plain{}
	c2, s := Wrap(c, decorate)
	k.Push(s, "x")

	if _, ok := Get(c, k); ok {
		t.Error("original carrier must not see the attachment")
	}
	if v, ok := Get(c2, k); !ok || v != "x" {
		t.Errorf("Get(wrapped) = %q, %v", v, ok)
	}

	c3, s3 := Wrap(c2, decorate)
	if c3 != c2 || s3 != s {
		t.Error("wrapping a carrier with a store must return it unchanged")
	}
	if !Present(c3, k) {
		t.Error("Present = false")
	}
	if v, ok := Pop(c3, k); !ok || v != "x" {
		t.Errorf("Pop = %q, %v", v, ok)
	}
}

func TestSync(t *testing.T) {
	k := NewKey[int]("k")
	parent := &holder{store: NewStore()}
	own := NewStore()
	child := &holder{store: own}
	k.Push(parent.store, 5)

	restore, err := Sync(parent, decorator{child})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if v, ok := Get(child, k); !ok || v != 5 {
		t.Errorf("child sees %d, %v", v, ok)
	}
	restore()
	if child.store != own {
		t.Error("restore did not reinstate the child's store")
	}

	if _, err := Sync(parent, plain{}); !errors.Is(err, &errors.Error{Phase: errors.PhaseSync, Kind: errors.KindUnsupportedCarrier}) {
		t.Errorf("expected unsupported carrier, got %v", err)
	}

	restore, err = Sync(plain{}, child)
	if err != nil {
		t.Fatalf("Sync without parent store: %v", err)
	}
	restore()
	if child.store != own {
		t.Error("child store changed although parent had none")
	}
}

func TestObserverFunc(t *testing.T) {
	var got []Op
	s := NewStore(WithObserver(ObserverFunc(func(e Event) { got = append(got, e.Op) })))
	k := NewKey[int]("k")
	k.Push(s, 1)
	k.Pop(s)
	if !reflect.DeepEqual(got, []Op{OpPush, OpPop}) {
		t.Errorf("ops = %v", got)
	}
}
