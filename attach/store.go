package attach

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store maps keys to their current frame. The zero value is not usable;
// create stores with NewStore.
type Store struct {
	frames   map[AnyKey]any
	observer Observer
	id       uuid.UUID
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithObserver reports every push and pop to o.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) {
		s.observer = o
	}
}

// WithID sets the store id instead of generating one.
func WithID(id uuid.UUID) StoreOption {
	return func(s *Store) {
		s.id = id
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{frames: make(map[AnyKey]any)}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	return s
}

// ID returns the store id. It has no meaning beyond diagnostics.
func (s *Store) ID() uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	return s.id
}

// Has reports whether k currently has a value.
func (s *Store) Has(k AnyKey) bool {
	return k.height(s) > 0
}

// Depth returns how many values are stacked under k.
func (s *Store) Depth(k AnyKey) int {
	return k.height(s)
}

// Len returns the number of keys that currently have a value.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// IsEmpty reports whether no key has a value.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Keys returns the keys that currently have a value, ordered by name.
func (s *Store) Keys() []AnyKey {
	if s == nil {
		return nil
	}
	keys := make([]AnyKey, 0, len(s.frames))
	for k := range s.frames {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Name() < keys[j].Name()
	})
	return keys
}

// Names returns the sorted names of the keys that currently have a value.
func (s *Store) Names() []string {
	keys := s.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name()
	}
	return names
}

func (s *Store) String() string {
	if s == nil {
		return "Store(nil)"
	}
	return "Store(" + s.id.String() + ")[" + strings.Join(s.Names(), ", ") + "]"
}

func (s *Store) emit(op Op, k AnyKey, depth int) {
	if ce := Logger().Check(zap.DebugLevel, "attachment "+op.String()); ce != nil {
		ce.Write(
			zap.Stringer("store", s.id),
			zap.String("key", k.Name()),
			zap.Int("depth", depth),
		)
	}
	if s.observer != nil {
		s.observer.Observe(Event{Store: s.id, Op: op, Key: k.Name(), Depth: depth})
	}
}
