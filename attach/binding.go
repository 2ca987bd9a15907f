package attach

// Binding is a key paired with the value a combinator pushes for it.
type Binding interface {
	Key() AnyKey
	push(s *Store)
	pop(s *Store)
}

type binding[A any] struct {
	key   *Key[A]
	value A
}

// Bind pairs key with value.
func Bind[A any](key *Key[A], value A) Binding {
	return binding[A]{key: key, value: value}
}

func (b binding[A]) Key() AnyKey {
	return b.key
}

func (b binding[A]) push(s *Store) {
	b.key.Push(s, b.value)
}

func (b binding[A]) pop(s *Store) {
	b.key.Pop(s)
}

// Bindings is an ordered set of pushes.
type Bindings []Binding

// Push pushes every binding in order and returns a release function that pops
// them in reverse order. Calling release more than once has no further effect.
func (bs Bindings) Push(s *Store) (release func()) {
	for _, b := range bs {
		b.push(s)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		for i := len(bs) - 1; i >= 0; i-- {
			bs[i].pop(s)
		}
	}
}

// Names returns the key names in order.
func (bs Bindings) Names() []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Key().Name()
	}
	return names
}
