package attach

import (
	"sync"

	"github.com/google/uuid"
)

// Op is a store mutation.
type Op uint8

const (
	OpPush Op = iota + 1
	OpPop
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	default:
		return "unknown"
	}
}

// Event describes one push or pop. Depth is the stack height of the pushed
// or popped frame.
type Event struct {
	Key   string
	Depth int
	Op    Op
	Store uuid.UUID
}

// Observer receives store events synchronously, on the goroutine that
// mutated the store.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Recorder is an Observer that keeps every event. It is safe to share
// between stores used on different goroutines.
type Recorder struct {
	events []Event
	pushes int
	pops   int
	mu     sync.Mutex
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	switch e.Op {
	case OpPush:
		r.pushes++
	case OpPop:
		r.pops++
	}
}

// Events returns a copy of the recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Pushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes
}

func (r *Recorder) Pops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pops
}

// Balanced reports whether every push has been matched by a pop.
func (r *Recorder) Balanced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes == r.pops
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.pushes = 0
	r.pops = 0
}
