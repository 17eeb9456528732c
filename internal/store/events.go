package store

import "time"

// Op names a dispatched intent.
type Op string

const (
	OpFetchAll Op = "fetch"
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
)

// Phase is a step of an intent's lifecycle.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// Event is delivered to listeners once per phase, after the state change.
type Event struct {
	Resource string
	Op       Op
	ID       string
	Phase    Phase
	Err      error
	Duration time.Duration
	// Count is the number of items after a fulfilled or rejected phase.
	Count int
}

// Subscribe registers fn for every future event. The returned func removes it.
// Listeners run on the dispatching goroutine and must not call back into the store
// synchronously with a blocking operation.
func (s *Store[T, P]) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store[T, P]) emit(ev Event) {
	s.lmu.RLock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
