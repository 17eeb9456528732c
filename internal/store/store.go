// Package store keeps the console's authoritative copy of each catalog
// resource together with its request lifecycle.
//
// Effects are applied in completion order: two overlapping mutations of the
// same id resolve last-completed-wins. There is no revision check.
package store

import (
	"context"
	"sync"
	"time"

	"catalogconsole/internal/apperr"
)

// Entity is anything the API identifies by a server-assigned id.
type Entity interface {
	Key() string
}

// Status is the lifecycle of the most recent request phase.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "idle"
	}
}

// Lister loads a whole collection.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Mutator writes single entities.
type Mutator[T, P any] interface {
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id string, payload P) (T, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is an immutable view of a store.
type Snapshot[T any] struct {
	Items  []T
	Status Status
	// Err is the last rejection reason. A new request clears it; success does not.
	Err string
}

func (s Snapshot[T]) Loading() bool { return s.Status == StatusLoading }
func (s Snapshot[T]) Empty() bool   { return len(s.Items) == 0 }

type Option func(*options)

type options struct {
	timeout time.Duration
	now     func() time.Time
}

// WithTimeout bounds every request the store issues.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Store is the single owner of one resource type's items and flags.
type Store[T Entity, P any] struct {
	resource string
	lister   Lister[T]
	mutator  Mutator[T, P]
	opts     options

	mu     sync.RWMutex
	items  []T
	status Status
	err    string

	lmu       sync.RWMutex
	listeners map[int]func(Event)
	nextID    int
}

// New builds a store. A nil mutator makes the store read-only.
func New[T Entity, P any](resource string, lister Lister[T], mutator Mutator[T, P], opts ...Option) *Store[T, P] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, P]{
		resource:  resource,
		lister:    lister,
		mutator:   mutator,
		opts:      o,
		items:     []T{},
		listeners: map[int]func(Event){},
	}
}

// NewReadOnly builds a store that only supports FetchAll.
func NewReadOnly[T Entity](resource string, lister Lister[T], opts ...Option) *Store[T, struct{}] {
	return New[T, struct{}](resource, lister, nil, opts...)
}

// ErrReadOnly is returned by mutations on a read-only store.
var ErrReadOnly = apperr.New(apperr.CodeReadOnly, "resource is read-only")

func (s *Store[T, P]) Resource() string { return s.resource }

func (s *Store[T, P]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return Snapshot[T]{Items: items, Status: s.status, Err: s.err}
}

// Find returns the item with id from the current items.
func (s *Store[T, P]) Find(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T, P]) FetchAll(ctx context.Context) ([]T, error) {
	if s.lister == nil {
		return nil, apperr.New(apperr.CodeInternal, "store has no lister")
	}
	var out []T
	err := s.run(ctx, OpFetchAll, "", func(ctx context.Context) (func([]T) []T, error) {
		items, err := s.lister.List(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		out = items
		return func([]T) []T { return items }, nil
	})
	return out, err
}

func (s *Store[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var created T
	if s.mutator == nil {
		return created, ErrReadOnly
	}
	err := s.run(ctx, OpCreate, "", func(ctx context.Context) (func([]T) []T, error) {
		entity, err := s.mutator.Create(ctx, payload)
		if err != nil {
			return nil, err
		}
		created = entity
		return func(cur []T) []T { return appendCopy(cur, entity) }, nil
	})
	return created, err
}

func (s *Store[T, P]) Update(ctx context.Context, id string, payload P) (T, error) {
	var updated T
	if s.mutator == nil {
		return updated, ErrReadOnly
	}
	err := s.run(ctx, OpUpdate, id, func(ctx context.Context) (func([]T) []T, error) {
		entity, err := s.mutator.Update(ctx, id, payload)
		if err != nil {
			return nil, err
		}
		updated = entity
		return func(cur []T) []T { return replace(cur, entity) }, nil
	})
	return updated, err
}

func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	if s.mutator == nil {
		return ErrReadOnly
	}
	return s.run(ctx, OpDelete, id, func(ctx context.Context) (func([]T) []T, error) {
		if err := s.mutator.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(cur []T) []T { return remove(cur, id) }, nil
	})
}

// run drives one pending/fulfilled/rejected lifecycle. call returns the
// effect to apply to the items current at completion time.
func (s *Store[T, P]) run(ctx context.Context, op Op, id string, call func(context.Context) (func([]T) []T, error)) error {
	if s.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.timeout)
		defer cancel()
	}

	s.mu.Lock()
	s.status = StatusLoading
	s.err = ""
	s.mu.Unlock()
	start := s.opts.now()
	s.emit(Event{Resource: s.resource, Op: op, ID: id, Phase: PhasePending})

	effect, err := call(ctx)

	s.mu.Lock()
	if err != nil {
		s.status = StatusFailure
		s.err = apperr.PublicMessage(err)
	} else {
		s.items = effect(s.items)
		s.status = StatusSuccess
	}
	count := len(s.items)
	s.mu.Unlock()

	ev := Event{Resource: s.resource, Op: op, ID: id, Phase: PhaseFulfilled, Duration: s.opts.now().Sub(start), Count: count}
	if err != nil {
		ev.Phase = PhaseRejected
		ev.Err = err
	}
	s.emit(ev)
	return err
}

func appendCopy[T any](cur []T, entity T) []T {
	out := make([]T, len(cur), len(cur)+1)
	copy(out, cur)
	return append(out, entity)
}

func replace[T Entity](cur []T, entity T) []T {
	out := make([]T, len(cur))
	for i, it := range cur {
		if it.Key() == entity.Key() {
			out[i] = entity
			continue
		}
		out[i] = it
	}
	return out
}

func remove[T Entity](cur []T, id string) []T {
	out := make([]T, 0, len(cur))
	for _, it := range cur {
		if it.Key() != id {
			out = append(out, it)
		}
	}
	return out
}
