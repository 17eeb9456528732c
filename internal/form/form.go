// Package form holds create/edit drafts for catalog resources and submits
// them through a resource store exactly once per click.
package form

import (
	"context"
	"sync"

	"catalogconsole/internal/apperr"
)

// ErrSubmitInFlight is returned when a submit arrives while another is running.
var ErrSubmitInFlight = apperr.New(apperr.CodeConflict, "A save is already in progress")

// Draft is a form's in-memory state for payload type P.
type Draft[P any] interface {
	// EntityID is empty for a create.
	EntityID() string
	Validate() error
	Payload() P
}

// Dispatcher issues the create or update intent; a resource store is one.
type Dispatcher[T, P any] interface {
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id string, payload P) (T, error)
}

type Form[T, P any] struct {
	dispatch Dispatcher[T, P]

	mu         sync.Mutex
	submitting bool
}

func New[T, P any](d Dispatcher[T, P]) *Form[T, P] {
	return &Form[T, P]{dispatch: d}
}

func (f *Form[T, P]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates the draft, then dispatches one create or update. onSuccess
// runs only after a fulfilled call. The draft is never modified.
func (f *Form[T, P]) Submit(ctx context.Context, draft Draft[P], onSuccess func(T)) (T, error) {
	var zero T
	if err := draft.Validate(); err != nil {
		return zero, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return zero, ErrSubmitInFlight
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	var (
		saved T
		err   error
	)
	if id := draft.EntityID(); id != "" {
		saved, err = f.dispatch.Update(ctx, id, draft.Payload())
	} else {
		saved, err = f.dispatch.Create(ctx, draft.Payload())
	}
	if err != nil {
		return zero, err
	}
	if onSuccess != nil {
		onSuccess(saved)
	}
	return saved, nil
}
