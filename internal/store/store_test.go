package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogconsole/internal/apperr"
)

type item struct {
	ID    string
	Title string
}

func (i item) Key() string { return i.ID }

type payload struct {
	Title string
}

// fakeAPI answers like the catalog API; gates let a test hold a call open.
type fakeAPI struct {
	mu      sync.Mutex
	items   []item
	nextID  int
	listErr error
	mutErr  error
	gates   map[string]chan struct{}
}

func (f *fakeAPI) wait(ctx context.Context, key string) error {
	f.mu.Lock()
	gate := f.gates[key]
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return apperr.Wrap(apperr.CodeUpstream, ctx.Err(), "request timed out")
	}
}

func (f *fakeAPI) List(ctx context.Context) ([]item, error) {
	if err := f.wait(ctx, "list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, p payload) (item, error) {
	if err := f.wait(ctx, "create"); err != nil {
		return item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return item{}, f.mutErr
	}
	f.nextID++
	it := item{ID: "srv-" + string(rune('0'+f.nextID)), Title: p.Title}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, p payload) (item, error) {
	if err := f.wait(ctx, "update:"+p.Title); err != nil {
		return item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return item{}, f.mutErr
	}
	return item{ID: id, Title: p.Title}, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if err := f.wait(ctx, "delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutErr
}

func newStore(api *fakeAPI, opts ...Option) *Store[item, payload] {
	return New[item, payload]("item", api, api, opts...)
}

func TestFetchAllReplacesItems(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1", Title: "Tires"}}}
	s := newStore(api)

	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, []item{{ID: "1", Title: "Tires"}}, snap.Items)
	assert.False(t, snap.Loading())
	assert.Equal(t, "", snap.Err)
	assert.Equal(t, StatusSuccess, snap.Status)
}

func TestFetchAllFailureKeepsStaleItems(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1", Title: "Tires"}}}
	s := newStore(api)
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	api.listErr = apperr.New(apperr.CodeUpstream, "gateway down")
	_, err = s.FetchAll(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, "gateway down", snap.Err)
	assert.Equal(t, StatusFailure, snap.Status)
	assert.False(t, snap.Loading())
}

func TestCreateAppendsServerEntityOnce(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1", Title: "Tires"}}}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	created, err := s.Create(context.Background(), payload{Title: "Oil"})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, created.ID, snap.Items[1].ID)
	assert.Equal(t, "srv-1", created.ID)
}

func TestCreateFailureLeavesItems(t *testing.T) {
	api := &fakeAPI{mutErr: apperr.New(apperr.CodeUpstream, "title taken")}
	s := newStore(api)

	_, err := s.Create(context.Background(), payload{Title: "Oil"})
	require.Error(t, err)
	assert.Equal(t, "title taken", apperr.PublicMessage(err))
	assert.Empty(t, s.Snapshot().Items)
}

func TestUpdateReplacesWholesale(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1", Title: "Tires"}, {ID: "2", Title: "Oil"}}}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	_, err := s.Update(context.Background(), "1", payload{Title: "Winter Tires"})
	require.NoError(t, err)

	assert.Equal(t, []item{{ID: "1", Title: "Winter Tires"}, {ID: "2", Title: "Oil"}}, s.Snapshot().Items)
}

func TestDeleteIsIdempotent(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1"}, {ID: "2"}}}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	require.NoError(t, s.Delete(context.Background(), "1"))
	assert.Equal(t, []item{{ID: "2"}}, s.Snapshot().Items)

	require.NoError(t, s.Delete(context.Background(), "1"))
	assert.Equal(t, []item{{ID: "2"}}, s.Snapshot().Items)
}

func TestDeleteFailureKeepsItems(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1"}}}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	api.mutErr = apperr.New(apperr.CodeNotFound, "category not found")
	err := s.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.Len(t, s.Snapshot().Items, 1)
	assert.Equal(t, "category not found", s.Snapshot().Err)
}

func TestOverlappingUpdatesCompletionOrderWins(t *testing.T) {
	api := &fakeAPI{
		items: []item{{ID: "1", Title: "Tires"}},
		gates: map[string]chan struct{}{
			"update:first":  make(chan struct{}),
			"update:second": make(chan struct{}),
		},
	}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, _ = s.Update(context.Background(), "1", payload{Title: "first"}) }()
	go func() { defer wg.Done(); _, _ = s.Update(context.Background(), "1", payload{Title: "second"}) }()

	// second resolves before first; the later completion wins.
	close(api.gates["update:second"])
	require.Eventually(t, func() bool { return s.Snapshot().Items[0].Title == "second" }, time.Second, time.Millisecond)
	close(api.gates["update:first"])
	wg.Wait()

	assert.Equal(t, "first", s.Snapshot().Items[0].Title)
}

func TestDeleteWhileFetchPendingAppliesToCurrentItems(t *testing.T) {
	api := &fakeAPI{
		items: []item{{ID: "1"}, {ID: "2"}},
		gates: map[string]chan struct{}{},
	}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	api.gates["list"] = make(chan struct{})
	done := make(chan struct{})
	go func() {
		_, _ = s.FetchAll(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return s.Snapshot().Loading() }, time.Second, time.Millisecond)

	require.NoError(t, s.Delete(context.Background(), "1"))
	snap := s.Snapshot()
	assert.Equal(t, []item{{ID: "2"}}, snap.Items)
	// the delete resolved first, so loading is already off while the fetch is still pending.
	assert.False(t, snap.Loading())

	close(api.gates["list"])
	<-done
	// the fetch resolves later with the server's (unchanged) collection.
	assert.Len(t, s.Snapshot().Items, 2)
}

func TestTimeoutEndsLoading(t *testing.T) {
	api := &fakeAPI{gates: map[string]chan struct{}{"list": make(chan struct{})}}
	s := newStore(api, WithTimeout(20*time.Millisecond))

	_, err := s.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, s.Snapshot().Loading())
	assert.Equal(t, StatusFailure, s.Snapshot().Status)
}

func TestPendingClearsErrorSuccessDoesNot(t *testing.T) {
	api := &fakeAPI{listErr: apperr.New(apperr.CodeUpstream, "down")}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())
	require.Equal(t, "down", s.Snapshot().Err)

	api.listErr = nil
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", s.Snapshot().Err)
}

func TestReadOnlyStoreRejectsMutations(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "k1"}}}
	s := NewReadOnly[item]("tirekey", api)

	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	_, err = s.Create(context.Background(), struct{}{})
	assert.True(t, apperr.IsCode(err, apperr.CodeReadOnly))
	assert.True(t, apperr.IsCode(s.Delete(context.Background(), "k1"), apperr.CodeReadOnly))
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestEventsPerPhase(t *testing.T) {
	tick := time.Unix(0, 0)
	clock := func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	api := &fakeAPI{items: []item{{ID: "1"}}}
	s := newStore(api, withClock(clock))

	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })

	_, _ = s.FetchAll(context.Background())
	api.mutErr = errors.New("nope")
	_ = s.Delete(context.Background(), "1")
	unsubscribe()
	_, _ = s.FetchAll(context.Background())

	require.Len(t, events, 4)
	assert.Equal(t, PhasePending, events[0].Phase)
	assert.Equal(t, PhaseFulfilled, events[1].Phase)
	assert.Equal(t, time.Millisecond, events[1].Duration)
	assert.Equal(t, 1, events[1].Count)
	assert.Equal(t, OpDelete, events[3].Op)
	assert.Equal(t, PhaseRejected, events[3].Phase)
	assert.Equal(t, "1", events[3].ID)
	assert.Error(t, events[3].Err)
}

func TestFindAndSnapshotAreCopies(t *testing.T) {
	api := &fakeAPI{items: []item{{ID: "1", Title: "Tires"}}}
	s := newStore(api)
	_, _ = s.FetchAll(context.Background())

	snap := s.Snapshot()
	snap.Items[0].Title = "mutated"

	got, ok := s.Find("1")
	require.True(t, ok)
	assert.Equal(t, "Tires", got.Title)
	_, ok = s.Find("missing")
	assert.False(t, ok)
}
