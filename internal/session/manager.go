package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Manager keeps live sessions in memory and persists their records to a Repo.
type Manager struct {
	repo Repo
	ttl  time.Duration
	now  func() time.Time

	mu   sync.Mutex
	live map[string]*Session
}

func NewManager(repo Repo, ttl time.Duration) *Manager {
	return &Manager{repo: repo, ttl: ttl, now: time.Now, live: map[string]*Session{}}
}

func (m *Manager) Repo() Repo { return m.repo }

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.LastSeen()) > m.ttl
}

// Get returns the session for id, loading it from the repo or starting a
// fresh one. Sessions idle past the TTL start over.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errors.New("empty session id")
	}
	now := m.now()

	m.mu.Lock()
	s, ok := m.live[id]
	if ok && m.expired(s, now) {
		delete(m.live, id)
		ok = false
	}
	m.mu.Unlock()
	if ok {
		s.touch(now)
		return s, nil
	}

	rec, err := m.repo.Load(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		s = newSession(id, now)
	case err != nil:
		return nil, err
	default:
		s = fromRecord(rec)
		if m.expired(s, now) {
			_ = m.repo.Delete(ctx, id)
			s = newSession(id, now)
		}
		s.touch(now)
	}

	m.mu.Lock()
	// another request for the same id may have won the race
	if existing, ok := m.live[id]; ok {
		s = existing
	} else {
		m.live[id] = s
	}
	m.mu.Unlock()
	return s, nil
}

// Save persists the session's record.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.repo.Save(ctx, s.record())
}

// Reset clears credentials, list state and forms, then persists.
func (m *Manager) Reset(ctx context.Context, s *Session) error {
	s.reset()
	return m.Save(ctx, s)
}

func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
	return m.repo.Delete(ctx, id)
}

// Sweep evicts idle sessions from memory and returns how many went.
// Persisted records expire on their own.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.live {
		if m.expired(s, now) {
			delete(m.live, id)
			n++
		}
	}
	return n
}

// Live is the number of sessions held in memory.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
