package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/domain"
)

// ErrNotFound is returned by Repo.Load for unknown or expired ids.
var ErrNotFound = errors.New("session not found")

// Record is the persisted part of a session. List and form state never leave the process.
type Record struct {
	ID            string                `json:"id"`
	User          *domain.User          `json:"user,omitempty"`
	Authenticated bool                  `json:"authenticated"`
	Credentials   apiclient.Credentials `json:"credentials"`
	CreatedAt     time.Time             `json:"created_at"`
	LastSeen      time.Time             `json:"last_seen"`
}

type Repo interface {
	Load(ctx context.Context, id string) (Record, error)
	Save(ctx context.Context, r Record) error
	Delete(ctx context.Context, id string) error
}

// MemoryRepo keeps records in process memory.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: map[string]Record{}}
}

func (m *MemoryRepo) Load(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepo) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	m.records[r.ID] = r
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}
