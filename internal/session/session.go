// Package session keeps per-browser console state: upstream credentials,
// auth state, list page controls and live forms.
package session

import (
	"sync"
	"time"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/domain"
	"catalogconsole/internal/listview"
)

// Session is safe for concurrent use; a browser may fire requests in parallel.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	creds    apiclient.Credentials
	auth     AuthState
	lastSeen time.Time
	lists    map[string]listview.UIState
	forms    map[string]any
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
		lists:     map[string]listview.UIState{},
		forms:     map[string]any{},
	}
}

func (s *Session) Credentials() apiclient.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

func (s *Session) SetCredentials(c apiclient.Credentials) {
	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
}

// Auth returns a copy of the auth state.
func (s *Session) Auth() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// User is nil unless the session is authenticated.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.auth.IsAuthenticated {
		return nil
	}
	return s.auth.User
}

// UpdateAuth applies fn to the auth state atomically and returns the result.
func (s *Session) UpdateAuth(fn func(*AuthState)) AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.auth)
	return s.auth
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// ListState returns the controls for the named list page, defaults on first use.
func (s *Session) ListState(page string) listview.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.lists[page]
	if !ok {
		return listview.NewState()
	}
	return st.Clone()
}

func (s *Session) SetListState(page string, st listview.UIState) {
	s.mu.Lock()
	s.lists[page] = st.Clone()
	s.mu.Unlock()
}

// Form returns the live form stored under key, creating it with create.
func Form[F any](s *Session, key string, create func() F) F {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.forms[key].(F); ok {
		return f
	}
	f := create()
	s.forms[key] = f
	return f
}

// DropForm forgets the form stored under key.
func (s *Session) DropForm(key string) {
	s.mu.Lock()
	delete(s.forms, key)
	s.mu.Unlock()
}

// reset clears everything tied to the logged-in operator.
func (s *Session) reset() {
	s.mu.Lock()
	s.creds = apiclient.Credentials{}
	s.lists = map[string]listview.UIState{}
	s.forms = map[string]any{}
	s.mu.Unlock()
}

func (s *Session) record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Record{
		ID:            s.ID,
		Credentials:   s.creds,
		Authenticated: s.auth.IsAuthenticated,
		CreatedAt:     s.CreatedAt,
		LastSeen:      s.lastSeen,
	}
	if s.auth.IsAuthenticated && s.auth.User != nil {
		u := *s.auth.User
		r.User = &u
	}
	return r
}

// fromRecord rebuilds a session unresolved, so a restarted process asks the API again.
func fromRecord(r Record) *Session {
	s := newSession(r.ID, r.CreatedAt)
	s.lastSeen = r.LastSeen
	s.creds = r.Credentials
	if r.Authenticated && r.User != nil {
		u := *r.User
		s.auth.User = &u
		s.auth.IsAuthenticated = true
	}
	return s
}
