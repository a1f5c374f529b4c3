package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
)

// Manager keeps one Session per signed-in user for the HTTP server.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	starting singleflight.Group
}

func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Get returns u's session, signing it in on first use. Concurrent first
// requests for the same user share one sign-in.
func (m *Manager) Get(ctx context.Context, u *auth.User) (*Session, error) {
	if s, ok := m.Lookup(u.ID); ok {
		return s, nil
	}

	v, err, _ := m.starting.Do(u.ID.String(), func() (any, error) {
		if s, ok := m.Lookup(u.ID); ok {
			return s, nil
		}

		s := New(m.deps)
		if err := s.SignIn(ctx, u); err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.sessions[u.ID] = s
		m.mu.Unlock()

		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Session), nil
}

// Lookup returns the session of userID if one is open.
func (m *Manager) Lookup(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]

	return s, ok
}

// Forget signs out and drops the session of userID.
func (m *Manager) Forget(userID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		s.SignOut()
	}
}

// HandleUserChanged is an auth.Listener keeping open sessions in step with
// sign-outs and profile changes.
func (m *Manager) HandleUserChanged(userID uuid.UUID, u *auth.User) {
	if u == nil {
		m.Forget(userID)
		return
	}

	if s, ok := m.Lookup(userID); ok {
		// Same user, so this only refreshes profile fields and never fails.
		_ = s.OnUserChanged(context.Background(), u)
	}
}
