// Package memory provides in-process adapters used for development and single-instance deployments.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in a map. Sessions do not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
	clock    clockwork.Clock
}

// NewSessionStore creates an empty in-memory session store. A nil clock uses wall time.
func NewSessionStore(clock clockwork.Clock) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionStore{
		sessions: make(map[string]domainauth.Session),
		clock:    clock,
	}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Expired(s.clock.Now()) {
		return errors.New("session is expired")
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	if sess.Expired(s.clock.Now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// List returns live sessions ordered by creation time. limit <= 0 returns all.
func (s *SessionStore) List(_ context.Context, limit int) ([]domainauth.Session, error) {
	now := s.clock.Now()

	s.mu.RLock()
	out := make([]domainauth.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !sess.Expired(now) {
			out = append(out, sess)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteAll drops every session and returns how many were removed.
func (s *SessionStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	n := int64(len(s.sessions))
	s.sessions = make(map[string]domainauth.Session)
	s.mu.Unlock()
	return n, nil
}
