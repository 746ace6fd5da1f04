package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/domain/model"
	"github.com/freelancehub/web/internal/observability/metrics"
	"github.com/freelancehub/web/internal/ports"
)

// SessionServiceConfig groups session tuning knobs.
type SessionServiceConfig struct {
	// TTL bounds how long a saved session is retained. Zero keeps it until cleared.
	TTL     time.Duration
	Clock   clockwork.Clock
	Metrics *metrics.SessionMetrics
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store  ports.SessionStore
	Config SessionServiceConfig
	Logger *slog.Logger
}

// SessionService owns the signed-in identity of each browser slot.
// Callers only ever observe a session as present or absent.
type SessionService struct {
	store   ports.SessionStore
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *metrics.SessionMetrics
	logger  *slog.Logger
}

var _ ports.SessionRecorder = (*SessionService)(nil)

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	if opts.Store == nil {
		panic("SessionStore is required")
	}
	clock := opts.Config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		store:   opts.Store,
		ttl:     max(opts.Config.TTL, 0),
		clock:   clock,
		metrics: opts.Config.Metrics,
		logger:  logger.With("component", "session"),
	}
}

// NewSlot issues a fresh random slot id.
func (s *SessionService) NewSlot() string {
	return uuid.NewString()
}

// Save stores sess under slot, replacing any previous session.
func (s *SessionService) Save(ctx context.Context, slot string, sess domainauth.Session) error {
	if slot == "" {
		return errors.New("session slot is required")
	}
	now := s.clock.Now().UTC()
	sess.ID = slot
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.ExpiresAt.IsZero() && s.ttl > 0 {
		sess.ExpiresAt = now.Add(s.ttl)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Record saves the identity returned by login into slot.
func (s *SessionService) Record(ctx context.Context, slot string, user model.User, token string) error {
	return s.Save(ctx, slot, domainauth.Session{User: user, Token: token})
}

// Current returns the session for slot. Missing, unreadable and expired
// sessions are all reported as absent; store failures are logged, not returned.
func (s *SessionService) Current(ctx context.Context, slot string) (domainauth.Session, bool) {
	if slot == "" {
		s.metrics.Lookup(metrics.SessionAbsent)
		return domainauth.Session{}, false
	}

	sess, err := s.store.Get(ctx, slot)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrSessionNotFound):
		s.metrics.Lookup(metrics.SessionAbsent)
		return domainauth.Session{}, false
	case errors.Is(err, ports.ErrSessionMalformed):
		s.metrics.Lookup(metrics.SessionMalformed)
		s.logger.WarnContext(ctx, "discarding malformed session", slog.Any("error", err))
		return domainauth.Session{}, false
	default:
		s.metrics.Lookup(metrics.SessionError)
		s.logger.WarnContext(ctx, "session lookup failed", slog.Any("error", err))
		return domainauth.Session{}, false
	}

	if !sess.Present() || sess.Expired(s.clock.Now()) {
		s.metrics.Lookup(metrics.SessionAbsent)
		return domainauth.Session{}, false
	}

	s.metrics.Lookup(metrics.SessionPresent)
	return sess, true
}

// Clear removes the session for slot. Clearing an absent session is not an error.
func (s *SessionService) Clear(ctx context.Context, slot string) error {
	if slot == "" {
		return nil
	}
	if err := s.store.Delete(ctx, slot); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
