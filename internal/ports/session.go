// Package ports defines interfaces (hexagonal ports) between the services and their adapters.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/domain/model"
)

var (
	// ErrSessionNotFound is returned by SessionStore.Get when no session exists for the id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionMalformed is returned by SessionStore.Get when the stored value cannot be decoded.
	ErrSessionMalformed = errors.New("session data malformed")
)

// SessionStore persists and retrieves sessions keyed by Session.ID.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionRecorder writes the identity returned by a successful login into a browser slot.
type SessionRecorder interface {
	Record(ctx context.Context, slot string, user model.User, token string) error
}
