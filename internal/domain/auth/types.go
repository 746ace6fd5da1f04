// Package auth contains domain-level types for the signed-in session.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"time"

	"github.com/freelancehub/web/internal/domain/model"
)

// Session is the server-side record of the signed-in user for one browser slot.
// ID is the opaque slot identifier carried in the session cookie.
type Session struct {
	ID        string     `json:"id"`
	User      model.User `json:"user"`
	Token     string     `json:"token,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Present reports whether the session was recorded into a slot. Whatever
// user the login returned counts, with or without an id.
func (s Session) Present() bool { return s.ID != "" }

// Expired reports whether the retention window has passed. A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Owns reports whether the signed-in user is the given account.
// This is a presentation check only; the user API authorizes the actual call.
func (s Session) Owns(id model.UserID) bool {
	return s.Present() && s.User.ID != "" && s.User.ID == id
}

// DisplayName returns the name to show in navigation.
func (s Session) DisplayName() string {
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}
