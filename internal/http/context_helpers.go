package httpx

import (
	"context"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
)

// sessionKey and slotKey are unexported context key types to avoid collisions across packages.
type (
	sessionKey struct{}
	slotKey    struct{}
)

// SetSessionInContext returns a child context that carries the given session.
// An absent session leaves ctx unchanged.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	if !session.Present() {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(domainauth.Session); ok && session.Present() {
		return session, true
	}
	return domainauth.Session{}, false
}

// IsSignedIn reports whether the request context carries a session.
func IsSignedIn(ctx context.Context) bool {
	_, ok := GetUserSessionFromContext(ctx)
	return ok
}

// SetSlotInContext records the browser slot id read from the session cookie.
func SetSlotInContext(ctx context.Context, slot string) context.Context {
	if slot == "" {
		return ctx
	}
	return context.WithValue(ctx, slotKey{}, slot)
}

// GetSlotFromContext returns the browser slot id, or "" when the request has none.
func GetSlotFromContext(ctx context.Context) string {
	slot, _ := ctx.Value(slotKey{}).(string)
	return slot
}
