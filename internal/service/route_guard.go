package service

import (
	"context"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// GuardOutcome is the result of evaluating the route guard.
type GuardOutcome int

const (
	// Redirected means the protected view must not run.
	Redirected GuardOutcome = iota
	// Allowed means a session is present.
	Allowed
)

func (o GuardOutcome) String() string {
	if o == Allowed {
		return "allowed"
	}
	return "redirected"
}

// GuardDecision is a single evaluation. Session is set only when Allowed.
type GuardDecision struct {
	Outcome GuardOutcome
	Target  string
	Session domainauth.Session
}

// sessionReader is the subset of SessionService the guard needs.
type sessionReader interface {
	Current(ctx context.Context, slot string) (domainauth.Session, bool)
}

// RouteGuard admits requests to protected views only when a session is present.
// It holds no state between evaluations.
type RouteGuard struct {
	sessions sessionReader
}

// NewRouteGuard constructs a RouteGuard.
func NewRouteGuard(sessions sessionReader) *RouteGuard {
	if sessions == nil {
		panic("session reader is required")
	}
	return &RouteGuard{sessions: sessions}
}

// Evaluate checks slot afresh on every call.
func (g *RouteGuard) Evaluate(ctx context.Context, slot string) GuardDecision {
	sess, ok := g.sessions.Current(ctx, slot)
	if !ok {
		return GuardDecision{Outcome: Redirected, Target: LoginPath}
	}
	return GuardDecision{Outcome: Allowed, Session: sess}
}
