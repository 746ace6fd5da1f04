package auth

import (
	"testing"
	"time"

	"github.com/freelancehub/web/internal/domain/model"
)

func TestSession_Present(t *testing.T) {
	if (Session{}).Present() {
		t.Fatalf("zero session should be absent")
	}
	if (Session{User: model.User{ID: "1"}}).Present() {
		t.Fatalf("session never saved to a slot should be absent")
	}
	if !(Session{ID: "slot", User: model.User{Name: "A"}}).Present() {
		t.Fatalf("recorded session without a user id should be present")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	if (Session{}).Expired(now) {
		t.Fatalf("zero ExpiresAt should never expire")
	}
	if !(Session{ExpiresAt: now}).Expired(now) {
		t.Fatalf("session expiring now should be expired")
	}
	if (Session{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("future expiry should not be expired")
	}
}

func TestSession_Owns(t *testing.T) {
	s := Session{ID: "slot", User: model.User{ID: "5", Email: "e@x.io"}}
	if !s.Owns("5") || s.Owns("6") {
		t.Fatalf("unexpected ownership result")
	}
	if (Session{}).Owns("") {
		t.Fatalf("absent session owns nothing")
	}
	if (Session{ID: "slot"}).Owns("") {
		t.Fatalf("user without an id owns nothing")
	}
	if s.DisplayName() != "e@x.io" {
		t.Fatalf("expected email fallback, got %q", s.DisplayName())
	}
}
