package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SessionBackend selects where session payloads are persisted.
type SessionBackend string

const (
	// SessionBackendRedis stores sessions in Redis (shared across replicas).
	SessionBackendRedis SessionBackend = "redis"
	// SessionBackendMemory stores sessions in process memory (single instance, dev).
	SessionBackendMemory SessionBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: redis, memory)", v)
	}
}

const (
	minSessionSecretLen = 32
	// devSessionSecret is only used when DEV=true and SESSION_SECRET is unset.
	devSessionSecret = "freelancehub-dev-session-secret-not-for-production"
)

// SessionConfig groups session storage and cookie configuration.
type SessionConfig struct {
	// Backend determines which session store is used.
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"redis"`

	// Secret signs the session cookie. Required outside dev mode.
	Secret string `env:"SESSION_SECRET"`

	// EncryptionKey optionally encrypts the session cookie (16, 24 or 32 bytes).
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`

	// TTL bounds how long a stored session and its cookie are retained.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// CookieName is the name of the cookie carrying the session slot id.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"fh_session"`

	// KeyPrefix namespaces session keys in the backing store.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	s.Secret = strings.TrimSpace(s.Secret)
	s.EncryptionKey = strings.TrimSpace(s.EncryptionKey)
	s.CookieName = strings.TrimSpace(s.CookieName)
	if s.CookieName == "" {
		s.CookieName = "fh_session"
	}
	if s.TTL <= 0 {
		s.TTL = 720 * time.Hour
	}
}

// Validate checks the cookie key lengths.
func (s *SessionConfig) Validate() error {
	if len(s.Secret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
	}
	switch len(s.EncryptionKey) {
	case 0, 16, 24, 32:
	default:
		return errors.New("SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes")
	}
	return nil
}

// CookieKeys returns the gorilla/sessions key pair (hash key, optional block key).
func (s *SessionConfig) CookieKeys() [][]byte {
	keys := [][]byte{[]byte(s.Secret)}
	if s.EncryptionKey != "" {
		keys = append(keys, []byte(s.EncryptionKey))
	}
	return keys
}
