package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/ports"
)

// User-facing auth messages.
const (
	MsgRegistered     = "Registration successful! Redirecting to login..."
	MsgLoggedIn       = "Login successful! Redirecting to dashboard..."
	MsgLoginFailed    = "Login failed. Please try again."
	MsgRegisterFailed = "Registration failed"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API      ports.UserAPI
	Sessions *SessionService
	Logger   *slog.Logger
}

// AuthService drives registration, login and logout against the user API.
type AuthService struct {
	api      ports.UserAPI
	sessions *SessionService
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.API == nil {
		panic("UserAPI is required")
	}
	if opts.Sessions == nil {
		panic("SessionService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   logger.With("component", "auth"),
	}
}

// Register validates req and creates the account. It returns the message to show.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	if resp.Message != "" {
		return resp.Message, nil
	}
	return MsgRegistered, nil
}

// LoginResult describes a completed login.
type LoginResult struct {
	// Slot is the new browser slot; set only when SignedIn.
	Slot     string
	Session  domainauth.Session
	SignedIn bool
	Message  string
}

// Login authenticates into a fresh slot. When the API returns a user the new slot
// holds the session and the previous slot is cleared.
func (s *AuthService) Login(ctx context.Context, previousSlot string, req model.LoginRequest) (LoginResult, error) {
	if err := req.Validate(); err != nil {
		return LoginResult{}, err
	}

	slot := s.sessions.NewSlot()
	res, err := s.api.Login(ctx, slot, req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	out := LoginResult{Message: res.Message}
	if out.Message == "" {
		out.Message = MsgLoggedIn
	}
	if res.User == nil {
		return out, nil
	}

	sess, ok := s.sessions.Current(ctx, slot)
	if !ok {
		return LoginResult{}, apperrors.RequestFailed(MsgLoginFailed, 0, errors.New("session for slot was not stored"))
	}
	out.Slot = slot
	out.Session = sess
	out.SignedIn = true

	if previousSlot != "" && previousSlot != slot {
		if clearErr := s.sessions.Clear(ctx, previousSlot); clearErr != nil {
			s.logger.WarnContext(ctx, "failed to clear previous session", slog.Any("error", clearErr))
		}
	}
	s.logger.InfoContext(ctx, "user signed in", slog.String("user_id", sess.User.ID.String()))
	return out, nil
}

// Logout clears the session in slot.
func (s *AuthService) Logout(ctx context.Context, slot string) error {
	return s.sessions.Clear(ctx, slot)
}
