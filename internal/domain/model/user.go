// Package model defines the data types exchanged between the marketplace views,
// the user API, and the job catalog.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/validation"
)

// UserID identifies a user in the external user API. It is opaque: numeric
// ids and string ids (uuids, object ids) are both kept as text.
type UserID string

// UnmarshalJSON accepts 12, "12" and "a1b2".
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		*id = UserID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		*id = UserID(n.String())
	}
	return nil
}

func (id UserID) String() string { return string(id) }

// ParseUserID validates a path or form value as a UserID. Path separators
// are rejected so the id is always a single URL segment.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "/?#") {
		return "", fmt.Errorf("invalid user id %q", s)
	}
	return UserID(s), nil
}

// Roles accepted at registration.
const (
	RoleFreelancer = "FREELANCER"
	RoleClient     = "CLIENT"
)

// Roles lists the selectable account roles in display order.
func Roles() []string {
	return []string{RoleFreelancer, RoleClient}
}

// User is the identity returned by login and kept in the session.
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserProfile is the backend's view of an account.
type UserProfile struct {
	ID             UserID `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// Patch returns an editable copy of the profile fields.
func (p UserProfile) Patch() UserPatch {
	return UserPatch{Name: p.Name, Email: p.Email, Role: p.Role}
}

const (
	maxNameLen     = 100
	maxEmailLen    = 254
	minPasswordLen = 6
)

// UserPatch carries the editable profile fields sent to PUT /users/{id}.
type UserPatch struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Normalize trims whitespace in place.
func (p *UserPatch) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Role = strings.TrimSpace(p.Role)
}

// Validate returns a validation error listing every invalid field, or nil.
func (p *UserPatch) Validate() error {
	errs := validation.New().
		Validate("name", p.Name, validation.Required("Name", maxNameLen)).
		Validate("email", p.Email, validation.Required("Email", maxEmailLen), validation.Email("Email")).
		Validate("role", p.Role, validation.Optional("Role", 50)).
		Errors()
	if err := apperrors.ValidationFields("Please fix the errors below.", errs); err != nil {
		return err
	}
	return nil
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Normalize trims input and applies the default role.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if role := validation.Canonical(r.Role, Roles()); role != "" {
		r.Role = role
	} else if strings.TrimSpace(r.Role) == "" {
		r.Role = RoleFreelancer
	}
}

// Validate returns a validation error listing every invalid field, or nil.
func (r *RegisterRequest) Validate() error {
	errs := validation.New().
		Validate("username", r.Username, validation.Required("Username", maxNameLen)).
		Validate("email", r.Email, validation.Required("Email", maxEmailLen), validation.Email("Email")).
		Validate("password", r.Password, validation.Required("Password", 128), validation.MinLen("Password", minPasswordLen)).
		Validate("role", r.Role, validation.OneOf("Role", Roles())).
		Errors()
	if err := apperrors.ValidationFields("Please fix the errors below.", errs); err != nil {
		return err
	}
	return nil
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns a validation error listing every invalid field, or nil.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	errs := validation.New().
		Validate("email", r.Email, validation.Required("Email", maxEmailLen)).
		Validate("password", r.Password, validation.Required("Password", 128)).
		Errors()
	if err := apperrors.ValidationFields("Please fix the errors below.", errs); err != nil {
		return err
	}
	return nil
}

// MessageResponse is the `{message, ...}` payload of register and delete.
type MessageResponse struct {
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

// LoginResult is the decoded login payload. User is nil when the backend returned none.
type LoginResult struct {
	Message string
	User    *User
	Token   string
	Raw     json.RawMessage
}

// PictureUpload is a profile picture forwarded as the multipart "file" part.
type PictureUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}
