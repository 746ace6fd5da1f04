package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultCSRFCookieName is the default name for the CSRF cookie.
	DefaultCSRFCookieName = "fh_csrf"
	// DefaultCSRFHeaderName is the header htmx requests carry the token in.
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFFieldName is the hidden form field carrying the token.
	DefaultCSRFFieldName = "csrf_token"

	csrfTokenBytes = 32
	csrfCookieTTL  = 12 * time.Hour
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	CookieName    string
	HeaderName    string
	FormFieldName string
	CookieDomain  string
	Secure        bool

	// UploadPath reports whether a path takes multipart uploads whose size the
	// handler checks itself. A body too large to reach the token field on such
	// a path is passed on marked with UploadTooLarge instead of failing with 403.
	UploadPath func(path string) bool
}

// CSRFProtection implements the double-submit cookie pattern: a random token
// is kept in a cookie and every unsafe request must echo it in the
// X-Csrf-Token header or the csrf_token form field.
func CSRFProtection(cfg CSRFConfig) Middleware {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultCSRFFieldName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sent := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				sent = c.Value
			}
			token := sent
			if token == "" {
				var err error
				if token, err = generateCSRFToken(); err != nil {
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: true, // app.js takes the token from the csrf-token meta tag
					Secure:   cfg.Secure || r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(csrfCookieTTL / time.Second),
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))
			if requiresCSRFValidation(r.Method) {
				ok, tooLarge := validCSRFToken(r, sent, cfg)
				switch {
				case ok:
				case tooLarge && cfg.UploadPath != nil && cfg.UploadPath(r.URL.Path):
					r = r.WithContext(context.WithValue(r.Context(), uploadTooLargeKey{}, true))
				default:
					http.Error(w, "CSRF token validation failed", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// validCSRFToken compares the submitted token with the cookie in constant time.
// Multipart bodies are parsed with the picture size limit so the token field is
// reachable; tooLarge reports that the body exceeded it before the token was read.
func validCSRFToken(r *http.Request, cookieToken string, cfg CSRFConfig) (ok, tooLarge bool) {
	if cookieToken == "" {
		return false, false
	}
	submitted := r.Header.Get(cfg.HeaderName)
	if submitted == "" {
		contentType := r.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
			if err := r.ParseForm(); err != nil {
				return false, false
			}
		case strings.HasPrefix(contentType, "multipart/form-data"):
			r.Body = http.MaxBytesReader(nil, r.Body, MaxPictureBytes+1<<20)
			if err := r.ParseMultipartForm(MaxPictureBytes); err != nil {
				var maxErr *http.MaxBytesError
				return false, errors.As(err, &maxErr)
			}
		default:
			return false, false
		}
		submitted = r.PostFormValue(cfg.FormFieldName)
	}
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) == 1, false
}

type uploadTooLargeKey struct{}

// UploadTooLarge reports whether the request body was cut off at the upload
// limit before its CSRF token could be read. Such a request must not be acted on.
func UploadTooLarge(r *http.Request) bool {
	v, _ := r.Context().Value(uploadTooLargeKey{}).(bool)
	return v
}

// IsPictureUploadPath matches POST /profile/{id}/picture.
func IsPictureUploadPath(path string) bool {
	rest, ok := strings.CutPrefix(path, "/profile/")
	if !ok {
		return false
	}
	id, ok := strings.CutSuffix(rest, "/picture")
	return ok && id != "" && !strings.Contains(id, "/")
}

type csrfTokenKey struct{}

// GetCSRFToken retrieves the CSRF token from the request context for templates.
func GetCSRFToken(r *http.Request) string {
	if token, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return token
	}
	return ""
}
