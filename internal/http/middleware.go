package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/service"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel passed to panic as-is
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// TokenBinder attaches a bearer token to ctx for outgoing user API calls.
type TokenBinder func(ctx context.Context, token string) context.Context

// sessionReader is the subset of service.SessionService the loader needs.
type sessionReader interface {
	Current(ctx context.Context, slot string) (domainauth.Session, bool)
}

// SessionLoaderConfig configures LoadSession.
type SessionLoaderConfig struct {
	Cookies   *SlotCookies
	Sessions  sessionReader
	BindToken TokenBinder
}

// LoadSession resolves the browser's slot cookie and, when a session is
// present, puts it and its bearer token into the request context.
// Requests without a session continue anonymously.
func LoadSession(cfg SessionLoaderConfig) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg.Cookies == nil || cfg.Sessions == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}
			slot := cfg.Cookies.Read(r)
			if slot == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := SetSlotInContext(r.Context(), slot)
			if sess, ok := cfg.Sessions.Current(ctx, slot); ok {
				ctx = SetSessionInContext(ctx, sess)
				if cfg.BindToken != nil && sess.Token != "" {
					ctx = cfg.BindToken(ctx, sess.Token)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession runs next only when the route guard finds a session for the
// request's slot; otherwise the browser is sent to the login page.
func RequireSession(guard *service.RouteGuard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Evaluate(r.Context(), GetSlotFromContext(r.Context()))
			if decision.Outcome != service.Allowed {
				redirectToLogin(w, r, decision.Target)
				return
			}
			ctx := SetSessionInContext(r.Context(), decision.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectToLogin sends the browser to target with the current page as the redirect parameter.
func redirectToLogin(w http.ResponseWriter, r *http.Request, target string) {
	if target == "" {
		target = service.LoginPath
	}
	if back := redirectPathForRequest(r); back != "/" {
		target += "?redirect=" + url.QueryEscape(back)
	}
	redirect(w, r, target)
}

func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "/" {
			return current
		}
	}
	if r.Method != http.MethodGet {
		return "/"
	}
	return safeRedirectPath(r.URL.RequestURI())
}

func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "/"
	}
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}
	return safeRedirectPath(raw)
}

// safeRedirectPath returns candidate when it is a local absolute path, else "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return "/"
	}
	return candidate
}
