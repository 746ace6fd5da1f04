package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	freelancehub "github.com/freelancehub/web"
	"github.com/freelancehub/web/internal/observability/metrics"
	"github.com/freelancehub/web/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs     *service.JobCatalog
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Sessions *service.SessionService
	Cookies  *SlotCookies
	// BindToken forwards the session's bearer token to user API calls.
	BindToken TokenBinder

	CSRF CSRFConfig
	// Compression is applied when non-nil.
	Compression *CompressionConfig

	HTTPMetrics  *metrics.HTTPMetrics
	Gatherer     prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	HealthChecks map[string]HealthCheck

	// TemplateFS overrides the template source (tests).
	TemplateFS fs.FS
	IsDev      bool         // Development mode flag for hot reloading, etc.
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates the HTTP handler with every route and the middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Jobs == nil || services.Auth == nil || services.Profiles == nil || services.Sessions == nil {
		return nil, errors.New("router: job, auth, profile and session services are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tr, err := newTemplateRenderer(services, logger)
	if err != nil {
		return nil, err
	}
	ui := &UIHandlers{
		T:        tr,
		Jobs:     services.Jobs,
		Auth:     services.Auth,
		Profiles: services.Profiles,
		Cookies:  services.Cookies,
		IsDev:    services.IsDev,
		Logger:   logger,
	}

	gatherer := services.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	registerPublicRoutes(mux, ui)
	registerProfileRoutes(mux, ui, RequireSession(service.NewRouteGuard(services.Sessions)))
	mux.Handle("GET /healthz", healthHandler(services.HealthChecks, logger))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))
	mux.HandleFunc("/", ui.Unmatched)

	var compression Middleware
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		compression = Compression(cfg)
	}

	csrf := services.CSRF
	if csrf.UploadPath == nil {
		csrf.UploadPath = IsPictureUploadPath
	}

	return Chain(mux,
		Recover(logger),
		Logging(logger),
		compression,
		CSRFProtection(csrf),
		LoadSession(SessionLoaderConfig{
			Cookies:   services.Cookies,
			Sessions:  services.Sessions,
			BindToken: services.BindToken,
		}),
		// innermost so ServeMux's r.Pattern is visible to it
		services.HTTPMetrics.Middleware,
	), nil
}

func registerPublicRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /jobs", h.JobsList)
	mux.HandleFunc("GET /post-job", h.PostJobForm)
	mux.HandleFunc("POST /post-job", h.PostJobSubmit)
	mux.HandleFunc("GET /profile", h.Profile)
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.RegisterSubmit)
	mux.HandleFunc("POST /logout", h.Logout)
}

// registerProfileRoutes wires the profile flow behind the route guard.
func registerProfileRoutes(mux *http.ServeMux, h *UIHandlers, guard Middleware) {
	mux.Handle("GET /profile/{id}", guard(http.HandlerFunc(h.UserProfile)))
	mux.Handle("GET /profile/{id}/edit", guard(http.HandlerFunc(h.UserProfileEdit)))
	mux.Handle("POST /profile/{id}", guard(http.HandlerFunc(h.UserProfileSave)))
	mux.Handle("POST /profile/{id}/picture", guard(http.HandlerFunc(h.UserProfilePicture)))
	mux.Handle("GET /profile/{id}/delete", guard(http.HandlerFunc(h.UserDeleteConfirm)))
	mux.Handle("POST /profile/{id}/delete", guard(http.HandlerFunc(h.UserDelete)))
}

// newTemplateRenderer reads templates from disk in dev mode and from the embedded FS otherwise.
func newTemplateRenderer(services RouterServices, logger *slog.Logger) (*TemplateRenderer, error) {
	templateFS := services.TemplateFS
	switch {
	case templateFS != nil:
	case services.IsDev:
		templateFS = os.DirFS(TemplatePathFromRoot)
	default:
		sub, err := fs.Sub(freelancehub.TemplateFS, TemplatePathFromRoot)
		if err != nil {
			return nil, fmt.Errorf("embedded templates: %w", err)
		}
		templateFS = sub
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		DevMode:    services.IsDev && services.TemplateFS == nil,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tr, nil
}

func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	sub, err := fs.Sub(freelancehub.StaticFS, "frontend/static")
	if err != nil {
		logger.Error("failed to open embedded static assets; serving from disk", slog.Any("error", err))
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))), true)
}

func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
