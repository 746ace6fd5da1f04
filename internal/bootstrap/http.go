package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/freelancehub/web/config"
	"github.com/freelancehub/web/internal/adapters/backend"
	httpx "github.com/freelancehub/web/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config       *config.AppConfig
	Services     ServiceContainer
	HealthChecks map[string]httpx.HealthCheck
	Logger       *slog.Logger
}

// BuildHandler wires the router, cookies and middleware from configuration.
func BuildHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	secure := appCfg.HTTP.SecureCookies()

	var compression *httpx.CompressionConfig
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel, Logger: logger}
	}

	return httpx.NewRouter(httpx.RouterServices{
		Jobs:     cfg.Services.Jobs,
		Auth:     cfg.Services.Auth,
		Profiles: cfg.Services.Profiles,
		Sessions: cfg.Services.Sessions,
		Cookies: httpx.NewSlotCookies(httpx.SlotCookieConfig{
			Name:   appCfg.Session.CookieName,
			Keys:   appCfg.Session.CookieKeys(),
			Domain: appCfg.HTTP.CookieDomain,
			Secure: secure,
			MaxAge: appCfg.Session.TTL,
		}),
		BindToken: backend.WithToken,
		CSRF: httpx.CSRFConfig{
			CookieDomain: appCfg.HTTP.CookieDomain,
			Secure:       secure,
		},
		Compression:  compression,
		HTTPMetrics:  cfg.Services.Metrics.HTTP,
		Gatherer:     cfg.Services.Registry,
		HealthChecks: cfg.HealthChecks,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	})
}

// NewHTTPServer wraps handler in a server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// RunServer serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server down gracefully. A listen failure is returned as-is.
func RunServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
