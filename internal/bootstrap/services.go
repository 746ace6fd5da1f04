package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/freelancehub/web/config"
	"github.com/freelancehub/web/internal/adapters/backend"
	"github.com/freelancehub/web/internal/adapters/memory"
	redisadapter "github.com/freelancehub/web/internal/adapters/redis"
	"github.com/freelancehub/web/internal/data"
	httpx "github.com/freelancehub/web/internal/http"
	"github.com/freelancehub/web/internal/observability/metrics"
	"github.com/freelancehub/web/internal/ports"
	"github.com/freelancehub/web/internal/service"
)

// ServiceContainer holds every service the HTTP layer and admin commands use.
type ServiceContainer struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	SessionStore ports.SessionStore
	Sessions     *service.SessionService
	Backend      *backend.Client
	Auth         *service.AuthService
	Profiles     *service.ProfileService
	Jobs         *service.JobCatalog
}

// ServiceDeps contains the infrastructure NewServices builds on.
// DB and RedisClient may be nil when the configuration does not need them.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// Optional overrides (tests).
	Clock      clockwork.Clock
	Registry   *prometheus.Registry
	HTTPClient *http.Client
}

// NewServices builds the service graph: session store, user API client,
// auth and profile flows, and the job catalog.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	reg := deps.Registry
	if reg == nil {
		reg = newRegistry()
	}
	m := metrics.New(reg)

	store, err := buildSessionStore(cfg.Session, deps.RedisClient, clock)
	if err != nil {
		return ServiceContainer{}, err
	}
	sessions := service.NewSessionService(service.SessionServiceOptions{
		Store: store,
		Config: service.SessionServiceConfig{
			TTL:     cfg.Session.TTL,
			Clock:   clock,
			Metrics: m.Session,
		},
		Logger: logger,
	})

	client, err := backend.NewClient(backend.Config{
		APIURL:           cfg.Backend.APIURL,
		Timeout:          cfg.Backend.Timeout,
		Client:           deps.HTTPClient,
		Sessions:         sessions,
		Metrics:          m.Backend,
		Logger:           logger,
		ErrorMessageExpr: cfg.Backend.ErrorMessageExpr,
		LoginUserExpr:    cfg.Backend.LoginUserExpr,
		LoginTokenExpr:   cfg.Backend.LoginTokenExpr,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create backend client: %w", err)
	}

	jobSource, err := buildJobSource(cfg.Jobs, deps.DB)
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Registry:     reg,
		Metrics:      m,
		SessionStore: store,
		Sessions:     sessions,
		Backend:      client,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			API:      client,
			Sessions: sessions,
			Logger:   logger,
		}),
		Profiles: service.NewProfileService(service.ProfileServiceOptions{
			API:      client,
			Sessions: sessions,
			Logger:   logger,
		}),
		Jobs: service.NewJobCatalog(service.JobCatalogOptions{
			Source: jobSource,
			Clock:  clock,
			Logger: logger,
		}),
	}, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

//nolint:ireturn // the session backend is chosen at runtime.
func buildSessionStore(cfg config.SessionConfig, client redis.UniversalClient, clock clockwork.Clock) (ports.SessionStore, error) {
	switch cfg.Backend {
	case config.SessionBackendMemory:
		return memory.NewSessionStore(clock), nil
	case config.SessionBackendRedis, "":
		if client == nil {
			return nil, errors.New("redis session backend requires a redis client")
		}
		return redisadapter.NewSessionStoreWithOptions(client, redisadapter.SessionStoreOptions{
			Prefix: cfg.KeyPrefix,
			Clock:  clock,
		}), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

//nolint:ireturn // the job source is chosen at runtime.
func buildJobSource(cfg config.JobsConfig, db *sql.DB) (ports.JobSource, error) {
	switch cfg.Source {
	case config.JobsSourceStatic, "":
		return memory.NewSampleJobStore(), nil
	case config.JobsSourcePostgres:
		if db == nil {
			return nil, errors.New("postgres job source requires a database connection")
		}
		return data.NewJobRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown jobs source %q", cfg.Source)
	}
}

// HealthChecks returns a readiness check for each connected dependency.
func HealthChecks(db *sql.DB, client redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := make(map[string]httpx.HealthCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
