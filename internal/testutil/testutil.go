// Package testutil connects tests to the local Postgres and Redis instances.
// Tests skip when a service is unreachable unless TEST_REQUIRE_INFRA (or the
// per-service TEST_REQUIRE_DB / TEST_REQUIRE_REDIS) is set.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/freelancehub/web/internal/migrate"
)

const pingTimeout = 2 * time.Second

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* overrides. The port defaults to 55432,
// the docker-compose test profile; CI sets TEST_DB_PORT=5432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "freelancehub"),
		Password: envOr("TEST_DB_PASSWORD", "freelancehub"),
		DBName:   envOr("TEST_DB_NAME", "freelancehub"),
	}
}

// DSN renders the config as a postgres URL, optionally pinned to a search_path.
func (c TestDBConfig) DSN(searchPath string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", envOr("DB_SSL_MODE", "disable"))
	if searchPath != "" {
		q.Set("search_path", searchPath)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SkipIfNoTestDB skips t when the test database does not answer a ping.
func SkipIfNoTestDB(t testing.TB) {
	t.Helper()
	db, err := sql.Open("pgx", DefaultTestDBConfig().DSN(""))
	if err == nil {
		defer closeQuietly(t, "availability check db", db)
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		err = db.PingContext(ctx)
	}
	if err != nil {
		unavailable(t, requireDB(), "test database not available: %v", err)
	}
}

// SetupTestDB opens the shared test database, applies migrations and empties the jobs table.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	db := openAndMigrate(t, DefaultTestDBConfig().DSN(""))
	CleanupTestDB(t, db)
	return db
}

// CleanupTestDB removes all rows written by tests.
func CleanupTestDB(t testing.TB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "TRUNCATE TABLE jobs RESTART IDENTITY"); err != nil {
		t.Fatalf("truncate jobs: %v", err)
	}
}

// TeardownTestDB empties and closes a database from SetupTestDB.
func TeardownTestDB(t testing.TB, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	CleanupTestDB(t, db)
	if err := db.Close(); err != nil {
		t.Fatalf("close test db: %v", err)
	}
}

// WithAutoDB runs fn against a throwaway schema when TEST_DB_EPHEMERAL is set,
// otherwise against the shared test database.
func WithAutoDB(t testing.TB, fn func(*sql.DB)) {
	t.Helper()
	if envBool("TEST_DB_EPHEMERAL") {
		fn(SetupEphemeralSchemaDB(t))
		return
	}
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)
	fn(db)
}

// SetupEphemeralSchemaDB creates a random schema, migrates it and drops it when t finishes.
func SetupEphemeralSchemaDB(t testing.TB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	cfg := DefaultTestDBConfig()
	admin, err := sql.Open("pgx", cfg.DSN(""))
	if err != nil {
		t.Fatalf("open admin db: %v", err)
	}
	schema := schemaName()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		closeQuietly(t, "admin db", admin)
		t.Fatalf("create schema %s: %v", schema, err)
	}
	t.Logf("using ephemeral schema %s", schema)

	// Registered first so it runs last, after the schema connection is closed.
	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		if _, err := admin.ExecContext(dropCtx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		closeQuietly(t, "admin db", admin)
	})

	db := openAndMigrate(t, cfg.DSN(schema+",public"))
	t.Cleanup(func() { closeQuietly(t, "schema db", db) })
	return db
}

func openAndMigrate(t testing.TB, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(t, "test db", db)
		t.Fatalf("ping test db (is docker compose up?): %v", err)
	}
	if _, err := migrate.Run(ctx, db); err != nil {
		closeQuietly(t, "test db", db)
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

// SetupTestRedis connects to TEST_REDIS_ADDR (default localhost:56379), selects
// TEST_REDIS_DB (default 1) and flushes it. The client is closed when t finishes.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := envOr("TEST_REDIS_ADDR", "localhost:56379")
	dbIndex, err := strconv.Atoi(envOr("TEST_REDIS_DB", "1"))
	if err != nil || dbIndex < 0 {
		t.Fatalf("invalid TEST_REDIS_DB %q", os.Getenv("TEST_REDIS_DB"))
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: dbIndex})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		closeQuietly(t, "redis client", client)
		unavailable(t, requireRedis(), "redis not available at %s: %v", addr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		closeQuietly(t, "redis client", client)
		t.Fatalf("flush redis db %d: %v", dbIndex, err)
	}
	t.Cleanup(func() { closeQuietly(t, "redis client", client) })
	return client
}

// SetupTestRedisCluster connects to the comma-separated seed nodes in
// TEST_REDIS_CLUSTER_ADDRS and flushes every master. It skips when the
// variable is unset.
func SetupTestRedisCluster(t testing.TB) *redis.ClusterClient {
	t.Helper()

	raw := os.Getenv("TEST_REDIS_CLUSTER_ADDRS")
	if raw == "" {
		t.Skip("TEST_REDIS_CLUSTER_ADDRS not set")
	}
	client := redis.NewClusterClient(&redis.ClusterOptions{Addrs: strings.Split(raw, ",")})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		closeQuietly(t, "redis cluster client", client)
		unavailable(t, requireRedis(), "redis cluster not available at %s: %v", raw, err)
	}
	err := client.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		return node.FlushDB(ctx).Err()
	})
	if err != nil {
		closeQuietly(t, "redis cluster client", client)
		t.Fatalf("flush redis cluster: %v", err)
	}
	t.Cleanup(func() { closeQuietly(t, "redis cluster client", client) })
	return client
}

func unavailable(t testing.TB, required bool, format string, args ...any) {
	t.Helper()
	if required {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func closeQuietly(t testing.TB, name string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		t.Logf("close %s: %v", name, err)
	}
}

func schemaName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "t_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return "t_" + hex.EncodeToString(b)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }
