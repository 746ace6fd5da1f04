package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/freelancehub/web/internal/bootstrap"
	"github.com/freelancehub/web/internal/devseed"
)

type migrateOptions struct {
	Timeout time.Duration
}

type dbSeedOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		applied, migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
		if migrateErr != nil {
			return migrateErr
		}
		if len(applied) == 0 {
			return writeln(cmdCtx.out(), "Schema is up to date.")
		}
		return writef(cmdCtx.out(), "Applied migrations: %s\n", strings.Join(applied, ", "))
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}

	if guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "insert sample job postings into the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if _, migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		return seedJobs(ctx, cmdCtx, devseed.NewServices(db))
	})
}

func seedJobs(ctx context.Context, cmdCtx *commandContext, svcs devseed.Services) error {
	inserted, err := devseed.Run(ctx, svcs, cmdCtx.Logger)
	if err != nil {
		return err
	}
	if inserted == 0 {
		return writeln(cmdCtx.out(), "Jobs table already has rows; nothing seeded.")
	}
	return writef(cmdCtx.out(), "Seeded %d job postings.\n", inserted)
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	var opts migrateOptions
	fs := newDBFlagSet("migrate", &opts.Timeout)
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if err := checkTimeout(opts.Timeout); err != nil {
		return migrateOptions{}, err
	}
	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	var opts dbSeedOptions
	fs := newDBFlagSet("db-seed", &opts.Timeout)
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit seeding a database host that does not look local")
	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}
	if err := checkTimeout(opts.Timeout); err != nil {
		return dbSeedOptions{}, err
	}
	return opts, nil
}

func newDBFlagSet(name string, timeout *time.Duration) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.DurationVar(timeout, "timeout", defaultMigrationTimeout, "Maximum time the database work may take")
	return fs
}

func checkTimeout(d time.Duration) error {
	if d <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

// guardRemoteHost refuses to touch a non-local database unless --allow-remote
// was given and the operator retypes the host name.
func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) error {
	host := cmdCtx.Config.Postgres.Host
	switch {
	case !isLikelyRemoteHost(host):
		return nil
	case !allow:
		return fmt.Errorf("refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional", host)
	}

	prompt := fmt.Sprintf("\nWARNING: database host %q does not look like a local address.\n"+
		"This operation will %s.\nType %q to continue or press enter to abort: ", host, action, host)
	if err := write(os.Stderr, prompt); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	answer, _ := bufio.NewReader(cmdCtx.in()).ReadString('\n')
	if strings.TrimSpace(answer) != host {
		return errors.New("aborted by user")
	}
	return nil
}

// isLikelyRemoteHost treats loopback addresses, mDNS names and single-label
// names (compose services, /etc/hosts aliases) as local.
func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" || strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return strings.Contains(h, ".")
}
