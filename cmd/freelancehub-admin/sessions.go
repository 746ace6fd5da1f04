package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	redisadapter "github.com/freelancehub/web/internal/adapters/redis"
	domainauth "github.com/freelancehub/web/internal/domain/auth"
)

const defaultSessionListLimit = 100

type listSessionsOptions struct {
	Limit int
}

type clearSessionsOptions struct {
	DryRun bool
	Yes    bool
}

// sessionAdmin is the administrative surface of a session store.
type sessionAdmin interface {
	List(ctx context.Context, limit int) ([]domainauth.Session, error)
	DeleteAll(ctx context.Context) (int64, error)
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListSessionsFlags(args)
	if err != nil {
		return err
	}
	return withSessionStore(cmdCtx, func(ctx context.Context, store sessionAdmin) error {
		return listSessions(ctx, cmdCtx.out(), store, opts, time.Now())
	})
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearSessionsFlags(args)
	if err != nil {
		return err
	}
	return withSessionStore(cmdCtx, func(ctx context.Context, store sessionAdmin) error {
		return clearSessions(ctx, cmdCtx, store, opts)
	})
}

func withSessionStore(cmdCtx *commandContext, f func(context.Context, sessionAdmin) error) error {
	err := withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		store := redisadapter.NewSessionStoreWithOptions(client, redisadapter.SessionStoreOptions{
			Prefix: cmdCtx.Config.Session.KeyPrefix,
		})
		return f(ctx, store)
	})
	if errors.Is(err, errRedisNotConfigured) {
		return errors.New("sessions live in Redis; set REDIS_URI (memory sessions exist only inside the server process)")
	}
	return err
}

func listSessions(ctx context.Context, w io.Writer, store sessionAdmin, opts listSessionsOptions, now time.Time) error {
	sessions, err := store.List(ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return writeln(w, "No sessions found.")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "SLOT\tUSER ID\tNAME\tEMAIL\tCREATED\tEXPIRES IN"); err != nil {
		return err
	}
	for _, sess := range sessions {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			sess.ID,
			sess.User.ID,
			sess.User.Name,
			sess.User.Email,
			sess.CreatedAt.UTC().Format(time.RFC3339),
			renderExpiry(sess, now),
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d session(s)\n", len(sessions))
}

func renderExpiry(sess domainauth.Session, now time.Time) string {
	if sess.ExpiresAt.IsZero() {
		return "never"
	}
	if sess.Expired(now) {
		return "expired"
	}
	return sess.ExpiresAt.Sub(now).Truncate(time.Second).String()
}

func clearSessions(ctx context.Context, cmdCtx *commandContext, store sessionAdmin, opts clearSessionsOptions) error {
	if opts.DryRun {
		sessions, err := store.List(ctx, 0)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		return writef(cmdCtx.out(), "Dry run: %d session(s) would be deleted.\n", len(sessions))
	}

	if err := confirmClearSessions(cmdCtx, opts); err != nil {
		return err
	}

	deleted, err := store.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	cmdCtx.Logger.Info("sessions cleared", "deleted", deleted)
	return writef(cmdCtx.out(), "Deleted %d session(s).\n", deleted)
}

func confirmClearSessions(cmdCtx *commandContext, opts clearSessionsOptions) error {
	if opts.Yes {
		return nil
	}
	if err := writeln(cmdCtx.out(), "WARNING: this will sign out every user."); err != nil {
		return fmt.Errorf("print confirmation warning: %w", err)
	}
	if err := write(cmdCtx.out(), "Continue? [y/N]: "); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.in()).ReadString('\n')
	if err != nil && resp == "" {
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}

func parseListSessionsFlags(args []string) (listSessionsOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listSessionsOptions{}
	fs.IntVar(&opts.Limit, "limit", defaultSessionListLimit, "Maximum number of sessions to show (0 for all)")

	if err := fs.Parse(args); err != nil {
		return listSessionsOptions{}, err
	}
	if opts.Limit < 0 {
		return listSessionsOptions{}, errors.New("--limit must not be negative")
	}
	return opts, nil
}

func parseClearSessionsFlags(args []string) (clearSessionsOptions, error) {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := clearSessionsOptions{}
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Report how many sessions would be deleted without deleting")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return clearSessionsOptions{}, err
	}
	return opts, nil
}
