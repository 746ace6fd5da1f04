package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/freelancehub/web/internal/adapters/backend"
	"github.com/freelancehub/web/internal/domain/model"
)

const defaultAPITimeout = 30 * time.Second

type listUsersOptions struct {
	Token   string
	Timeout time.Duration
	JSON    bool
}

type userLister interface {
	ListUsers(ctx context.Context) ([]model.UserProfile, error)
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(backend.Config{
		APIURL:           cmdCtx.Config.Backend.APIURL,
		Timeout:          opts.Timeout,
		Logger:           cmdCtx.Logger,
		ErrorMessageExpr: cmdCtx.Config.Backend.ErrorMessageExpr,
		LoginUserExpr:    cmdCtx.Config.Backend.LoginUserExpr,
		LoginTokenExpr:   cmdCtx.Config.Backend.LoginTokenExpr,
	})
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return listUsers(ctx, cmdCtx.out(), client, opts)
}

func listUsers(ctx context.Context, w io.Writer, api userLister, opts listUsersOptions) error {
	if opts.Token != "" {
		ctx = backend.WithToken(ctx, opts.Token)
	}
	users, err := api.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}
	return renderUsersTable(w, users)
}

func renderUsersTable(w io.Writer, users []model.UserProfile) error {
	if len(users) == 0 {
		return writeln(w, "No users found.")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED"); err != nil {
		return err
	}
	for _, u := range users {
		created := u.CreatedAt
		if created == "" {
			created = "-"
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, created); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d user(s)\n", len(users))
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listUsersOptions{Timeout: defaultAPITimeout}
	fs.StringVar(&opts.Token, "token", os.Getenv("FREELANCEHUB_API_TOKEN"),
		"Bearer token sent to the user API (defaults to $FREELANCEHUB_API_TOKEN)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultAPITimeout, "Maximum duration to wait for the user API")
	fs.BoolVar(&opts.JSON, "json", false, "Print users as JSON")

	if err := fs.Parse(args); err != nil {
		return listUsersOptions{}, err
	}
	if opts.Timeout <= 0 {
		return listUsersOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}
