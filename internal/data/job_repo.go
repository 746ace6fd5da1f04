// Package data contains the Postgres-backed job store.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/freelancehub/web/internal/data/pgxutil"
	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/ports"
)

var _ ports.JobStore = (*JobRepo)(nil)

const jobColumns = `
	id, title, description, category, budget, currency,
	to_char(posted_date, 'YYYY-MM-DD') AS posted_date,
	job_type, experience_level,
	COALESCE(to_char(deadline, 'YYYY-MM-DD'), '') AS deadline,
	duration, skills`

const jobListQuery = `SELECT ` + jobColumns + ` FROM jobs ORDER BY posted_date DESC, id DESC`

const jobInsertQuery = `
	INSERT INTO jobs (
		title, description, category, budget, currency, posted_date,
		job_type, experience_level, deadline, duration, skills
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING ` + jobColumns

// JobRepo provides database operations for job postings.
type JobRepo struct {
	DB *sql.DB
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db}
}

// ListJobs returns every posting, newest first.
func (r *JobRepo) ListJobs(ctx context.Context) ([]model.JobPosting, error) {
	var out []model.JobPosting
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, jobListQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.JobPosting])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list jobs: %w", err))
	}
	return out, nil
}

// CreateJob inserts posting and returns it with its assigned id.
func (r *JobRepo) CreateJob(ctx context.Context, posting model.JobPosting) (model.JobPosting, error) {
	var out model.JobPosting
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = insertJob(ctx, conn, posting)
		return err
	}); err != nil {
		return model.JobPosting{}, apperrors.MapDBError(err)
	}
	return out, nil
}

// Count returns the number of stored postings.
func (r *JobRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM jobs`).Scan(&n); err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("count jobs: %w", err))
	}
	return n, nil
}

// SeedIfEmpty inserts postings, oldest first so ids follow posting order, when the
// table has no rows. It reports how many rows were inserted.
func (r *JobRepo) SeedIfEmpty(ctx context.Context, postings []model.JobPosting) (int, error) {
	inserted := 0
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		// Serialize concurrent seeders.
		if _, err := tx.Exec(ctx, `LOCK TABLE jobs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs)`).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		for i := len(postings) - 1; i >= 0; i-- {
			if _, err := insertJob(ctx, tx, postings[i]); err != nil {
				return err
			}
			inserted++
		}
		return nil
	}})
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("seed jobs: %w", err))
	}
	return inserted, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func insertJob(ctx context.Context, q querier, p model.JobPosting) (model.JobPosting, error) {
	posted, err := parseDate(p.PostedDate)
	if err != nil {
		return model.JobPosting{}, apperrors.ValidationField("postedDate", "Posted date must be YYYY-MM-DD")
	}
	if posted == nil {
		now := time.Now().UTC()
		posted = &now
	}
	deadline, err := parseDate(p.Deadline)
	if err != nil {
		return model.JobPosting{}, apperrors.ValidationField("deadline", "Deadline must be YYYY-MM-DD")
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	currency := p.Currency
	if currency == "" {
		currency = model.Currencies()[0]
	}

	rows, err := q.Query(ctx, jobInsertQuery,
		strings.TrimSpace(p.Title),
		p.Description,
		p.Category,
		p.Budget,
		currency,
		*posted,
		p.JobType,
		p.Experience,
		deadline,
		p.Duration,
		skills,
	)
	if err != nil {
		return model.JobPosting{}, err
	}
	defer rows.Close()
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobPosting])
}

// parseDate returns nil for an empty value.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, errors.New("invalid date")
	}
	return &t, nil
}
