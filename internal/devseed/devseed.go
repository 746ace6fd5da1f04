// Package devseed loads development data into the Postgres job store.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/freelancehub/web/internal/data"
	"github.com/freelancehub/web/internal/domain/model"
)

// JobSeeder inserts postings into an empty job store.
type JobSeeder interface {
	SeedIfEmpty(ctx context.Context, postings []model.JobPosting) (int, error)
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Jobs JobSeeder
}

// NewServices constructs the seeding dependencies on top of db.
func NewServices(db *sql.DB) Services {
	return Services{Jobs: data.NewJobRepo(db)}
}

// Run inserts the sample postings when the jobs table is empty and returns
// how many rows were written. A populated table is left untouched.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) (int, error) {
	if svcs.Jobs == nil {
		return 0, errors.New("devseed: job seeder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	postings := model.SampleJobPostings()
	inserted, err := svcs.Jobs.SeedIfEmpty(ctx, postings)
	if err != nil {
		return 0, fmt.Errorf("seed job postings: %w", err)
	}
	if inserted == 0 {
		logger.InfoContext(ctx, "job postings already present; skipping seed")
		return 0, nil
	}
	logger.InfoContext(ctx, "seeded job postings", "count", inserted)
	return inserted, nil
}
