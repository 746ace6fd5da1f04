package data

import (
	"context"
	"database/sql"

	"github.com/freelancehub/web/internal/migrate"
)

// RunMigrations sets up the job store schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) ([]string, error) {
	return migrate.Run(ctx, db)
}
