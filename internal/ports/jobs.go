package ports

import (
	"context"

	"github.com/freelancehub/web/internal/domain/model"
)

// JobSource lists job postings in display order.
type JobSource interface {
	ListJobs(ctx context.Context) ([]model.JobPosting, error)
}

// JobWriter stores a new posting and returns it with its assigned id.
type JobWriter interface {
	CreateJob(ctx context.Context, posting model.JobPosting) (model.JobPosting, error)
}

// JobStore is a writable job source.
type JobStore interface {
	JobSource
	JobWriter
}
