package service

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/ports"
)

// JobCatalogOptions groups dependencies for JobCatalog.
type JobCatalogOptions struct {
	Source ports.JobSource // Required; also used for writes when it implements ports.JobWriter
	Clock  clockwork.Clock
	Logger *slog.Logger
}

// JobCatalog searches and extends the job list.
type JobCatalog struct {
	source ports.JobSource
	writer ports.JobWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewJobCatalog constructs a JobCatalog.
func NewJobCatalog(opts JobCatalogOptions) *JobCatalog {
	if opts.Source == nil {
		panic("JobSource is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	writer, _ := opts.Source.(ports.JobWriter)
	return &JobCatalog{
		source: opts.Source,
		writer: writer,
		clock:  clock,
		logger: logger.With("component", "job_catalog"),
	}
}

// Filter loads the current list and yields, in source order, every posting whose
// title or description contains term (case-insensitive) and whose category equals
// category. An empty term matches everything; an empty or "all" category does too.
// Each call reloads from the source.
func (c *JobCatalog) Filter(ctx context.Context, term, category string) (iter.Seq[model.JobPosting], error) {
	jobs, err := c.source.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	match := Matcher(term, category)
	return func(yield func(model.JobPosting) bool) {
		for _, j := range jobs {
			if match(j) && !yield(j) {
				return
			}
		}
	}, nil
}

// Search is Filter collected into a slice.
func (c *JobCatalog) Search(ctx context.Context, term, category string) ([]model.JobPosting, error) {
	seq, err := c.Filter(ctx, term, category)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// Matcher returns the filter predicate for term and category. The term is
// matched as typed; surrounding whitespace is part of the substring.
func Matcher(term, category string) func(model.JobPosting) bool {
	needle := strings.ToLower(term)
	anyCategory := category == "" || strings.EqualFold(category, model.CategoryAll)
	return func(j model.JobPosting) bool {
		if !anyCategory && j.Category != category {
			return false
		}
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(j.Title), needle) ||
			strings.Contains(strings.ToLower(j.Description), needle)
	}
}

// Categories returns the browsable categories in display order.
func (c *JobCatalog) Categories() []string {
	return model.JobCategories()
}

// Featured returns the first n postings.
func (c *JobCatalog) Featured(ctx context.Context, n int) ([]model.JobPosting, error) {
	jobs, err := c.source.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if n >= 0 && len(jobs) > n {
		jobs = jobs[:n]
	}
	return jobs, nil
}

// CanPost reports whether the source accepts new postings.
func (c *JobCatalog) CanPost() bool { return c.writer != nil }

// Post validates req and stores it dated today. A validation failure
// returns the field errors and writes nothing.
func (c *JobCatalog) Post(ctx context.Context, req model.PostJobRequest) (model.JobPosting, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.JobPosting{}, err
	}
	if c.writer == nil {
		return model.JobPosting{}, apperrors.Internal("job posting is not available")
	}

	created, err := c.writer.CreateJob(ctx, req.Posting(c.clock.Now()))
	if err != nil {
		return model.JobPosting{}, fmt.Errorf("create job: %w", err)
	}
	c.logger.InfoContext(ctx, "job posted",
		slog.Int64("job_id", created.ID),
		slog.String("category", created.Category))
	return created, nil
}

// Preview validates req and returns the posting it would create, without storing it.
func (c *JobCatalog) Preview(req model.PostJobRequest) (model.JobPosting, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.JobPosting{}, err
	}
	return req.Posting(c.clock.Now()), nil
}
