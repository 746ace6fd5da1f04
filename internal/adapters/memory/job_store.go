package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/freelancehub/web/internal/domain/model"
	"github.com/freelancehub/web/internal/ports"
)

var _ ports.JobStore = (*JobStore)(nil)

// JobStore holds postings in memory, newest first.
type JobStore struct {
	mu     sync.RWMutex
	jobs   []model.JobPosting
	nextID int64
}

// NewJobStore creates a store seeded with the given postings in their given order.
func NewJobStore(seed []model.JobPosting) *JobStore {
	s := &JobStore{jobs: cloneJobs(seed)}
	for _, j := range s.jobs {
		s.nextID = max(s.nextID, j.ID)
	}
	return s
}

// NewSampleJobStore creates a store seeded with the built-in sample postings.
func NewSampleJobStore() *JobStore {
	return NewJobStore(model.SampleJobPostings())
}

// ListJobs returns a copy of the stored postings so callers cannot mutate the store.
func (s *JobStore) ListJobs(ctx context.Context) ([]model.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneJobs(s.jobs), nil
}

// CreateJob assigns the next id and prepends the posting.
func (s *JobStore) CreateJob(ctx context.Context, posting model.JobPosting) (model.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return model.JobPosting{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	posting.ID = s.nextID
	posting.Skills = slices.Clone(posting.Skills)
	s.jobs = slices.Insert(s.jobs, 0, posting)
	return posting, nil
}

func cloneJobs(in []model.JobPosting) []model.JobPosting {
	out := make([]model.JobPosting, len(in))
	for i, j := range in {
		j.Skills = slices.Clone(j.Skills)
		out[i] = j
	}
	return out
}
