package data

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancehub/web/internal/domain/model"
	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/testutil"
)

func TestJobRepo_CreateAndList(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)

		older, err := repo.CreateJob(ctx, model.JobPosting{
			Title:       "  Logo Designer  ",
			Description: "Design a logo for a bakery.",
			Category:    "Design",
			Budget:      "$200 - $400",
			PostedDate:  "2024-03-01",
		})
		require.NoError(t, err)
		assert.NotZero(t, older.ID)
		assert.Equal(t, "Logo Designer", older.Title)
		assert.Empty(t, older.Deadline)
		assert.Empty(t, older.Skills)
		assert.Equal(t, "USD", older.Currency, "a missing currency defaults to USD")

		newer, err := repo.CreateJob(ctx, model.JobPosting{
			Title:       "Go Backend Engineer",
			Description: "Build a REST API.",
			Category:    "Web Development",
			Budget:      "€3000",
			Currency:    "EUR",
			PostedDate:  "2024-04-10",
			JobType:     "Fixed Price",
			Experience:  "Expert",
			Deadline:    "2024-05-31",
			Duration:    "2 months",
			Skills:      []string{"Go", "PostgreSQL"},
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-05-31", newer.Deadline)
		assert.Equal(t, []string{"Go", "PostgreSQL"}, newer.Skills)

		jobs, err := repo.ListJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, newer.ID, jobs[0].ID)
		assert.Equal(t, older.ID, jobs[1].ID)
		assert.Equal(t, "2024-04-10", jobs[0].PostedDate)
		assert.Equal(t, "EUR", jobs[0].Currency)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestJobRepo_CreateJob_DefaultsPostedDate(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		got, err := repo.CreateJob(context.Background(), model.JobPosting{
			Title:    "Copywriter",
			Category: "Writing",
			Budget:   "$100",
		})
		require.NoError(t, err)
		assert.Len(t, got.PostedDate, len("2006-01-02"))
	})
}

func TestJobRepo_CreateJob_Validation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)

		tests := []struct {
			name      string
			posting   model.JobPosting
			wantField string
		}{
			{
				name:      "bad posted date",
				posting:   model.JobPosting{Title: "Editor", PostedDate: "04/01/2024"},
				wantField: "postedDate",
			},
			{
				name:      "bad deadline",
				posting:   model.JobPosting{Title: "Editor", Deadline: "soon"},
				wantField: "deadline",
			},
			{
				name:      "blank title rejected by check constraint",
				posting:   model.JobPosting{Title: "   "},
				wantField: "",
			},
			{
				name:      "budget too long",
				posting:   model.JobPosting{Title: "Editor", Budget: strings.Repeat("9", 101)},
				wantField: "",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := repo.CreateJob(ctx, tt.posting)
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err), "got %v", apperrors.GetCode(err))
				if tt.wantField != "" {
					assert.Equal(t, tt.wantField, apperrors.GetField(err))
				}
			})
		}

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestJobRepo_SeedIfEmpty(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		samples := model.SampleJobPostings()

		inserted, err := repo.SeedIfEmpty(ctx, samples)
		require.NoError(t, err)
		assert.Equal(t, len(samples), inserted)

		again, err := repo.SeedIfEmpty(ctx, samples)
		require.NoError(t, err)
		assert.Zero(t, again)

		jobs, err := repo.ListJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, len(samples))
		for i := range samples {
			assert.Equal(t, samples[i].Title, jobs[i].Title)
			assert.Equal(t, samples[i].PostedDate, jobs[i].PostedDate)
		}
	})
}

func TestJobRepo_SeedIfEmpty_Concurrent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		samples := model.SampleJobPostings()

		var wg sync.WaitGroup
		counts := make([]int, 4)
		errs := make([]error, 4)
		for i := range counts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				counts[i], errs[i] = repo.SeedIfEmpty(ctx, samples)
			}(i)
		}
		wg.Wait()

		total := 0
		for i := range counts {
			require.NoError(t, errs[i])
			total += counts[i]
		}
		assert.Equal(t, len(samples), total)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(samples), n)
	})
}

func TestJobRepo_ListJobs_CanceledContext(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewJobRepo(db).ListJobs(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsCanceled(err), "got %v", apperrors.GetCode(err))
	})
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate(" 2024-04-03 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Day())

	_, err = parseDate("2024-13-01")
	require.Error(t, err)
}
