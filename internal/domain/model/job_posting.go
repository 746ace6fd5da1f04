package model

import (
	"strings"
	"time"

	apperrors "github.com/freelancehub/web/internal/errors"
	"github.com/freelancehub/web/internal/validation"
)

// JobPosting is a listed job. Budget is a display string and is never parsed;
// Currency is the code the budget was entered in.
type JobPosting struct {
	ID          int64    `json:"id"                        db:"id"`
	Title       string   `json:"title"                     db:"title"`
	Description string   `json:"description"               db:"description"`
	Category    string   `json:"category"                  db:"category"`
	Budget      string   `json:"budget"                    db:"budget"`
	Currency    string   `json:"currency,omitempty"        db:"currency"`
	PostedDate  string   `json:"postedDate"                db:"posted_date"`
	JobType     string   `json:"jobType,omitempty"         db:"job_type"`
	Experience  string   `json:"experienceLevel,omitempty" db:"experience_level"`
	Deadline    string   `json:"deadline,omitempty"        db:"deadline"`
	Duration    string   `json:"duration,omitempty"        db:"duration"`
	Skills      []string `json:"skills,omitempty"          db:"skills"`
}

// CategoryAll is the filter keyword matching every category.
const CategoryAll = "all"

// JobCategories lists the browsable categories in display order.
func JobCategories() []string {
	return []string{"Web Development", "Design", "Writing", "Marketing", "Data Science", "Mobile Development"}
}

// JobTypes lists the accepted pricing models.
func JobTypes() []string { return []string{"Fixed Price", "Hourly Rate"} }

// ExperienceLevels lists the accepted experience levels.
func ExperienceLevels() []string { return []string{"Entry Level", "Intermediate", "Expert"} }

// Currencies lists the accepted budget currencies; the first is the default.
func Currencies() []string { return []string{"USD", "EUR", "GBP", "INR"} }

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxShortFieldLen  = 100
	maxSkills         = 20
)

// PostJobRequest is the submitted job form.
type PostJobRequest struct {
	Title           string
	Description     string
	Category        string
	JobType         string
	ExperienceLevel string
	Budget          string
	Currency        string
	Deadline        string
	Duration        string
	Skills          []string
}

// Normalize trims fields, canonicalizes choices, and de-duplicates skills.
func (r *PostJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Budget = strings.TrimSpace(r.Budget)
	r.Deadline = strings.TrimSpace(r.Deadline)
	r.Duration = strings.TrimSpace(r.Duration)
	r.Category = canonicalOr(r.Category, JobCategories())
	r.JobType = canonicalOr(r.JobType, JobTypes())
	r.ExperienceLevel = canonicalOr(r.ExperienceLevel, ExperienceLevels())
	r.Currency = canonicalOr(r.Currency, Currencies())
	if r.Currency == "" {
		r.Currency = Currencies()[0]
	}

	seen := make(map[string]struct{}, len(r.Skills))
	skills := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, s)
	}
	r.Skills = skills
}

// Validate checks every field and returns one message per invalid field.
func (r *PostJobRequest) Validate() error {
	fv := validation.New().
		Validate("title", r.Title, validation.Required("Title", maxTitleLen)).
		Validate("description", r.Description, validation.Required("Description", maxDescriptionLen)).
		Validate("category", r.Category, validation.Required("Category", maxShortFieldLen), validation.OneOf("Category", JobCategories())).
		Validate("jobType", r.JobType, validation.Required("Job type", maxShortFieldLen), validation.OneOf("Job type", JobTypes())).
		Validate("experienceLevel", r.ExperienceLevel,
			validation.Required("Experience level", maxShortFieldLen), validation.OneOf("Experience level", ExperienceLevels())).
		Validate("budget", r.Budget, validation.Required("Budget", maxShortFieldLen)).
		Validate("currency", r.Currency, validation.OneOf("Currency", Currencies())).
		Validate("deadline", r.Deadline, validation.Required("Deadline", maxShortFieldLen), validation.Date("Deadline")).
		Validate("duration", r.Duration, validation.Required("Duration", maxShortFieldLen))
	if len(r.Skills) > maxSkills {
		fv.Validate("skills", "x", func(string) string { return "Add at most 20 skills" })
	}
	if err := apperrors.ValidationFields("Please fix the errors in the form", fv.Errors()); err != nil {
		return err
	}
	return nil
}

// Posting builds the listed posting for a validated request.
func (r *PostJobRequest) Posting(postedOn time.Time) JobPosting {
	return JobPosting{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Budget:      FormatBudget(r.Currency, r.Budget),
		Currency:    r.Currency,
		PostedDate:  postedOn.Format(time.DateOnly),
		JobType:     r.JobType,
		Experience:  r.ExperienceLevel,
		Deadline:    r.Deadline,
		Duration:    r.Duration,
		Skills:      r.Skills,
	}
}

var currencySymbols = map[string]string{"USD": "$", "EUR": "€", "GBP": "£", "INR": "₹"}

// FormatBudget renders an amount with its currency symbol, e.g. "$500 - $800".
// Amounts that already carry a symbol are returned unchanged.
func FormatBudget(currency, amount string) string {
	symbol := currencySymbols[currency]
	if symbol == "" || strings.ContainsAny(amount, "$€£₹") {
		return amount
	}
	parts := strings.Split(amount, "-")
	for i, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			parts[i] = symbol + p
		}
	}
	return strings.Join(parts, " - ")
}

// ParseSkills splits a comma-separated skills field.
func ParseSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func canonicalOr(v string, options []string) string {
	if c := validation.Canonical(v, options); c != "" {
		return c
	}
	return strings.TrimSpace(v)
}
