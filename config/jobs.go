package config

import (
	"fmt"
	"strings"
)

// JobsSource selects the data source behind the job catalog.
type JobsSource string

const (
	// JobsSourceStatic serves the built-in sample postings from memory.
	JobsSourceStatic JobsSource = "static"
	// JobsSourcePostgres serves postings from the jobs table.
	JobsSourcePostgres JobsSource = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for JobsSource.
func (s *JobsSource) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "static", "postgres":
		*s = JobsSource(v)
		return nil
	default:
		return fmt.Errorf("invalid JobsSource: %q (valid options: static, postgres)", v)
	}
}

// JobsConfig configures the job catalog.
type JobsConfig struct {
	Source JobsSource `env:"JOBS_SOURCE" envDefault:"static"`
}
