package webcrawl

import (
	"context"
	"time"
)

// Run records a finished crawl.
type Run struct {
	ID         string            `json:"id"`
	SeedURL    string            `json:"seedUrl"`
	MaxDepth   int               `json:"maxDepth"`
	Downloaded []string          `json:"downloaded"`
	Errors     map[string]string `json:"errors"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.SeedURL == "" {
		return Errorf(EINVALID, "run seed URL required")
	}
	if r.MaxDepth < 1 {
		return Errorf(EINVALID, "run depth must be at least 1")
	}
	return nil
}

// NewRun builds a Run from a crawl result.
func NewRun(seedURL string, maxDepth int, result *Result, startedAt, finishedAt time.Time) *Run {
	run := &Run{
		SeedURL:    seedURL,
		MaxDepth:   maxDepth,
		Errors:     make(map[string]string),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if result == nil {
		return run
	}
	run.Downloaded = append(run.Downloaded, result.Downloaded...)
	for url, err := range result.Errors {
		run.Errors[url] = err.Error()
	}
	return run
}

// RunService represents a service for recording crawl runs.
type RunService interface {
	// CreateRun stores a run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	SeedURL *string `json:"seedUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
