package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Ensure LoggingRunService implements webcrawl.RunService.
var _ webcrawl.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with debug logging.
type LoggingRunService struct {
	next   webcrawl.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next webcrawl.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *webcrawl.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create run",
			"id", run.ID,
			"seed", run.SeedURL,
			"downloaded", len(run.Downloaded),
			"errors", len(run.Errors),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

// FindRunByID delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (run *webcrawl.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find run",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRunByID(ctx, id)
}

// FindRuns delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter webcrawl.RunFilter) (runs []*webcrawl.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find runs",
			"count", len(runs),
			"limit", filter.Limit,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRuns(ctx, filter)
}
