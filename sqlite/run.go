package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webcrawl.RunService = (*RunService)(nil)

// RunService implements webcrawl.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a run with its downloaded and failed pages.
// Downloaded pages keep their download order.
func (s *RunService) CreateRun(ctx context.Context, run *webcrawl.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, seed_url, max_depth, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, run.SeedURL, run.MaxDepth,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	for i, url := range run.Downloaded {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_pages (run_id, url, error, position) VALUES (?, ?, NULL, ?)
		`, id, url, i); err != nil {
			return err
		}
	}
	for url, msg := range run.Errors {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_pages (run_id, url, error, position) VALUES (?, ?, ?, ?)
		`, id, url, msg, len(run.Downloaded)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = id
	return nil
}

// FindRunByID retrieves a run and its pages by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*webcrawl.Run, error) {
	var run webcrawl.Run
	var startedAt, finishedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed_url, max_depth, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.SeedURL, &run.MaxDepth, &startedAt, &finishedAt)

	if err == sql.ErrNoRows {
		return nil, webcrawl.Errorf(webcrawl.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}

	if err := s.attachPages(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindRuns retrieves run summaries matching the filter, newest first.
// Returned runs carry their pages as well.
func (s *RunService) FindRuns(ctx context.Context, filter webcrawl.RunFilter) ([]*webcrawl.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, seed_url, max_depth, started_at, finished_at FROM runs WHERE 1=1")

	if filter.SeedURL != nil {
		query.WriteString(" AND seed_url = ?")
		args = append(args, *filter.SeedURL)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	var runs []*webcrawl.Run
	for rows.Next() {
		var run webcrawl.Run
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.SeedURL, &run.MaxDepth, &startedAt, &finishedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			rows.Close()
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The pool holds a single connection, so rows must be closed before
	// the page queries below can run.
	rows.Close()

	for _, run := range runs {
		if err := s.attachPages(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *RunService) attachPages(ctx context.Context, run *webcrawl.Run) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, error FROM run_pages
		WHERE run_id = ?
		ORDER BY position, url
	`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	run.Errors = make(map[string]string)
	for rows.Next() {
		var url string
		var msg sql.NullString
		if err := rows.Scan(&url, &msg); err != nil {
			return err
		}
		if msg.Valid {
			run.Errors[url] = msg.String
			continue
		}
		run.Downloaded = append(run.Downloaded, url)
	}
	return rows.Err()
}
