// Package store records labeling runs in Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed" // a failure condition tripped
	OutcomeError   Outcome = "error"
)

// Run is one labeling run for a pull request.
type Run struct {
	ID            string    `json:"id"`
	Repo          string    `json:"repo"`
	PRNumber      int       `json:"prNumber"`
	HeadSHA       string    `json:"headSha"`
	Outcome       Outcome   `json:"outcome"`
	LabelsAdded   []string  `json:"labelsAdded"`
	LabelsRemoved []string  `json:"labelsRemoved"`
	SizeLabel     string    `json:"sizeLabel,omitempty"`
	HasViolations bool      `json:"hasViolations"`
	Failures      []string  `json:"failures"`
	DryRun        bool      `json:"dryRun"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Runs is the run history used by the pipeline and API.
type Runs interface {
	RecordRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRunsByRepo(ctx context.Context, repo string, limit int) ([]Run, error)
}

// Service provides run history backed by Postgres.
type Service struct {
	db *sql.DB
}

var _ Runs = (*Service)(nil)

// NewService creates a new run Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

const runColumns = `id, repo, pr_number, head_sha, outcome, labels_added, labels_removed,
		        size_label, has_violations, failures, dry_run, duration_ms, created_at`

// RecordRun inserts a run. CreatedAt is set from the database when zero.
func (s *Service) RecordRun(ctx context.Context, run *Run) error {
	added, err := encodeList(run.LabelsAdded)
	if err != nil {
		return err
	}
	removed, err := encodeList(run.LabelsRemoved)
	if err != nil {
		return err
	}
	failures, err := encodeList(run.Failures)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO runs (id, repo, pr_number, head_sha, outcome, labels_added, labels_removed,
		                   size_label, has_violations, failures, dry_run, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		run.ID, run.Repo, run.PRNumber, run.HeadSHA, string(run.Outcome), added, removed,
		run.SizeLabel, run.HasViolations, failures, run.DryRun, run.DurationMs,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns a single run by ID.
func (s *Service) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRunsByRepo returns the most recent runs for a repository, newest first.
func (s *Service) ListRunsByRepo(ctx context.Context, repo string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE repo = $1 ORDER BY created_at DESC LIMIT $2`,
		repo, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run                      Run
		outcome                  string
		added, removed, failures []byte
	)
	if err := sc.Scan(
		&run.ID, &run.Repo, &run.PRNumber, &run.HeadSHA, &outcome, &added, &removed,
		&run.SizeLabel, &run.HasViolations, &failures, &run.DryRun, &run.DurationMs, &run.CreatedAt,
	); err != nil {
		return nil, err
	}
	run.Outcome = Outcome(outcome)
	var err error
	if run.LabelsAdded, err = decodeList(added); err != nil {
		return nil, err
	}
	if run.LabelsRemoved, err = decodeList(removed); err != nil {
		return nil, err
	}
	if run.Failures, err = decodeList(failures); err != nil {
		return nil, err
	}
	return &run, nil
}

// encodeList renders a JSONB text value; nil becomes [].
func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(data []byte) ([]string, error) {
	list := []string{}
	if len(data) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return list, nil
}
