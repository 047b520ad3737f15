package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a batch run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one batch invocation.
type Run struct {
	ID                string    `json:"id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at,omitzero"`
	Seed              uint64    `json:"seed"`
	ConfigFingerprint string    `json:"config_fingerprint"`
	Status            RunStatus `json:"status"`
	Error             string    `json:"error,omitempty"`
}

// SplitSummary is what one split produced during a run.
type SplitSummary struct {
	RunID             string    `json:"run_id"`
	Split             string    `json:"split"`
	Recordings        int       `json:"recordings"`
	NotInSplit        int       `json:"not_in_split"`
	LaughterTotal     int       `json:"laughter_total"`
	LaughterKept      int       `json:"laughter_kept"`
	LaughterDiscarded int       `json:"laughter_discarded"`
	PoolSize          int       `json:"pool_size"`
	Balanced          int       `json:"balanced"`
	LaughterMs        float64   `json:"laughter_ms"`
	BalancedMs        float64   `json:"balanced_ms"`
	ShortfallMs       float64   `json:"shortfall_ms"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// BeginRun records a new running batch and returns it.
func (s *Store) BeginRun(ctx context.Context, seed uint64, fingerprint string) (Run, error) {
	run := Run{
		ID:                uuid.NewString(),
		StartedAt:         time.Now().UTC(),
		Seed:              seed,
		ConfigFingerprint: fingerprint,
		Status:            RunRunning,
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, started_at, seed, config_fingerprint, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), int64(seed), fingerprint, string(run.Status),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed, or failed with runErr's text.
func (s *Store) FinishRun(ctx context.Context, id string, runErr error) error {
	status := RunCompleted
	message := ""
	if runErr != nil {
		status = RunFailed
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, error_message = ? WHERE id = ?`,
		formatTime(time.Now()), string(status), message, id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RecordSplit stores or replaces the summary of one split within a run.
func (s *Store) RecordSplit(ctx context.Context, summary SplitSummary) error {
	if summary.RecordedAt.IsZero() {
		summary.RecordedAt = time.Now()
	}
	_, err := s.exec(ctx, `
INSERT INTO split_summaries (
    run_id, split, recordings, not_in_split, laughter_total, laughter_kept,
    laughter_discarded, pool_size, balanced, laughter_ms, balanced_ms, shortfall_ms, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id, split) DO UPDATE SET
    recordings = excluded.recordings,
    not_in_split = excluded.not_in_split,
    laughter_total = excluded.laughter_total,
    laughter_kept = excluded.laughter_kept,
    laughter_discarded = excluded.laughter_discarded,
    pool_size = excluded.pool_size,
    balanced = excluded.balanced,
    laughter_ms = excluded.laughter_ms,
    balanced_ms = excluded.balanced_ms,
    shortfall_ms = excluded.shortfall_ms,
    recorded_at = excluded.recorded_at`,
		summary.RunID, summary.Split, summary.Recordings, summary.NotInSplit, summary.LaughterTotal,
		summary.LaughterKept, summary.LaughterDiscarded, summary.PoolSize, summary.Balanced,
		summary.LaughterMs, summary.BalancedMs, summary.ShortfallMs, formatTime(summary.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("record split %s: %w", summary.Split, err)
	}
	return nil
}

// GetRun fetches a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `
SELECT id, started_at, finished_at, seed, config_fingerprint, status, error_message
FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// RecentRuns lists the newest runs first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), `
SELECT id, started_at, finished_at, seed, config_fingerprint, status, error_message
FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SplitsForRun lists split summaries of a run in the order they were recorded.
func (s *Store) SplitsForRun(ctx context.Context, runID string) ([]SplitSummary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `
SELECT run_id, split, recordings, not_in_split, laughter_total, laughter_kept,
       laughter_discarded, pool_size, balanced, laughter_ms, balanced_ms, shortfall_ms, recorded_at
FROM split_summaries WHERE run_id = ? ORDER BY recorded_at, split`, runID)
	if err != nil {
		return nil, fmt.Errorf("query split summaries: %w", err)
	}
	defer rows.Close()

	var out []SplitSummary
	for rows.Next() {
		var (
			summary    SplitSummary
			recordedAt sql.NullString
		)
		if err := rows.Scan(
			&summary.RunID, &summary.Split, &summary.Recordings, &summary.NotInSplit,
			&summary.LaughterTotal, &summary.LaughterKept, &summary.LaughterDiscarded,
			&summary.PoolSize, &summary.Balanced, &summary.LaughterMs, &summary.BalancedMs,
			&summary.ShortfallMs, &recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan split summary: %w", err)
		}
		summary.RecordedAt = parseTime(recordedAt)
		out = append(out, summary)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		startedAt  sql.NullString
		finishedAt sql.NullString
		seed       int64
		status     string
	)
	if err := row.Scan(&run.ID, &startedAt, &finishedAt, &seed, &run.ConfigFingerprint, &status, &run.Error); err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	run.Seed = uint64(seed)
	run.Status = RunStatus(status)
	return run, nil
}
