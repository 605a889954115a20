package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Run is one walkthrough replay session.
type Run struct {
	ID         ulid.ULID
	Game       string
	TargetStep int
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in progress
	Steps      int
}

// StepRecord is one played walkthrough step.
type StepRecord struct {
	Step     int
	Kind     string // "interact", "look", "use", "description", "location"
	Target   string
	Extra    string
	Outcome  string // "ok", "skipped", "failed"
	PlayedAt time.Time
}

// JournalRepo records walkthrough runs and the steps they played.
type JournalRepo struct {
	pool Pool
}

func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

func (r *JournalRepo) StartRun(ctx context.Context, run Run) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO walkthrough_runs (run_id, game, target_step, started_at)
		 VALUES ($1, $2, $3, $4)`,
		run.ID.String(), run.Game, run.TargetStep, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// RecordSteps atomically writes a batch of steps in a single transaction
// and adds them to the run's step count.
func (r *JournalRepo) RecordSteps(ctx context.Context, runID ulid.ULID, steps []StepRecord) error {
	if len(steps) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	id := runID.String()
	for _, s := range steps {
		if _, err := tx.Exec(ctx,
			`INSERT INTO walkthrough_steps (run_id, step, kind, target, extra, outcome, played_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, s.Step, s.Kind, s.Target, s.Extra, s.Outcome, s.PlayedAt,
		); err != nil {
			return fmt.Errorf("journal insert step %d: %w", s.Step, err)
		}
	}
	if _, err := tx.Exec(ctx,
		`UPDATE walkthrough_runs SET steps = steps + $2 WHERE run_id = $1`,
		id, len(steps),
	); err != nil {
		return fmt.Errorf("journal update run: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *JournalRepo) FinishRun(ctx context.Context, runID ulid.ULID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE walkthrough_runs SET finished_at = $2 WHERE run_id = $1`,
		runID.String(), at,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *JournalRepo) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT run_id, game, target_step, started_at, finished_at, steps
		 FROM walkthrough_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id  string
			run Run
		)
		if err := rows.Scan(&id, &run.Game, &run.TargetStep, &run.StartedAt, &run.FinishedAt, &run.Steps); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
