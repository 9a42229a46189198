package store

import (
	"context"
	"fmt"
	"time"

	"github.com/callsight/callsight/internal/trace"
)

// WriteTrial inserts a trial and returns its assigned id.
// A zero Start is stored as the current time.
func (s *Store) WriteTrial(ctx context.Context, t trace.Trial) (int, error) {
	start := t.Start
	if start.IsZero() {
		start = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trials (script, arguments, code_hash, start, finish, finished)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.Script, t.Arguments, t.CodeHash, formatTime(start), formatTime(t.Finish), boolToInt(t.Finished))
	if err != nil {
		return 0, fmt.Errorf("insert trial: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("trial id: %w", err)
	}
	return int(id), nil
}

// WriteActivations appends a batch of activation records to a trial in a
// single transaction: either the whole sequence lands or none of it.
func (s *Store) WriteActivations(ctx context.Context, trialID int, activations []trace.Activation) error {
	if len(activations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activations (trial_id, id, name, line, caller_id, duration)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare activation insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range activations {
		if _, err := stmt.ExecContext(ctx, trialID, a.ID, a.Name, a.Line, a.CallerID, a.Duration); err != nil {
			return fmt.Errorf("insert activation %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activations: %w", err)
	}
	return nil
}

// FinishTrial marks a trial finished at the given time.
func (s *Store) FinishTrial(ctx context.Context, trialID int, finish time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trials SET finish = ?, finished = 1 WHERE id = ?
	`, formatTime(finish), trialID)
	if err != nil {
		return fmt.Errorf("finish trial %d: %w", trialID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish trial %d: %w", trialID, err)
	}
	if n == 0 {
		return &NotFoundError{TrialID: trialID}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
