package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/callsight/callsight/internal/trace"
)

// NotFoundError reports a request for a trial id that does not exist.
type NotFoundError struct {
	TrialID int
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("trial %d not found", e.TrialID)
}

// IsNotFound returns true if the error is a trial-not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ReadTrial returns the trial with the given id, or a NotFoundError.
func (s *Store) ReadTrial(ctx context.Context, trialID int) (trace.Trial, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, script, arguments, code_hash, start, finish, finished
		FROM trials
		WHERE id = ?
	`, trialID)

	t, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return trace.Trial{}, &NotFoundError{TrialID: trialID}
	}
	if err != nil {
		return trace.Trial{}, fmt.Errorf("read trial %d: %w", trialID, err)
	}
	return t, nil
}

// ListTrials returns all trials ordered by id.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListTrials(ctx context.Context) ([]trace.Trial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, script, arguments, code_hash, start, finish, finished
		FROM trials
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	trials := []trace.Trial{}
	for rows.Next() {
		t, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		trials = append(trials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trials: %w", err)
	}
	return trials, nil
}

// ReadActivations returns a trial's activation sequence in preorder
// (ORDER BY id ASC). Unknown trials produce a NotFoundError; a known trial
// with no records yet returns an empty slice.
func (s *Store) ReadActivations(ctx context.Context, trialID int) ([]trace.Activation, error) {
	// Existence check first so an empty sequence is distinguishable from a
	// missing trial.
	if _, err := s.ReadTrial(ctx, trialID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, line, caller_id, duration
		FROM activations
		WHERE trial_id = ?
		ORDER BY id ASC
	`, trialID)
	if err != nil {
		return nil, fmt.Errorf("query activations: %w", err)
	}
	defer rows.Close()

	activations := []trace.Activation{}
	for rows.Next() {
		a := trace.Activation{TrialID: trialID}
		if err := rows.Scan(&a.ID, &a.Name, &a.Line, &a.CallerID, &a.Duration); err != nil {
			return nil, fmt.Errorf("scan activation: %w", err)
		}
		activations = append(activations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activations: %w", err)
	}
	return activations, nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrial(row scanner) (trace.Trial, error) {
	var (
		t             trace.Trial
		start, finish string
		finished      int
	)
	if err := row.Scan(&t.ID, &t.Script, &t.Arguments, &t.CodeHash, &start, &finish, &finished); err != nil {
		return trace.Trial{}, err
	}
	t.Finished = finished != 0

	var err error
	if t.Start, err = parseTime(start); err != nil {
		return trace.Trial{}, fmt.Errorf("trial %d start: %w", t.ID, err)
	}
	if t.Finish, err = parseTime(finish); err != nil {
		return trace.Trial{}, fmt.Errorf("trial %d finish: %w", t.ID, err)
	}
	return t, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
