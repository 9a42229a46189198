package trace

import "time"

// Activation is one recorded call event from a traced execution.
//
// Activations arrive in preorder: a call precedes every record of the calls
// it makes. CallerID is the id of the activation that performed the call
// (0 for the entry activation), which doubles as a depth/ordering marker
// for the summarization traversal.
//
// Activations are immutable once produced; the summarizer never mutates them.
type Activation struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Line     int    `json:"line"`
	CallerID int64  `json:"caller_id"`
	TrialID  int    `json:"trial_id"`
	Duration int64  `json:"duration"` // microseconds
}

// Trial identifies one traced execution, complete or in progress.
//
// The trial store is the sole owner of canonical trial data. Everything else
// (graphs, caches, diff results) refers to a trial by its ID only.
type Trial struct {
	ID        int       `json:"id"`
	Script    string    `json:"script"`
	Arguments string    `json:"arguments"`
	CodeHash  string    `json:"code_hash"`
	Start     time.Time `json:"start"`
	Finish    time.Time `json:"finish"`
	Finished  bool      `json:"finished"`
}

// Duration returns the wall-clock length of a finished trial.
// Returns 0 for trials still in progress.
func (t Trial) Duration() time.Duration {
	if !t.Finished || t.Finish.IsZero() || t.Start.IsZero() {
		return 0
	}
	return t.Finish.Sub(t.Start)
}
