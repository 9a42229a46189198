// Package testutil provides deterministic builders for activation
// sequences used across tests.
package testutil

import "github.com/callsight/callsight/internal/trace"

// TraceBuilder builds valid preorder activation sequences.
//
// Call opens an activation (its caller_id is the id of the currently open
// activation, 0 at the top) and Return closes the most recent one. Ids are
// assigned sequentially from 1, matching how a tracer numbers activations
// in record order.
type TraceBuilder struct {
	trialID int
	nextID  int64
	stack   []int64
	records []trace.Activation
}

// NewTraceBuilder creates a builder for one trial.
func NewTraceBuilder(trialID int) *TraceBuilder {
	return &TraceBuilder{trialID: trialID, nextID: 1}
}

// Call appends an activation opened by the current stack top and descends
// into it.
func (b *TraceBuilder) Call(name string, line int, duration int64) *TraceBuilder {
	var caller int64
	if len(b.stack) > 0 {
		caller = b.stack[len(b.stack)-1]
	}
	id := b.nextID
	b.nextID++
	b.records = append(b.records, trace.Activation{
		ID:       id,
		Name:     name,
		Line:     line,
		CallerID: caller,
		TrialID:  b.trialID,
		Duration: duration,
	})
	b.stack = append(b.stack, id)
	return b
}

// Return closes the most recently opened activation.
// Panics when nothing is open: that is a broken test, not a broken trace.
func (b *TraceBuilder) Return() *TraceBuilder {
	if len(b.stack) == 0 {
		panic("testutil: Return without open activation")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// Records returns the sequence built so far. Open activations are fine:
// the summarizer drains them at end of input.
func (b *TraceBuilder) Records() []trace.Activation {
	return b.records
}
