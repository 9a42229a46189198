package summary

import (
	"errors"
	"fmt"
)

// TraceErrorCode categorizes contract and structural errors detected while
// traversing an activation sequence.
type TraceErrorCode string

const (
	// ErrCodeBadStart indicates the first record did not open at depth zero.
	ErrCodeBadStart TraceErrorCode = "BAD_TRACE_START"

	// ErrCodeBadOrdering indicates a caller_id that is inconsistent with the
	// preorder contract (it dropped below the root depth, or landed between
	// open stack frames).
	ErrCodeBadOrdering TraceErrorCode = "BAD_CALLER_ORDERING"
)

// TraceError is a contract violation in the input sequence.
//
// The traversal fails fast on these rather than emitting a partial or
// incorrect graph. Position is the zero-based index of the offending record
// (-1 when the violation is only detectable at end of input).
type TraceError struct {
	Code     TraceErrorCode
	Message  string
	Position int
	CallerID int64
}

// Error implements the error interface.
func (e *TraceError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: %s (record=%d, caller_id=%d)", e.Code, e.Message, e.Position, e.CallerID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTraceError returns true if the error is a trace contract violation.
// Uses errors.As to handle wrapped errors.
func IsTraceError(err error) bool {
	var te *TraceError
	return errors.As(err, &te)
}

// UnknownModeError reports a request for a summarization mode that does not
// exist.
type UnknownModeError struct {
	Mode string
}

// Error implements the error interface.
func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown summarization mode %q", e.Mode)
}

// IsUnknownMode returns true if the error is an unknown-mode error.
func IsUnknownMode(err error) bool {
	var ue *UnknownModeError
	return errors.As(err, &ue)
}
