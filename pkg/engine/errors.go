package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownPresenter is returned when a view references a presenter id
// that was never registered.
var ErrUnknownPresenter = errors.New("engine: unknown presenter")

// ErrUnknownInvocation is returned for operations on a handle that does
// not name a live invocation.
var ErrUnknownInvocation = errors.New("engine: unknown invocation handle")

// CycleError reports that an invocation exceeded its re-visit bound
// within a single pass: re-rendering it keeps dirtying it again, directly
// or through a dependency loop. The affected chain is dropped for the
// pass; unrelated invocations still complete.
type CycleError struct {
	Invocation Handle
	Presenter  string
	Visits     int
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("engine: presenter %q (invocation %d) re-dirtied %d times in one pass; dependency cycle suspected",
		e.Presenter, e.Invocation, e.Visits)
}

// UseAfterRazeError signals an operation on an invocation or state subtree
// that has already been torn down. This is a lifetime-invariant violation
// in the caller, never a recoverable condition, so it is delivered by
// panic rather than by return value.
type UseAfterRazeError struct {
	Invocation Handle
	Detail     string
}

// Error implements the error interface.
func (e *UseAfterRazeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("engine: use after raze (invocation %d): %s", e.Invocation, e.Detail)
	}
	return fmt.Sprintf("engine: use after raze (invocation %d)", e.Invocation)
}

// Diagnostic codes for recoverable structural errors.
const (
	DiagDuplicateKey      = "duplicate-key"
	DiagIncomparableProps = "incomparable-props"
	DiagIncomparableKey   = "incomparable-key"
	DiagUnknownPresenter  = "unknown-presenter"
	DiagUnknownLeaf       = "unknown-leaf"
	DiagCycle             = "cycle"
)

// Diagnostic describes a structural problem that was recovered locally:
// the offending subtree was rebuilt and the pass continued.
type Diagnostic struct {
	Code       string
	Message    string
	Invocation Handle
	Presenter  string
}

// String returns a log-friendly rendering.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s (presenter %q, invocation %d)", d.Code, d.Message, d.Presenter, d.Invocation)
}
