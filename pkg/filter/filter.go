// Package filter defines the preflight/execute contract shared by every
// pipeline stage.
//
// A filter first validates, in Preflight, that its inputs can be resolved and
// its outputs created, working on a placeholder copy of the container so no
// real data is touched. Execute then resolves the real arrays, runs the
// computation and publishes the outputs in one step. Inputs that another
// filter can derive are produced on demand by running that filter.
//
// Failures are reported as a negative code plus a message, readable from the
// filter after the call and also returned as a *Error. Cancellation through
// the context is a separate terminal state, not a failure.
package filter

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"grainstats/pkg/datacontainer"
)

// State is the lifecycle state of a filter.
type State int

const (
	Idle State = iota
	Preflighting
	Executing
	Completed
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Preflighting:
		return "Preflighting"
	case Executing:
		return "Executing"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Error codes. Zero is success.
const (
	CodeNilDataContainer = -1

	CodeMissingGrainIds     = -300
	CodeMissingBiasedFields = -301
	CodeMissingPhases       = -302
	CodeLabelOutOfRange     = -303
	CodeInvalidGeometry     = -304
	CodePhaseOutOfRange     = -305

	CodeMissingCellPhases   = -310
	CodeMissingCellGrainIds = -320
)

// ErrCancelled is wrapped by the error a filter returns when its context was
// cancelled.
var ErrCancelled = errors.New("filter cancelled")

// Error is a failed filter run.
type Error struct {
	Filter  string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Filter, e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCancellation reports whether err comes from a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Filter is one pipeline stage.
type Filter interface {
	Name() string

	// Preflight validates the stage against a placeholder of dc.
	Preflight(ctx context.Context, dc *datacontainer.DataContainer) error

	// Execute runs the stage against dc.
	Execute(ctx context.Context, dc *datacontainer.DataContainer) error

	State() State
	ErrorCondition() int
	ErrorMessage() string

	SetObservers(observers []Observer)
	Observers() []Observer
	SetLogger(log zerolog.Logger)
}
