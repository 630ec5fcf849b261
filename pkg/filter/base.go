package filter

import (
	"fmt"

	"github.com/rs/zerolog"

	"grainstats/internal/logging"
)

// Base carries the state, error condition, observers and logger common to
// all filters. Embed it and call Begin at the start of Preflight and Execute.
type Base struct {
	name      string
	state     State
	code      int
	message   string
	observers []Observer
	log       zerolog.Logger
}

// NewBase returns an idle Base with a no-op logger.
func NewBase(name string) Base {
	return Base{name: name, log: zerolog.Nop()}
}

func (b *Base) Name() string          { return b.name }
func (b *Base) State() State          { return b.state }
func (b *Base) ErrorCondition() int   { return b.code }
func (b *Base) ErrorMessage() string  { return b.message }
func (b *Base) Observers() []Observer { return b.observers }

func (b *Base) SetObservers(observers []Observer) { b.observers = observers }

// SetLogger tags log with this filter's name.
func (b *Base) SetLogger(log zerolog.Logger) {
	b.log = logging.Component(log, b.name)
}

// Logger returns the component logger, for handing to collaborators.
func (b *Base) Logger() *zerolog.Logger { return &b.log }

// Begin enters s and clears the previous error condition.
func (b *Base) Begin(s State) {
	b.state = s
	b.code = 0
	b.message = ""
}

// Complete marks a successful run. A successful preflight returns the filter
// to Idle, ready to execute.
func (b *Base) Complete() {
	if b.state == Preflighting {
		b.state = Idle
		return
	}
	b.state = Completed
}

// Fail records code and err, notifies observers and returns the *Error to
// hand back to the caller.
func (b *Base) Fail(code int, err error) error {
	b.state = Failed
	b.code = code
	b.message = err.Error()
	b.log.Error().Int("code", code).Err(err).Msg("filter failed")
	b.Notify(b.message, 0, ErrorMessage)
	return &Error{Filter: b.name, Code: code, Message: b.message, Err: err}
}

// Cancel records a cancellation caused by err, which is normally the
// context's error. The error condition stays zero.
func (b *Base) Cancel(err error) error {
	b.state = Cancelled
	b.log.Warn().Err(err).Msg("filter cancelled")
	b.Notify(fmt.Sprintf("%s was cancelled", b.name), 0, CancelMessage)
	return fmt.Errorf("%s: %w: %w", b.name, ErrCancelled, err)
}

// Abort routes err to Cancel when it is a cancellation and to Fail with code
// otherwise.
func (b *Base) Abort(code int, err error) error {
	if IsCancellation(err) {
		return b.Cancel(err)
	}
	return b.Fail(code, err)
}

// Notify sends a message to every observer.
func (b *Base) Notify(text string, progress int, t MessageType) {
	notifyAll(b.observers, Message{Filter: b.name, Text: text, Progress: progress, Type: t})
}
