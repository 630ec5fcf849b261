package filter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"grainstats/pkg/datacontainer"
)

// Pipeline runs filters in order against one container.
type Pipeline struct {
	filters   []Filter
	observers []Observer
	log       zerolog.Logger
}

// NewPipeline creates a pipeline running filters in the given order.
func NewPipeline(filters ...Filter) *Pipeline {
	return &Pipeline{filters: filters, log: zerolog.Nop()}
}

// Add appends a filter.
func (p *Pipeline) Add(f Filter) { p.filters = append(p.filters, f) }

// Filters returns the stages in run order.
func (p *Pipeline) Filters() []Filter { return p.filters }

// AddObserver registers o with the pipeline and every filter it runs.
func (p *Pipeline) AddObserver(o Observer) { p.observers = append(p.observers, o) }

// SetLogger sets the pipeline logger and hands it to every filter.
func (p *Pipeline) SetLogger(log zerolog.Logger) { p.log = log }

func (p *Pipeline) prepare(f Filter) {
	f.SetObservers(p.observers)
	f.SetLogger(p.log)
}

// Preflight validates every stage in order against one shared placeholder of
// dc, so the outputs of earlier stages satisfy the prerequisites of later
// ones. dc itself is not modified.
func (p *Pipeline) Preflight(ctx context.Context, dc *datacontainer.DataContainer) error {
	if dc == nil {
		return &Error{Filter: "Pipeline", Code: CodeNilDataContainer, Message: "DataContainer was nil"}
	}
	scratch := dc.Placeholder()
	for _, f := range p.filters {
		p.prepare(f)
		if err := f.Preflight(ctx, scratch); err != nil {
			return fmt.Errorf("preflight failed: %w", err)
		}
	}
	return nil
}

// Execute runs every stage in order and stops at the first failure or
// cancellation. Outputs of stages that completed before the failure stay in
// dc.
func (p *Pipeline) Execute(ctx context.Context, dc *datacontainer.DataContainer) error {
	if dc == nil {
		return &Error{Filter: "Pipeline", Code: CodeNilDataContainer, Message: "DataContainer was nil"}
	}
	total := len(p.filters)
	for i, f := range p.filters {
		p.prepare(f)

		p.log.Info().Msgf("Step %d/%d: %s", i+1, total, f.Name())
		notifyAll(p.observers, Message{
			Filter:   f.Name(),
			Text:     fmt.Sprintf("Running %s", f.Name()),
			Progress: i * 100 / total,
			Type:     UpdateProgressMessage,
		})

		if err := f.Execute(ctx, dc); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, f.Name(), err)
		}
	}
	notifyAll(p.observers, Message{Filter: "Pipeline", Text: "Pipeline Completed", Progress: 100, Type: UpdateProgressMessage})
	return nil
}
