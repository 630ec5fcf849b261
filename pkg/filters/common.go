// Package filters implements the pipeline stages that characterize a
// segmented field: FindSizes and the collaborators it runs on demand to
// derive missing prerequisites.
package filters

import (
	"context"
	"errors"

	"grainstats/internal/models"
	"grainstats/pkg/datacontainer"
	"grainstats/pkg/ensemble"
	"grainstats/pkg/filter"
	"grainstats/pkg/measurement"
)

var errNilContainer = errors.New("DataContainer was nil")

// tupleCount returns declared when the container declares a count, and
// max(values)+1 otherwise.
func tupleCount(declared int, values []int32) int {
	if declared > 0 {
		return declared
	}
	var m int32
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return int(m) + 1
}

// codeFor maps a computation error to its error code, or to fallback when
// the error is not one of the known conditions.
func codeFor(err error, fallback int) int {
	switch {
	case errors.Is(err, measurement.ErrLabelOutOfRange):
		return filter.CodeLabelOutOfRange
	case errors.Is(err, models.ErrInvalidGeometry):
		return filter.CodeInvalidGeometry
	case errors.Is(err, ensemble.ErrPhaseOutOfRange):
		return filter.CodePhaseOutOfRange
	}
	return fallback
}

// checkGeometry validates the geometry of the real field behind dc, which is
// also correct when dc is a placeholder.
func checkGeometry(dc *datacontainer.DataContainer) error {
	return dc.SourceGeometry().Validate()
}

// sliceCancelled polls ctx at the start of every z slice of a voxel loop.
func sliceCancelled(ctx context.Context, i, slicePoints int) error {
	if slicePoints > 0 && i%slicePoints == 0 {
		return ctx.Err()
	}
	return nil
}

// collaborator runs f against dc in the same mode as the caller, so its
// outputs satisfy a missing prerequisite.
type collaborator struct {
	parent *filter.Base
	f      filter.Filter
}

// provider returns a datacontainer.Provider running the collaborator. The
// recovery is logged and reported to observers.
func (c collaborator) provider(ctx context.Context, dc *datacontainer.DataContainer, preflight bool, missing string) datacontainer.Provider {
	return func() error {
		log := c.parent.Logger()
		log.Info().
			Str("missing", missing).
			Str("provider", c.f.Name()).
			Bool("preflight", preflight).
			Msg("deriving missing prerequisite")
		c.parent.Notify("Running "+c.f.Name()+" to derive "+missing, 0, filter.StatusMessage)

		if preflight {
			return c.f.Preflight(ctx, dc)
		}
		return c.f.Execute(ctx, dc)
	}
}
