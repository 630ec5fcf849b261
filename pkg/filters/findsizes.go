package filters

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"grainstats/internal/models"
	"grainstats/pkg/datacontainer"
	"grainstats/pkg/ensemble"
	"grainstats/pkg/filter"
	"grainstats/pkg/measurement"
)

// FindSizes measures every object of a labeled field and aggregates the
// equivalent diameters into per-phase size statistics.
//
// Inputs are the cell GrainIds array and the field Phases and BiasedFields
// arrays. The two field arrays are derived by FindGrainPhases and
// FindBoundingBoxGrains when the container does not hold them. Outputs are
// the field Volumes, EquivalentDiameters and NumCells arrays and the
// ensemble Statistics array, published together once both stages succeed.
type FindSizes struct {
	filter.Base

	// Workers is the number of goroutines counting voxels. Values below one
	// mean one.
	Workers int

	// CheckInterval is the number of objects aggregated between
	// cancellation checks. Zero selects ensemble.DefaultCheckInterval.
	CheckInterval int

	findPhases *FindGrainPhases
	findBiased *FindBoundingBoxGrains
}

// NewFindSizes creates an idle FindSizes filter counting with one worker.
func NewFindSizes() *FindSizes {
	return &FindSizes{
		Base:       filter.NewBase("FindSizes"),
		Workers:    1,
		findPhases: NewFindGrainPhases(),
		findBiased: NewFindBoundingBoxGrains(),
	}
}

// SetObservers registers observers with the filter and its collaborators.
func (f *FindSizes) SetObservers(observers []filter.Observer) {
	f.Base.SetObservers(observers)
	f.findPhases.SetObservers(observers)
	f.findBiased.SetObservers(observers)
}

// SetLogger hands log to the filter and its collaborators.
func (f *FindSizes) SetLogger(log zerolog.Logger) {
	f.Base.SetLogger(log)
	f.findPhases.SetLogger(log)
	f.findBiased.SetLogger(log)
}

type findSizesInputs struct {
	field        models.VoxelField
	phases       []int32
	biased       []bool
	numFields    int
	numEnsembles int
}

// dataCheck resolves every input, deriving the missing field arrays through
// the collaborators. It stops at the first failure.
func (f *FindSizes) dataCheck(ctx context.Context, dc *datacontainer.DataContainer, preflight bool) (*findSizesInputs, error) {
	if dc == nil {
		return nil, f.Fail(filter.CodeNilDataContainer, errNilContainer)
	}
	if err := checkGeometry(dc); err != nil {
		return nil, f.Fail(filter.CodeInvalidGeometry, err)
	}

	ids, err := dc.ResolveInput(datacontainer.CellData, datacontainer.GrainIds, datacontainer.KindInt32, dc.TotalPoints(), nil)
	if err != nil {
		return nil, f.Fail(filter.CodeMissingGrainIds, err)
	}
	numFields := tupleCount(dc.NumFieldTuples(), ids.Int32s())

	biasedProvider := collaborator{parent: &f.Base, f: f.findBiased}.provider(ctx, dc, preflight, datacontainer.BiasedFields)
	biased, err := dc.ResolveInput(datacontainer.FieldData, datacontainer.BiasedFields, datacontainer.KindBool, numFields, biasedProvider)
	if err != nil {
		return nil, f.Abort(filter.CodeMissingBiasedFields, err)
	}

	phasesProvider := collaborator{parent: &f.Base, f: f.findPhases}.provider(ctx, dc, preflight, datacontainer.Phases)
	phases, err := dc.ResolveInput(datacontainer.FieldData, datacontainer.Phases, datacontainer.KindInt32, numFields, phasesProvider)
	if err != nil {
		return nil, f.Abort(filter.CodeMissingPhases, err)
	}

	return &findSizesInputs{
		field:        models.VoxelField{Labels: ids.Int32s(), Geometry: dc.Geometry()},
		phases:       phases.Int32s(),
		biased:       biased.Bools(),
		numFields:    numFields,
		numEnsembles: tupleCount(dc.NumEnsembleTuples(), phases.Int32s()),
	}, nil
}

// Preflight checks the inputs can be resolved and publishes empty outputs
// into a placeholder of dc.
func (f *FindSizes) Preflight(ctx context.Context, dc *datacontainer.DataContainer) error {
	f.Begin(filter.Preflighting)
	if dc != nil {
		dc = dc.Placeholder()
	}
	in, err := f.dataCheck(ctx, dc, true)
	if err != nil {
		return err
	}

	dc.Publish(datacontainer.FieldData,
		dc.AllocateOutput(datacontainer.Volumes, datacontainer.KindFloat32, in.numFields),
		dc.AllocateOutput(datacontainer.EquivalentDiameters, datacontainer.KindFloat32, in.numFields),
		dc.AllocateOutput(datacontainer.NumCells, datacontainer.KindInt32, in.numFields),
	)
	dc.Publish(datacontainer.EnsembleData, statisticsOutput(dc, in.numEnsembles, nil))
	f.Complete()
	return nil
}

// Execute measures the objects of dc and publishes the results.
func (f *FindSizes) Execute(ctx context.Context, dc *datacontainer.DataContainer) error {
	f.Begin(filter.Executing)
	in, err := f.dataCheck(ctx, dc, false)
	if err != nil {
		return err
	}
	log := f.Logger()

	lastPct := -1
	opts := measurement.Options{
		Workers: f.Workers,
		Progress: func(completed, total int) {
			// counting is the first half of the work
			pct := completed * 50 / total
			if pct != lastPct {
				lastPct = pct
				f.Notify(fmt.Sprintf("Counting voxels %d/%d", completed, total), pct, filter.UpdateProgressMessage)
			}
		},
	}
	m, err := measurement.Measure(ctx, in.field, in.numFields, opts)
	if err != nil {
		return f.Abort(codeFor(err, filter.CodeLabelOutOfRange), err)
	}
	log.Debug().Int("objects", in.numFields-1).Msg("objects measured")

	f.Notify("Aggregating ensemble statistics", 50, filter.UpdateProgressMessage)
	res, err := ensemble.Aggregate(ctx, ensemble.Input{
		Diameters:     m.EquivalentDiameters,
		Phases:        in.phases,
		Biased:        in.biased,
		NumEnsembles:  in.numEnsembles,
		CheckInterval: f.CheckInterval,
	})
	if err != nil {
		return f.Abort(codeFor(err, filter.CodePhaseOutOfRange), err)
	}

	for _, p := range res.Degenerate {
		log.Warn().Int("phase", p).Msg("no unbiased objects, size statistics undefined")
		f.Notify(fmt.Sprintf("Phase %d has no unbiased objects", p), 100, filter.WarningMessage)
	}

	dc.Publish(datacontainer.FieldData,
		datacontainer.Float32Array(datacontainer.Volumes, m.Volumes),
		datacontainer.Float32Array(datacontainer.EquivalentDiameters, m.EquivalentDiameters),
		datacontainer.Int32Array(datacontainer.NumCells, m.NumCells),
	)
	dc.Publish(datacontainer.EnsembleData, statisticsOutput(dc, in.numEnsembles, res.Stats))

	f.Notify("FindSizes Completed", 100, filter.StatusMessage)
	f.Complete()
	return nil
}

// statisticsOutput builds the Statistics array to publish. Entries of an
// existing array are kept except for phases 1..numEnsembles-1, which are
// replaced by stats.
func statisticsOutput(dc *datacontainer.DataContainer, numEnsembles int, stats []models.EnsembleStats) *datacontainer.Array {
	n := numEnsembles
	var prev []models.EnsembleStats
	if a, ok := dc.Get(datacontainer.EnsembleData, datacontainer.Statistics); ok && a.Kind() == datacontainer.KindStats {
		prev = a.Stats()
		n = max(n, len(prev))
	}

	out := dc.AllocateOutput(datacontainer.Statistics, datacontainer.KindStats, n)
	values := out.Stats()
	for i, s := range prev {
		values[i] = s.Clone()
	}
	for p := 1; p < len(stats); p++ {
		values[p] = stats[p]
	}
	return out
}
