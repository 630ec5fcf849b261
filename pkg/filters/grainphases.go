package filters

import (
	"context"

	"grainstats/pkg/datacontainer"
	"grainstats/pkg/filter"
	"grainstats/pkg/measurement"
)

// FindGrainPhases assigns each object the phase of its voxels. The field
// Phases array is built from the cell Phases and GrainIds arrays; when an
// object's voxels disagree, the last voxel visited wins.
type FindGrainPhases struct {
	filter.Base
}

// NewFindGrainPhases creates an idle FindGrainPhases filter.
func NewFindGrainPhases() *FindGrainPhases {
	return &FindGrainPhases{Base: filter.NewBase("FindGrainPhases")}
}

type grainPhasesInputs struct {
	ids       []int32
	phases    []int32
	numFields int
}

func (f *FindGrainPhases) dataCheck(dc *datacontainer.DataContainer) (*grainPhasesInputs, error) {
	if dc == nil {
		return nil, f.Fail(filter.CodeNilDataContainer, errNilContainer)
	}
	if err := checkGeometry(dc); err != nil {
		return nil, f.Fail(filter.CodeInvalidGeometry, err)
	}

	total := dc.TotalPoints()
	ids, err := dc.ResolveInput(datacontainer.CellData, datacontainer.GrainIds, datacontainer.KindInt32, total, nil)
	if err != nil {
		return nil, f.Fail(filter.CodeMissingCellGrainIds, err)
	}
	phases, err := dc.ResolveInput(datacontainer.CellData, datacontainer.Phases, datacontainer.KindInt32, total, nil)
	if err != nil {
		return nil, f.Fail(filter.CodeMissingCellPhases, err)
	}

	return &grainPhasesInputs{
		ids:       ids.Int32s(),
		phases:    phases.Int32s(),
		numFields: tupleCount(dc.NumFieldTuples(), ids.Int32s()),
	}, nil
}

func (f *FindGrainPhases) Preflight(ctx context.Context, dc *datacontainer.DataContainer) error {
	f.Begin(filter.Preflighting)
	if dc != nil {
		dc = dc.Placeholder()
	}
	in, err := f.dataCheck(dc)
	if err != nil {
		return err
	}
	dc.Publish(datacontainer.FieldData, dc.AllocateOutput(datacontainer.Phases, datacontainer.KindInt32, in.numFields))
	f.Complete()
	return nil
}

func (f *FindGrainPhases) Execute(ctx context.Context, dc *datacontainer.DataContainer) error {
	f.Begin(filter.Executing)
	in, err := f.dataCheck(dc)
	if err != nil {
		return err
	}

	out := dc.AllocateOutput(datacontainer.Phases, datacontainer.KindInt32, in.numFields)
	fieldPhases := out.Int32s()
	slicePoints := dc.Geometry().SlicePoints()

	for i, id := range in.ids {
		if err := sliceCancelled(ctx, i, slicePoints); err != nil {
			return f.Cancel(err)
		}
		if id < 0 || int(id) >= in.numFields {
			return f.Fail(filter.CodeLabelOutOfRange,
				&measurement.LabelRangeError{Index: i, Label: id, NumFields: in.numFields})
		}
		fieldPhases[id] = in.phases[i]
	}
	if err := ctx.Err(); err != nil {
		return f.Cancel(err)
	}

	dc.Publish(datacontainer.FieldData, out)
	f.Notify("FindGrainPhases Completed", 100, filter.StatusMessage)
	f.Complete()
	return nil
}
