package filters

import (
	"context"
	"fmt"

	"grainstats/internal/models"
	"grainstats/pkg/datacontainer"
	"grainstats/pkg/filter"
	"grainstats/pkg/measurement"
	"grainstats/pkg/volume"
)

// FindBoundingBoxGrains flags objects cut by the edge of the sampled field.
// An object is biased when any of its voxels lies on an outer x or y face,
// or on an outer z face of a 3D field. The size of such an object is
// unknown, so it is left out of the ensemble statistics.
type FindBoundingBoxGrains struct {
	filter.Base
}

// NewFindBoundingBoxGrains creates an idle FindBoundingBoxGrains filter.
func NewFindBoundingBoxGrains() *FindBoundingBoxGrains {
	return &FindBoundingBoxGrains{Base: filter.NewBase("FindBoundingBoxGrains")}
}

type boundingBoxInputs struct {
	field     models.VoxelField
	is3D      bool
	numFields int
}

func (f *FindBoundingBoxGrains) dataCheck(dc *datacontainer.DataContainer) (*boundingBoxInputs, error) {
	if dc == nil {
		return nil, f.Fail(filter.CodeNilDataContainer, errNilContainer)
	}
	if err := checkGeometry(dc); err != nil {
		return nil, f.Fail(filter.CodeInvalidGeometry, err)
	}

	ids, err := dc.ResolveInput(datacontainer.CellData, datacontainer.GrainIds, datacontainer.KindInt32, dc.TotalPoints(), nil)
	if err != nil {
		return nil, f.Fail(filter.CodeMissingCellGrainIds, err)
	}

	return &boundingBoxInputs{
		field:     models.VoxelField{Labels: ids.Int32s(), Geometry: dc.Geometry()},
		is3D:      !dc.SourceGeometry().Is2D(),
		numFields: tupleCount(dc.NumFieldTuples(), ids.Int32s()),
	}, nil
}

func (f *FindBoundingBoxGrains) Preflight(ctx context.Context, dc *datacontainer.DataContainer) error {
	f.Begin(filter.Preflighting)
	if dc != nil {
		dc = dc.Placeholder()
	}
	in, err := f.dataCheck(dc)
	if err != nil {
		return err
	}
	dc.Publish(datacontainer.FieldData, dc.AllocateOutput(datacontainer.BiasedFields, datacontainer.KindBool, in.numFields))
	f.Complete()
	return nil
}

func (f *FindBoundingBoxGrains) Execute(ctx context.Context, dc *datacontainer.DataContainer) error {
	f.Begin(filter.Executing)
	in, err := f.dataCheck(dc)
	if err != nil {
		return err
	}

	faces, err := volume.NewSlicer(in.field).Faces(in.is3D)
	if err != nil {
		return f.Fail(filter.CodeInvalidGeometry, err)
	}

	out := dc.AllocateOutput(datacontainer.BiasedFields, datacontainer.KindBool, in.numFields)
	biased := out.Bools()
	for n, face := range faces {
		if err := ctx.Err(); err != nil {
			return f.Cancel(err)
		}
		for i, id := range face {
			if id < 0 || int(id) >= in.numFields {
				return f.Fail(filter.CodeLabelOutOfRange, fmt.Errorf("face %d: %w", n,
					&measurement.LabelRangeError{Index: i, Label: id, NumFields: in.numFields}))
			}
			if id > 0 {
				biased[id] = true
			}
		}
	}

	dc.Publish(datacontainer.FieldData, out)
	f.Notify("FindBoundingBoxGrains Completed", 100, filter.StatusMessage)
	f.Complete()
	return nil
}
