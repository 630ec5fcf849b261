package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"grainstats/internal/logging"
	"grainstats/pkg/config"
)

// framedSlice is a 6x6 slice: object 3 fills the border, object 1 the inner
// column x=1 and object 2 the inner columns x=2..4.
func framedSlice() []int32 {
	labels := make([]int32, 36)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			var id int32 = 3
			if x >= 1 && x <= 4 && y >= 1 && y <= 4 {
				id = 2
				if x == 1 {
					id = 1
				}
			}
			labels[y*6+x] = id
		}
	}
	return labels
}

func TestRunSizesReport(t *testing.T) {
	dir := t.TempDir()
	labelsPath := filepath.Join(dir, "labels.raw")
	require.NoError(t, writeInt32Volume(labelsPath, framedSlice()))

	cfg := config.DefaultConfig()
	cfg.Processing.NumWorkers = 2
	cfg.Input.LabelsFile = labelsPath
	cfg.Input.Dims = [3]int{6, 6, 1}
	cfg.Output.Verbose = true

	dc, err := buildContainer(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runSizes(context.Background(), cfg, dc, zerolog.Nop(), &out))

	var rep report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, 3, rep.Objects)
	assert.Equal(t, 1, rep.Biased)
	require.Len(t, rep.Phases, 1)

	p := rep.Phases[0]
	assert.Equal(t, 1, p.Phase)
	assert.Equal(t, 2, p.UnbiasedCount)
	assert.Len(t, p.BinNumbers, 10)
	require.NotNil(t, p.LogNormal)
	assert.Len(t, p.LogNormal.X, cfg.Statistics.CurveSamples)
	require.NotNil(t, p.CutOff)
	assert.Len(t, p.CutOff.Y, 2)

	require.Len(t, rep.Measurements, 3)
	assert.Equal(t, int32(4), rep.Measurements[0].NumCells)
	assert.Equal(t, int32(12), rep.Measurements[1].NumCells)
	assert.Equal(t, int32(20), rep.Measurements[2].NumCells)
	assert.True(t, rep.Measurements[2].Biased)
}

// TestRunSizesReportsOmittedCurves logs why a phase with a single unbiased
// object has no curves
func TestRunSizesReportsOmittedCurves(t *testing.T) {
	// object 1 fills the inner 4x4 block, object 2 the border
	labels := make([]int32, 36)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			labels[y*6+x] = 2
			if x >= 1 && x <= 4 && y >= 1 && y <= 4 {
				labels[y*6+x] = 1
			}
		}
	}
	path := filepath.Join(t.TempDir(), "labels.raw")
	require.NoError(t, writeInt32Volume(path, labels))

	cfg := config.DefaultConfig()
	cfg.Input.LabelsFile = path
	cfg.Input.Dims = [3]int{6, 6, 1}
	dc, err := buildContainer(cfg)
	require.NoError(t, err)

	var logs, out bytes.Buffer
	log := logging.New(&logs, zerolog.WarnLevel)
	require.NoError(t, runSizes(context.Background(), cfg, dc, log, &out))

	var rep report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rep))
	require.Len(t, rep.Phases, 1)
	assert.Equal(t, 1, rep.Phases[0].UnbiasedCount)
	assert.Nil(t, rep.Phases[0].LogNormal)
	assert.Nil(t, rep.Phases[0].CutOff)

	assert.Contains(t, logs.String(), "log-normal curve omitted from report")
	assert.Contains(t, logs.String(), "cutoff curve omitted from report")
}

func TestBuildContainerErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := buildContainer(cfg)
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "labels.raw")
	require.NoError(t, writeInt32Volume(path, []int32{1, 2, 3}))

	cfg.Input.LabelsFile = path
	cfg.Input.Dims = [3]int{2, 2, 0}
	_, err = buildContainer(cfg)
	assert.Error(t, err)

	cfg.Input.Dims = [3]int{2, 2, 1}
	_, err = buildContainer(cfg)
	assert.ErrorContains(t, err, "want 16")
}

func TestReadInt32VolumeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.raw")
	want := []int32{0, -1, 7, 1 << 30}
	require.NoError(t, writeInt32Volume(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(16), info.Size())

	got, err := readInt32Volume(path, 4)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseTriple(t *testing.T) {
	dims, err := parseTriple([]string{"10,20", "30"}, strconv.Atoi)
	require.NoError(t, err)
	assert.Equal(t, [3]int{10, 20, 30}, dims)

	_, err = parseTriple([]string{"1,2"}, strconv.Atoi)
	assert.Error(t, err)
	_, err = parseTriple([]string{"1,x,3"}, strconv.Atoi)
	assert.Error(t, err)
}
