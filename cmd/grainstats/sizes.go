package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"grainstats/internal/models"
	"grainstats/pkg/config"
	"grainstats/pkg/datacontainer"
	"grainstats/pkg/ensemble"
	"grainstats/pkg/filter"
	"grainstats/pkg/filters"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "Measure objects and report per-phase size statistics",
	Long: "Reads a raw little-endian int32 label volume (and optionally a phase volume of the same " +
		"extent), runs FindBoundingBoxGrains, FindGrainPhases and FindSizes, and prints a YAML report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		dc, err := buildContainer(cfg)
		if err != nil {
			return err
		}
		return runSizes(ctx, cfg, dc, log, cmd.OutOrStdout())
	},
}

func init() {
	f := sizesCmd.Flags()
	f.StringP("labels", "l", "", "Raw int32 label volume")
	f.StringP("phases", "p", "", "Raw int32 phase volume; every object is phase 1 when omitted")
	f.StringSlice("dims", nil, "Volume extent x,y,z")
	f.StringSlice("resolution", nil, "Voxel spacing x,y,z")
	f.Int("num-fields", 0, "Object count including background (0 derives it from the labels)")
	f.Int("num-ensembles", 0, "Phase count including phase 0 (0 derives it from the phases)")
	f.Int("workers", 0, "Goroutines counting voxels")
	f.Float64("cutoff", 0, "Standard deviations kept by the cutoff curves")
	f.Int("samples", 0, "Samples of the log-normal curves")
	f.BoolP("verbose", "v", false, "Include per-object measurements")

	viper.BindPFlag("input.labelsFile", f.Lookup("labels"))
	viper.BindPFlag("input.phasesFile", f.Lookup("phases"))
	viper.BindPFlag("input.dims", f.Lookup("dims"))
	viper.BindPFlag("input.resolution", f.Lookup("resolution"))
	viper.BindPFlag("input.numFields", f.Lookup("num-fields"))
	viper.BindPFlag("input.numEnsembles", f.Lookup("num-ensembles"))
	viper.BindPFlag("processing.numWorkers", f.Lookup("workers"))
	viper.BindPFlag("statistics.cutoff", f.Lookup("cutoff"))
	viper.BindPFlag("statistics.curveSamples", f.Lookup("samples"))
	viper.BindPFlag("output.verbose", f.Lookup("verbose"))
}

// buildContainer loads the configured volumes into a new container.
func buildContainer(cfg *config.Config) (*datacontainer.DataContainer, error) {
	in := cfg.Input
	if in.LabelsFile == "" {
		return nil, fmt.Errorf("no label volume given (--labels or input.labelsFile)")
	}
	g := models.Geometry{
		XPoints:    in.Dims[0],
		YPoints:    in.Dims[1],
		ZPoints:    in.Dims[2],
		Resolution: models.Resolution{X: in.Resolution[0], Y: in.Resolution[1], Z: in.Resolution[2]},
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("input.dims %v: %w", in.Dims, err)
	}

	labels, err := readInt32Volume(in.LabelsFile, g.TotalPoints())
	if err != nil {
		return nil, err
	}

	var phases []int32
	if in.PhasesFile != "" {
		if phases, err = readInt32Volume(in.PhasesFile, g.TotalPoints()); err != nil {
			return nil, err
		}
	} else {
		phases = make([]int32, len(labels))
		for i := range phases {
			phases[i] = 1
		}
	}

	dc := datacontainer.New(g)
	dc.Add(datacontainer.CellData, datacontainer.Int32Array(datacontainer.GrainIds, labels))
	dc.Add(datacontainer.CellData, datacontainer.Int32Array(datacontainer.Phases, phases))
	dc.SetNumFieldTuples(in.NumFields)
	dc.SetNumEnsembleTuples(in.NumEnsembles)
	return dc, nil
}

// logObserver forwards filter notifications to the logger.
func logObserver(log zerolog.Logger) filter.Observer {
	return filter.ObserverFunc(func(m filter.Message) {
		var ev *zerolog.Event
		switch m.Type {
		case filter.WarningMessage:
			ev = log.Warn()
		case filter.ErrorMessage:
			ev = log.Error()
		case filter.UpdateProgressMessage:
			ev = log.Debug().Int("progress", m.Progress)
		default:
			ev = log.Info()
		}
		ev.Str("filter", m.Filter).Msg(m.Text)
	})
}

// runSizes runs the measurement pipeline on dc and writes the report to w.
func runSizes(ctx context.Context, cfg *config.Config, dc *datacontainer.DataContainer, log zerolog.Logger, w io.Writer) error {
	sizes := filters.NewFindSizes()
	sizes.Workers = cfg.Processing.NumWorkers
	sizes.CheckInterval = cfg.Processing.CancelCheckInterval

	p := filter.NewPipeline(filters.NewFindBoundingBoxGrains(), filters.NewFindGrainPhases(), sizes)
	p.SetLogger(log)
	p.AddObserver(logObserver(log))

	if err := p.Preflight(ctx, dc); err != nil {
		return err
	}

	start := time.Now()
	if err := p.Execute(ctx, dc); err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("measurement finished")

	rep, err := buildReport(cfg, dc, log)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return enc.Close()
}

type report struct {
	Dims       [3]int       `yaml:"dims"`
	Resolution [3]float64   `yaml:"resolution"`
	Objects    int          `yaml:"objects"`
	Biased     int          `yaml:"biased"`
	Phases     []phaseStats `yaml:"phases"`

	Measurements []objectReport `yaml:"measurements,omitempty"`
}

type phaseStats struct {
	Phase int `yaml:"phase"`

	models.EnsembleStats `yaml:",inline"`

	LogNormal *curveReport `yaml:"logNormal,omitempty"`
	CutOff    *curveReport `yaml:"cutOff,omitempty"`
}

type curveReport struct {
	X []float64 `yaml:"x,flow"`
	Y []float64 `yaml:"y,flow"`
}

type objectReport struct {
	ID                 int     `yaml:"id"`
	Phase              int32   `yaml:"phase"`
	NumCells           int32   `yaml:"numCells"`
	Volume             float32 `yaml:"volume"`
	EquivalentDiameter float32 `yaml:"equivalentDiameter"`
	Biased             bool    `yaml:"biased"`
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func buildReport(cfg *config.Config, dc *datacontainer.DataContainer, log zerolog.Logger) (*report, error) {
	g := dc.Geometry()
	get := func(scope datacontainer.Scope, name string) (*datacontainer.Array, error) {
		a, ok := dc.Get(scope, name)
		if !ok {
			return nil, fmt.Errorf("%s/%s missing after run", scope, name)
		}
		return a, nil
	}

	stats, err := get(datacontainer.EnsembleData, datacontainer.Statistics)
	if err != nil {
		return nil, err
	}
	biased, err := get(datacontainer.FieldData, datacontainer.BiasedFields)
	if err != nil {
		return nil, err
	}

	rep := &report{
		Dims:       [3]int{g.XPoints, g.YPoints, g.ZPoints},
		Resolution: [3]float64{g.Resolution.X, g.Resolution.Y, g.Resolution.Z},
		Objects:    biased.Len() - 1,
	}
	for _, b := range biased.Bools()[1:] {
		if b {
			rep.Biased++
		}
	}

	for p, s := range stats.Stats() {
		if p == 0 {
			continue
		}
		ps := phaseStats{Phase: p, EnsembleStats: s}
		if !s.Degenerate {
			if c, err := ensemble.LogNormalCurve(s, cfg.Statistics.CurveSamples); err != nil {
				log.Warn().Int("phase", p).Err(err).Msg("log-normal curve omitted from report")
			} else {
				ps.LogNormal = &curveReport{X: c.X, Y: c.Y}
			}
			if c, err := ensemble.CutOffCurve(s, float32(cfg.Statistics.Cutoff), float32(cfg.Statistics.YMax)); err != nil {
				log.Warn().Int("phase", p).Err(err).Msg("cutoff curve omitted from report")
			} else {
				ps.CutOff = &curveReport{X: widen(c.X), Y: widen(c.Y)}
			}
		}
		rep.Phases = append(rep.Phases, ps)
	}

	if cfg.Output.Verbose {
		phases, err := get(datacontainer.FieldData, datacontainer.Phases)
		if err != nil {
			return nil, err
		}
		cells, err := get(datacontainer.FieldData, datacontainer.NumCells)
		if err != nil {
			return nil, err
		}
		vols, err := get(datacontainer.FieldData, datacontainer.Volumes)
		if err != nil {
			return nil, err
		}
		diams, err := get(datacontainer.FieldData, datacontainer.EquivalentDiameters)
		if err != nil {
			return nil, err
		}
		for i := 1; i < cells.Len(); i++ {
			rep.Measurements = append(rep.Measurements, objectReport{
				ID:                 i,
				Phase:              phases.Int32s()[i],
				NumCells:           cells.Int32s()[i],
				Volume:             vols.Float32s()[i],
				EquivalentDiameter: diams.Float32s()[i],
				Biased:             biased.Bools()[i],
			})
		}
	}
	return rep, nil
}
