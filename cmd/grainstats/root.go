package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"grainstats/internal/logging"
	"grainstats/pkg/config"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grainstats",
	Short: "Size statistics of segmented voxel microstructures",
	Long: "grainstats measures every labeled object of a voxel volume, aggregates the equivalent " +
		"diameters into per-phase log-normal size statistics and samples parametric size distributions.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "grainstats.yaml", "YAML config file (missing file means defaults)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error|quiet (overrides output.logLevel)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("output.logLevel", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(sizesCmd, distCmd, configCmd)
}

// initConfig enables environment overrides: GRAINSTATS_PROCESSING_NUMWORKERS
// sets processing.numWorkers and so on.
func initConfig() {
	viper.SetEnvPrefix("GRAINSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the YAML config and applies flag and environment
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetString("config"))
	if err != nil {
		return nil, err
	}

	if viper.IsSet("processing.numWorkers") {
		cfg.Processing.NumWorkers = viper.GetInt("processing.numWorkers")
	}
	if viper.IsSet("processing.cancelCheckInterval") {
		cfg.Processing.CancelCheckInterval = viper.GetInt("processing.cancelCheckInterval")
	}
	if viper.IsSet("input.labelsFile") {
		cfg.Input.LabelsFile = viper.GetString("input.labelsFile")
	}
	if viper.IsSet("input.phasesFile") {
		cfg.Input.PhasesFile = viper.GetString("input.phasesFile")
	}
	if viper.IsSet("input.dims") {
		dims, err := parseTriple(viper.GetStringSlice("input.dims"), strconv.Atoi)
		if err != nil {
			return nil, fmt.Errorf("input.dims: %w", err)
		}
		cfg.Input.Dims = dims
	}
	if viper.IsSet("input.resolution") {
		res, err := parseTriple(viper.GetStringSlice("input.resolution"), func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err != nil {
			return nil, fmt.Errorf("input.resolution: %w", err)
		}
		cfg.Input.Resolution = res
	}
	if viper.IsSet("input.numFields") {
		cfg.Input.NumFields = viper.GetInt("input.numFields")
	}
	if viper.IsSet("input.numEnsembles") {
		cfg.Input.NumEnsembles = viper.GetInt("input.numEnsembles")
	}
	if viper.IsSet("statistics.cutoff") {
		cfg.Statistics.Cutoff = viper.GetFloat64("statistics.cutoff")
	}
	if viper.IsSet("statistics.curveSamples") {
		cfg.Statistics.CurveSamples = viper.GetInt("statistics.curveSamples")
	}
	if viper.IsSet("statistics.yMax") {
		cfg.Statistics.YMax = viper.GetFloat64("statistics.yMax")
	}
	if viper.IsSet("output.logLevel") {
		cfg.Output.LogLevel = viper.GetString("output.logLevel")
	}
	if viper.IsSet("output.verbose") {
		cfg.Output.Verbose = viper.GetBool("output.verbose")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the console logger for the configured level.
func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Output.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	return logging.NewConsole(level), nil
}

// parseTriple parses three values given either as separate items or as one
// comma separated item.
func parseTriple[T any](items []string, parse func(string) (T, error)) ([3]T, error) {
	var out [3]T
	var parts []string
	for _, item := range items {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) != 3 {
		return out, fmt.Errorf("want 3 values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := parse(p)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
