// Package config provides configuration loading and management for grainstats.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers is how many goroutines share the voxel counting pass
		NumWorkers int `yaml:"numWorkers"`

		// CancelCheckInterval is how many objects the aggregator processes
		// between cancellation checks
		CancelCheckInterval int `yaml:"cancelCheckInterval"`
	} `yaml:"processing"`

	// Input describes the raw label volume read by the CLI
	Input struct {
		// LabelsFile is a raw little-endian int32 volume, one label per voxel
		LabelsFile string `yaml:"labelsFile"`

		// PhasesFile is an optional raw little-endian int32 volume holding the
		// phase of every voxel
		PhasesFile string `yaml:"phasesFile"`

		// Dims is the voxel extent as [x, y, z]
		Dims [3]int `yaml:"dims"`

		// Resolution is the voxel spacing as [x, y, z]
		Resolution [3]float64 `yaml:"resolution"`

		// NumFields is the object count including background. Zero derives it
		// from the largest label.
		NumFields int `yaml:"numFields"`

		// NumEnsembles is the phase count including phase 0. Zero derives it
		// from the largest phase id.
		NumEnsembles int `yaml:"numEnsembles"`
	} `yaml:"input"`

	// Statistics controls the curves derived from measured ensembles
	Statistics struct {
		// Cutoff is the number of standard deviations kept by cutoff curves
		Cutoff float64 `yaml:"cutoff"`

		// CurveSamples is the sample count of log-normal preview curves
		CurveSamples int `yaml:"curveSamples"`

		// YMax is the upper bound of cutoff curves
		YMax float64 `yaml:"yMax"`
	} `yaml:"statistics"`

	// Output parameters
	Output struct {
		// LogLevel is one of debug, info, warn, error, quiet
		LogLevel string `yaml:"logLevel"`

		// Verbose adds the full per-object arrays to the report
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumWorkers = runtime.NumCPU()
	cfg.Processing.CancelCheckInterval = 4096

	cfg.Input.Resolution = [3]float64{1, 1, 1}

	cfg.Statistics.Cutoff = 5
	cfg.Statistics.CurveSamples = 50
	cfg.Statistics.YMax = 1

	cfg.Output.LogLevel = "info"
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Processing.NumWorkers < 1 {
		return fmt.Errorf("processing.numWorkers must be at least 1, got %d", c.Processing.NumWorkers)
	}
	if c.Processing.CancelCheckInterval < 1 {
		return fmt.Errorf("processing.cancelCheckInterval must be at least 1, got %d", c.Processing.CancelCheckInterval)
	}
	if c.Statistics.Cutoff <= 0 {
		return fmt.Errorf("statistics.cutoff must be positive, got %g", c.Statistics.Cutoff)
	}
	if c.Statistics.CurveSamples < 1 {
		return fmt.Errorf("statistics.curveSamples must be at least 1, got %d", c.Statistics.CurveSamples)
	}
	for i, r := range c.Input.Resolution {
		if r <= 0 {
			return fmt.Errorf("input.resolution[%d] must be positive, got %g", i, r)
		}
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
