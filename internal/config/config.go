package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Samples      int       `yaml:"samples"`
	Features     int       `yaml:"features"`
	Outputs      int       `yaml:"outputs"`
	Hidden       int       `yaml:"hidden"`
	LearningRate float64   `yaml:"learning_rate"`
	Iterations   int       `yaml:"iterations"`
	Seed         int64     `yaml:"seed"`
	LogEvery     int       `yaml:"log_every"`
	Noise        float64   `yaml:"noise"`
	Coefficients []float64 `yaml:"coefficients"`
	DataPath     string    `yaml:"data_path"`
	ExportData   string    `yaml:"export_data"`
	HistoryPath  string    `yaml:"history_path"`
	PlotPath     string    `yaml:"plot_path"`
	Progress     bool      `yaml:"progress"`
}

// Overrides captures CLI supplied values. Zero values leave the config as is.
type Overrides struct {
	Samples      int
	Hidden       int
	LearningRate float64
	Iterations   int
	Seed         int64
	LogEvery     int
	Noise        float64
	DataPath     string
	ExportData   string
	HistoryPath  string
	PlotPath     string
	Progress     bool
}

// Default returns the reference run: 100 samples of 3 features regressed with
// a 32-unit hidden layer for 200 iterations at a 1e-4 learning rate.
func Default() *Config {
	return &Config{
		Samples:      100,
		Features:     3,
		Outputs:      1,
		Hidden:       32,
		LearningRate: 1e-4,
		Iterations:   200,
		Seed:         1,
		LogEvery:     10,
		Noise:        1,
		Coefficients: []float64{0.2, -1.3, -0.5},
	}
}

// Load reads a YAML file over Default() and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, errors.WithMessage(err, "parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML from r over Default(). Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Samples > 0 {
		c.Samples = o.Samples
	}
	if o.Hidden > 0 {
		c.Hidden = o.Hidden
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Iterations > 0 {
		c.Iterations = o.Iterations
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Noise > 0 {
		c.Noise = o.Noise
	}
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.ExportData != "" {
		c.ExportData = o.ExportData
	}
	if o.HistoryPath != "" {
		c.HistoryPath = o.HistoryPath
	}
	if o.PlotPath != "" {
		c.PlotPath = o.PlotPath
	}
	if o.Progress {
		c.Progress = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Hidden <= 0 {
		return errors.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Iterations <= 0 {
		return errors.Errorf("iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.Features < 0 || c.Outputs < 0 {
		return errors.Errorf("features and outputs must be >= 0 (got %d, %d)", c.Features, c.Outputs)
	}
	if c.DataPath == "" {
		if c.Samples <= 0 {
			return errors.Errorf("samples must be > 0 (got %d)", c.Samples)
		}
		if c.Noise < 0 {
			return errors.Errorf("noise must be >= 0 (got %g)", c.Noise)
		}
		if len(c.Coefficients) == 0 {
			return errors.New("coefficients are required to generate data")
		}
		if c.Features != 0 && c.Features != len(c.Coefficients) {
			return errors.Errorf("features=%d but %d coefficients given", c.Features, len(c.Coefficients))
		}
		if c.Outputs > 1 {
			return errors.Errorf("generated data has a single output (outputs=%d)", c.Outputs)
		}
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 10
	}
	return nil
}
