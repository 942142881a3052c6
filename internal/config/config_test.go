package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := "# reference scenario, longer\n" +
		"iterations: 500\n" +
		"learning_rate: 5e-5\n" +
		"coefficients: [1, 2, 3, 4]\n" +
		"features: 4\n" +
		"plot_path: out/loss.svg\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Iterations)
	assert.Equal(t, 5e-5, cfg.LearningRate)
	assert.Equal(t, []float64{1, 2, 3, 4}, cfg.Coefficients)
	assert.Equal(t, "out/loss.svg", cfg.PlotPath)
	// Untouched keys keep their defaults.
	assert.Equal(t, 32, cfg.Hidden)
	assert.Equal(t, 100, cfg.Samples)
	assert.Equal(t, 10, cfg.LogEvery)
}

func TestParseEmptyIsDefault(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestParseRejectsUnknownKey(t *testing.T) {
	_, err := Parse(strings.NewReader("batch_size: 4\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{Hidden: 64, Seed: 7, PlotPath: "loss.svg", Progress: true})
	assert.Equal(t, 64, cfg.Hidden)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "loss.svg", cfg.PlotPath)
	assert.True(t, cfg.Progress)
	assert.Equal(t, 200, cfg.Iterations, "zero override must not clobber")
	assert.Equal(t, 1e-4, cfg.LearningRate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero hidden", func(c *Config) { c.Hidden = 0 }, false},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }, false},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }, false},
		{"negative noise", func(c *Config) { c.Noise = -1 }, false},
		{"coefficient count", func(c *Config) { c.Features = 5 }, false},
		{"multi output synthetic", func(c *Config) { c.Outputs = 2 }, false},
		{"no coefficients", func(c *Config) { c.Coefficients = nil }, false},
		{"csv ignores synthetic knobs", func(c *Config) {
			c.DataPath = "train.csv"
			c.Samples = 0
			c.Outputs = 2
			c.Features = 7
		}, true},
		{"log every defaults", func(c *Config) { c.LogEvery = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				assert.Positive(t, cfg.LogEvery)
			} else {
				assert.Error(t, err)
			}
		})
	}
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestZeroSeedAndNoiseComeFromFileNotOverrides(t *testing.T) {
	cfg, err := Parse(strings.NewReader("seed: 0\nnoise: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 0.0, cfg.Noise)
	require.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.ApplyOverrides(Overrides{Seed: 0, Noise: 0})
	assert.Equal(t, int64(1), cfg.Seed, "a zero override is unset")
	assert.Equal(t, 1.0, cfg.Noise)
}
