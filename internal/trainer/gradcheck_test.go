package trainer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratchnet/internal/dataset"
)

func writeDatasetCSV(t *testing.T, d *dataset.Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dataset.WriteCSV(f, d))
	require.NoError(t, f.Close())
	return path
}

func TestCheckGradientsSynthetic(t *testing.T) {
	reports, err := CheckGradients(demoRunConfig(), 8)
	require.NoError(t, err)
	require.Len(t, reports, 4)
	for _, r := range reports {
		assert.Less(t, r.MaxRelError, MaxGradientError, r.Name)
	}
}

func TestCheckGradientsUsesLoadedDataset(t *testing.T) {
	d := must.M1(dataset.Synthetic(dataset.SyntheticOptions{Samples: 20, Coefficients: []float64{1, -2}, Noise: 0.1, Seed: 5}))
	cfg := demoRunConfig()
	cfg.DataPath = writeDatasetCSV(t, d)
	// Generating with zero samples fails, so success means the CSV was used.
	cfg.Samples = 0
	cfg.Features = 0

	reports, err := CheckGradients(cfg, 5)
	require.NoError(t, err)
	assert.Len(t, reports, 4)

	cfg.Features = 3
	_, err = CheckGradients(cfg, 5)
	assert.Error(t, err, "a 2-feature csv must not pass a 3-feature config")
}
