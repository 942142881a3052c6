package trainer

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"scratchnet/internal/dataset"
	"scratchnet/internal/metrics"
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Samples      int
	Features     int
	Outputs      int
	Hidden       int
	LearningRate float64
	Iterations   int
	LogEvery     int
	Seed         int64
	Noise        float64
	Coefficients []float64

	// DataPath loads the dataset from CSV instead of generating it.
	DataPath string
	// Optional artifacts written after training.
	ExportData  string
	HistoryPath string
	PlotPath    string

	Progress       bool
	ProgressWriter io.Writer
}

// RunResult is everything a run produced.
type RunResult struct {
	Config   RunConfig
	Data     *dataset.Dataset
	Fit      *Result
	History  *metrics.History
	Duration time.Duration
}

// Run builds or loads the dataset, fits the network and writes the requested
// artifacts.
func Run(cfg RunConfig) (*RunResult, error) {
	if cfg.Iterations < 0 {
		return nil, errors.New("trainer: iterations must be >= 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 10
	}

	data, err := LoadData(cfg)
	if err != nil {
		return nil, err
	}
	klog.Infof("dataset samples=%d features=%d outputs=%d", data.Samples(), data.Features(), data.Outputs())

	if cfg.ExportData != "" {
		if err := writeFile(cfg.ExportData, func(w io.Writer) error { return dataset.WriteCSV(w, data) }); err != nil {
			return nil, err
		}
		klog.Infof("dataset written to %s", cfg.ExportData)
	}

	var bar *progressBar
	if cfg.Progress {
		bar = newProgressBar(cfg.Iterations, cfg.ProgressWriter)
	}

	var window metrics.Window
	history := &metrics.History{}
	started := time.Now()
	fit, err := Fit(data.X, data.Y, Options{
		Hidden:       cfg.Hidden,
		LearningRate: cfg.LearningRate,
		Iterations:   cfg.Iterations,
		// Offset so the weights are not drawn from the same stream as the data.
		Seed:        cfg.Seed + 1,
		ReportEvery: cfg.LogEvery,
		OnStep: func(iter int, loss float64, elapsed time.Duration) {
			window.Record(data.Samples(), elapsed, loss)
			history.Add(iter, loss)
			if bar != nil {
				bar.step(loss)
			}
		},
		Report: func(iter int, loss float64) {
			snap := window.Snapshot()
			klog.Infof("iter=%d loss=%.4f iters_per_sec=%.1f samples_per_sec=%.0f compute_ms=%.3f",
				iter,
				loss,
				snap.ItersPerSec,
				snap.SamplesPerSec,
				snap.AvgComputeMS,
			)
		},
	})
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return nil, errors.WithMessage(err, "fit")
	}
	res := &RunResult{
		Config:   cfg,
		Data:     data,
		Fit:      fit,
		History:  history,
		Duration: time.Since(started),
	}
	if history.NonFinite() || !fit.Params.AllFinite() {
		klog.Warningf("training became non-finite; consider a smaller learning rate than %g", cfg.LearningRate)
	}

	if cfg.HistoryPath != "" {
		if err := writeFile(cfg.HistoryPath, history.WriteJSON); err != nil {
			return nil, err
		}
		klog.V(1).Infof("loss history written to %s", cfg.HistoryPath)
	}
	if cfg.PlotPath != "" {
		err := writeFile(cfg.PlotPath, func(w io.Writer) error {
			return metrics.RenderSVG(w, history, metrics.DefaultPlotOptions)
		})
		if errors.Is(err, metrics.ErrNothingToPlot) {
			klog.Warningf("skipping loss plot: %v", err)
			_ = os.Remove(cfg.PlotPath)
		} else if err != nil {
			return nil, err
		} else {
			klog.V(1).Infof("loss plot written to %s", cfg.PlotPath)
		}
	}
	return res, nil
}

// LoadData reads cfg.DataPath when set and otherwise generates the synthetic
// dataset, then checks it against the configured feature and output counts.
func LoadData(cfg RunConfig) (*dataset.Dataset, error) {
	var (
		data *dataset.Dataset
		err  error
	)
	if cfg.DataPath != "" {
		f, openErr := os.Open(cfg.DataPath)
		if openErr != nil {
			return nil, errors.Wrap(openErr, "open dataset")
		}
		defer f.Close()
		data, err = dataset.ReadCSV(f)
	} else {
		data, err = dataset.Synthetic(dataset.SyntheticOptions{
			Samples:      cfg.Samples,
			Coefficients: cfg.Coefficients,
			Noise:        cfg.Noise,
			Seed:         cfg.Seed,
		})
	}
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if cfg.Features > 0 && data.Features() != cfg.Features {
		return nil, errors.Errorf("dataset has %d features, config expects %d", data.Features(), cfg.Features)
	}
	if cfg.Outputs > 0 && data.Outputs() != cfg.Outputs {
		return nil, errors.Errorf("dataset has %d outputs, config expects %d", data.Outputs(), cfg.Outputs)
	}
	return data, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory for %s", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return write(f)
}
