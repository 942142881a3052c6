package main

import (
	"flag"
	"fmt"

	"k8s.io/klog/v2"

	"scratchnet/internal/config"
	"scratchnet/internal/trainer"
)

func main() {
	klog.InitFlags(nil)
	cfgPath := flag.String("config", "", "Path to YAML config (defaults to the built-in reference run)")
	samples := flag.Int("samples", 0, "Number of synthetic samples")
	hidden := flag.Int("hidden", 0, "Hidden layer width")
	learningRate := flag.Float64("lr", 0, "Learning rate")
	iterations := flag.Int("iterations", 0, "Number of gradient descent iterations")
	seed := flag.Int64("seed", 0, "PRNG seed (0 keeps the configured seed; set seed: 0 in the config file instead)")
	logEvery := flag.Int("log-every", 0, "Log every N iterations")
	noise := flag.Float64("noise", 0, "Standard deviation of the target noise (0 keeps the configured value; set noise: 0 in the config file instead)")
	dataPath := flag.String("data", "", "Load the dataset from this CSV instead of generating it")
	exportData := flag.String("export-data", "", "Write the dataset to this CSV")
	historyPath := flag.String("history", "", "Write the loss history JSON here")
	plotPath := flag.String("plot", "", "Write the loss curve SVG here")
	progress := flag.Bool("progress", false, "Show a progress bar")
	gradCheck := flag.Bool("gradcheck", false, "Compare analytic and numerical gradients before training")

	// Zero-valued flags are treated as unset and never override the config.
	flag.Parse()
	defer klog.Flush()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			klog.Exitf("failed to load config: %v", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		Samples:      *samples,
		Hidden:       *hidden,
		LearningRate: *learningRate,
		Iterations:   *iterations,
		Seed:         *seed,
		LogEvery:     *logEvery,
		Noise:        *noise,
		DataPath:     *dataPath,
		ExportData:   *exportData,
		HistoryPath:  *historyPath,
		PlotPath:     *plotPath,
		Progress:     *progress,
	})

	if err := cfg.Validate(); err != nil {
		klog.Exitf("invalid config: %v", err)
	}

	runCfg := trainer.RunConfig{
		Samples:      cfg.Samples,
		Features:     cfg.Features,
		Outputs:      cfg.Outputs,
		Hidden:       cfg.Hidden,
		LearningRate: cfg.LearningRate,
		Iterations:   cfg.Iterations,
		LogEvery:     cfg.LogEvery,
		Seed:         cfg.Seed,
		Noise:        cfg.Noise,
		Coefficients: cfg.Coefficients,
		DataPath:     cfg.DataPath,
		ExportData:   cfg.ExportData,
		HistoryPath:  cfg.HistoryPath,
		PlotPath:     cfg.PlotPath,
		Progress:     cfg.Progress,
	}

	if *gradCheck {
		if _, err := trainer.CheckGradients(runCfg, 8); err != nil {
			klog.Exitf("gradient check failed: %v", err)
		}
	}

	res, err := trainer.Run(runCfg)
	if err != nil {
		klog.Exitf("training failed: %v", err)
	}
	fmt.Println(trainer.Summary(res))
}
