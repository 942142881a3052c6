package trainer

import (
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"scratchnet/internal/gradcheck"
	"scratchnet/internal/model"
)

// MaxGradientError is the largest relative gap CheckGradients accepts between
// analytic and central-difference gradients.
const MaxGradientError = 1e-4

// CheckGradients compares analytic and numerical gradients on the first rows
// of the dataset cfg describes, using the weights Run would start from.
func CheckGradients(cfg RunConfig, rows int) ([]gradcheck.Report, error) {
	data, err := LoadData(cfg)
	if err != nil {
		return nil, err
	}
	data = data.Head(rows)
	net, err := model.NewTwoLayer(data.Features(), cfg.Hidden, data.Outputs(), cfg.LearningRate, rand.New(rand.NewSource(cfg.Seed+1)))
	if err != nil {
		return nil, err
	}
	reports, err := gradcheck.Check(net.Params(), data.X, data.Y, gradcheck.Options{})
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		klog.Infof("gradcheck param=%s rows=%d max_abs=%.3e max_rel=%.3e", r.Name, data.Samples(), r.MaxAbsError, r.MaxRelError)
	}
	if worst := gradcheck.MaxRelError(reports); worst > MaxGradientError {
		return reports, errors.Errorf("max relative error %.3e exceeds %g", worst, MaxGradientError)
	}
	return reports, nil
}
