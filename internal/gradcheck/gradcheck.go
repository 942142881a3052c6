// Package gradcheck verifies the hand-derived gradients of the two-layer
// network against central finite differences of its loss.
package gradcheck

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"

	"scratchnet/internal/matrix"
	"scratchnet/internal/model"
)

// Report holds the largest discrepancies found for one parameter.
type Report struct {
	Name        string
	MaxAbsError float64
	MaxRelError float64
}

// Options controls Check. A zero Step uses fd's default.
type Options struct {
	Step float64
}

// Check compares the analytic gradients of params at (x, y) with numerical
// ones, returning one report per parameter in W1, B1, W2, B2 order.
func Check(params *model.Params, x, y *matrix.Dense, opts Options) ([]Report, error) {
	// The learning rate is never used: no update is taken.
	net, err := model.FromParams(params, 1)
	if err != nil {
		return nil, err
	}
	act, err := net.Forward(x)
	if err != nil {
		return nil, err
	}
	grads, err := net.Backward(x, y, act)
	if err != nil {
		return nil, err
	}

	base := params.Clone()
	targets := []struct {
		name     string
		param    *matrix.Dense
		analytic *matrix.Dense
	}{
		{"W1", base.W1, grads.W1},
		{"B1", base.B1, grads.B1},
		{"W2", base.W2, grads.W2},
		{"B2", base.B2, grads.B2},
	}

	reports := make([]Report, 0, len(targets))
	for _, target := range targets {
		rows, cols := target.param.Dims()
		theta := target.param.RawData()
		var evalErr error
		loss := func(v []float64) float64 {
			saved := target.param.RawData()
			setAll(target.param, v)
			defer setAll(target.param, saved)
			net, err := model.FromParams(base, 1)
			if err != nil {
				evalErr = err
				return math.NaN()
			}
			act, err := net.Forward(x)
			if err != nil {
				evalErr = err
				return math.NaN()
			}
			l, err := model.Loss(act.YHat, y)
			if err != nil {
				evalErr = err
				return math.NaN()
			}
			return l
		}
		numeric := fd.Gradient(nil, loss, theta, &fd.Settings{Formula: fd.Central, Step: opts.Step})
		if evalErr != nil {
			return nil, errors.WithMessagef(evalErr, "gradcheck: %s", target.name)
		}

		report := Report{Name: target.name}
		analytic := target.analytic.RawData()
		if len(analytic) != rows*cols {
			return nil, errors.Wrapf(matrix.ErrShapeMismatch, "gradcheck: %s gradient", target.name)
		}
		for i, n := range numeric {
			abs := math.Abs(n - analytic[i])
			rel := abs / math.Max(1, math.Max(math.Abs(n), math.Abs(analytic[i])))
			report.MaxAbsError = math.Max(report.MaxAbsError, abs)
			report.MaxRelError = math.Max(report.MaxRelError, rel)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// MaxRelError returns the worst relative error across reports.
func MaxRelError(reports []Report) float64 {
	worst := 0.0
	for _, r := range reports {
		worst = math.Max(worst, r.MaxRelError)
	}
	return worst
}

func setAll(m *matrix.Dense, values []float64) {
	_, cols := m.Dims()
	for k, v := range values {
		m.Set(k/cols, k%cols, v)
	}
}
