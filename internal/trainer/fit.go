package trainer

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"scratchnet/internal/matrix"
	"scratchnet/internal/model"
)

// Options configures Fit.
type Options struct {
	Hidden       int
	LearningRate float64
	// Iterations may be zero, in which case the initial parameters are
	// returned untouched.
	Iterations int
	Seed       int64

	// Report, when set, receives the loss of every ReportEvery-th iteration.
	ReportEvery int
	Report      func(iteration int, loss float64)

	// OnStep, when set, is called after every iteration.
	OnStep func(iteration int, loss float64, elapsed time.Duration)
}

// Result is the outcome of Fit.
type Result struct {
	Initial *model.Params
	Params  *model.Params
	// Losses[t-1] is the loss computed in the forward pass of iteration t.
	Losses []float64
}

// Fit trains a fresh two-layer network on (x, y) with full-batch gradient
// descent. Iterations run strictly in order; non-finite losses are not
// treated as errors.
func Fit(x, y *matrix.Dense, opts Options) (*Result, error) {
	if opts.Iterations < 0 {
		return nil, errors.Errorf("trainer: iterations must be >= 0 (got %d)", opts.Iterations)
	}
	xRows, inputs := x.Dims()
	yRows, outputs := y.Dims()
	if xRows != yRows {
		return nil, errors.Wrapf(matrix.ErrShapeMismatch, "trainer: %d input rows but %d target rows", xRows, yRows)
	}

	net, err := model.NewTwoLayer(inputs, opts.Hidden, outputs, opts.LearningRate, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return nil, err
	}
	res := &Result{Initial: net.Params()}

	losses, err := train(net, model.Batch{Inputs: x, Targets: y}, opts)
	if err != nil {
		return nil, err
	}
	res.Losses = losses
	res.Params = net.Params()
	return res, nil
}

// train runs opts.Iterations steps of m on batch, strictly in order, and
// returns the loss of every step.
func train(m model.Model, batch model.Batch, opts Options) ([]float64, error) {
	losses := make([]float64, 0, opts.Iterations)
	for iter := 1; iter <= opts.Iterations; iter++ {
		start := time.Now()
		loss, err := m.TrainStep(batch)
		if err != nil {
			return nil, errors.WithMessagef(err, "iteration %d", iter)
		}
		elapsed := time.Since(start)
		losses = append(losses, loss)

		if opts.OnStep != nil {
			opts.OnStep(iter, loss, elapsed)
		}
		if opts.Report != nil && opts.ReportEvery > 0 && iter%opts.ReportEvery == 0 {
			opts.Report(iter, loss)
		}
	}
	return losses, nil
}
