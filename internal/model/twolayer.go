package model

import (
	"math/rand"

	"github.com/pkg/errors"

	"scratchnet/internal/matrix"
)

// TwoLayer is a one-hidden-layer ReLU regression network trained with
// hand-derived gradients on a sum-of-squared-error loss.
type TwoLayer struct {
	params *Params
	lr     float64
}

// Activations are the intermediate values of one forward pass.
type Activations struct {
	HPre *matrix.Dense // X.W1 + b1
	HAct *matrix.Dense // max(HPre, 0)
	YHat *matrix.Dense // HAct.W2 + b2
}

// Gradients of the loss with respect to each parameter and activation.
type Gradients struct {
	YHat *matrix.Dense
	W2   *matrix.Dense
	B2   *matrix.Dense
	HAct *matrix.Dense
	HPre *matrix.Dense
	W1   *matrix.Dense
	B1   *matrix.Dense
}

// NewTwoLayer draws W1 and then W2 from the standard normal distribution using
// rng, and zeroes both biases.
func NewTwoLayer(inputs, hidden, outputs int, lr float64, rng *rand.Rand) (*TwoLayer, error) {
	if inputs <= 0 || hidden <= 0 || outputs <= 0 {
		return nil, errors.Errorf("model: sizes must be > 0 (inputs=%d hidden=%d outputs=%d)", inputs, hidden, outputs)
	}
	if lr <= 0 {
		return nil, errors.Errorf("model: learning rate must be > 0 (got %g)", lr)
	}
	if rng == nil {
		return nil, errors.New("model: nil random source")
	}
	w1 := matrix.RandN(inputs, hidden, rng)
	w2 := matrix.RandN(hidden, outputs, rng)
	return &TwoLayer{
		params: &Params{
			W1: w1,
			B1: matrix.Zeros(1, hidden),
			W2: w2,
			B2: matrix.Zeros(1, outputs),
		},
		lr: lr,
	}, nil
}

// FromParams builds a network around a copy of params.
func FromParams(params *Params, lr float64) (*TwoLayer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if lr <= 0 {
		return nil, errors.Errorf("model: learning rate must be > 0 (got %g)", lr)
	}
	return &TwoLayer{params: params.Clone(), lr: lr}, nil
}

// Params returns a copy of the current parameters.
func (m *TwoLayer) Params() *Params {
	return m.params.Clone()
}

// Forward computes the activations for x (N x D).
func (m *TwoLayer) Forward(x *matrix.Dense) (*Activations, error) {
	xw1, err := matrix.MatMul(x, m.params.W1)
	if err != nil {
		return nil, errors.WithMessage(err, "forward: hidden layer")
	}
	hPre, err := matrix.AddRowVector(xw1, m.params.B1)
	if err != nil {
		return nil, errors.WithMessage(err, "forward: hidden bias")
	}
	hAct := matrix.ReLU(hPre)
	hw2, err := matrix.MatMul(hAct, m.params.W2)
	if err != nil {
		return nil, errors.WithMessage(err, "forward: output layer")
	}
	yHat, err := matrix.AddRowVector(hw2, m.params.B2)
	if err != nil {
		return nil, errors.WithMessage(err, "forward: output bias")
	}
	return &Activations{HPre: hPre, HAct: hAct, YHat: yHat}, nil
}

// Loss is the sum over all entries of (yHat - y)^2.
func Loss(yHat, y *matrix.Dense) (float64, error) {
	diff, err := matrix.Sub(yHat, y)
	if err != nil {
		return 0, errors.WithMessage(err, "loss")
	}
	return matrix.SumSquares(diff), nil
}

// Backward applies the chain rule from the loss back to W1 and b1, using the
// activations of the forward pass that produced act.
func (m *TwoLayer) Backward(x, y *matrix.Dense, act *Activations) (*Gradients, error) {
	diff, err := matrix.Sub(act.YHat, y)
	if err != nil {
		return nil, errors.WithMessage(err, "backward: residual")
	}
	g := &Gradients{YHat: matrix.Scale(diff, 2)}

	if g.W2, err = matrix.MatMul(matrix.T(act.HAct), g.YHat); err != nil {
		return nil, errors.WithMessage(err, "backward: W2")
	}
	g.B2 = matrix.SumRows(g.YHat)
	if g.HAct, err = matrix.MatMul(g.YHat, matrix.T(m.params.W2)); err != nil {
		return nil, errors.WithMessage(err, "backward: hidden activation")
	}
	// Entries where the pre-activation was <= 0 carry no gradient.
	rows, cols := g.HAct.Dims()
	if g.HPre, err = matrix.WherePositive(act.HPre, g.HAct, matrix.Zeros(rows, cols)); err != nil {
		return nil, errors.WithMessage(err, "backward: relu mask")
	}
	if g.W1, err = matrix.MatMul(matrix.T(x), g.HPre); err != nil {
		return nil, errors.WithMessage(err, "backward: W1")
	}
	g.B1 = matrix.SumRows(g.HPre)
	return g, nil
}

// Update takes one gradient descent step on all four parameters using the
// same gradients.
func (m *TwoLayer) Update(g *Gradients) error {
	steps := []struct {
		name  string
		param *matrix.Dense
		grad  *matrix.Dense
	}{
		{"W1", m.params.W1, g.W1},
		{"B1", m.params.B1, g.B1},
		{"W2", m.params.W2, g.W2},
		{"B2", m.params.B2, g.B2},
	}
	for _, s := range steps {
		if s.grad == nil || s.grad.Shape() != s.param.Shape() {
			return errors.Wrapf(matrix.ErrShapeMismatch, "update %s: missing or misshapen gradient", s.name)
		}
	}
	for _, s := range steps {
		if err := s.param.SubScaled(m.lr, s.grad); err != nil {
			return errors.WithMessagef(err, "update %s", s.name)
		}
	}
	return nil
}

// TrainStep executes one full-batch gradient descent iteration and returns the
// loss of the parameters it started from.
func (m *TwoLayer) TrainStep(batch Batch) (float64, error) {
	act, err := m.Forward(batch.Inputs)
	if err != nil {
		return 0, err
	}
	loss, err := Loss(act.YHat, batch.Targets)
	if err != nil {
		return 0, err
	}
	grads, err := m.Backward(batch.Inputs, batch.Targets, act)
	if err != nil {
		return 0, err
	}
	if err := m.Update(grads); err != nil {
		return 0, err
	}
	return loss, nil
}
