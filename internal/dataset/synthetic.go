package dataset

import (
	"math/rand"

	"github.com/pkg/errors"

	"scratchnet/internal/matrix"
)

// Dataset is an in-memory regression dataset: N rows of D inputs and O targets.
type Dataset struct {
	X *matrix.Dense
	Y *matrix.Dense
}

// Validate checks inputs and targets describe the same rows.
func (d *Dataset) Validate() error {
	if d == nil || d.X == nil || d.Y == nil {
		return errors.New("dataset: missing inputs or targets")
	}
	xr, _ := d.X.Dims()
	yr, _ := d.Y.Dims()
	if xr != yr {
		return errors.Wrapf(matrix.ErrShapeMismatch, "dataset: %d input rows but %d target rows", xr, yr)
	}
	return nil
}

// Samples returns N.
func (d *Dataset) Samples() int {
	r, _ := d.X.Dims()
	return r
}

// Features returns D.
func (d *Dataset) Features() int {
	_, c := d.X.Dims()
	return c
}

// Outputs returns O.
func (d *Dataset) Outputs() int {
	_, c := d.Y.Dims()
	return c
}

// Head returns a copy of the first n rows, or of every row when n exceeds N.
func (d *Dataset) Head(n int) *Dataset {
	if n > d.Samples() {
		n = d.Samples()
	}
	return &Dataset{X: d.X.SliceRows(0, n), Y: d.Y.SliceRows(0, n)}
}

// DefaultCoefficients are the weights of the linear relationship used when
// none are configured.
var DefaultCoefficients = []float64{0.2, -1.3, -0.5}

// SyntheticOptions configures Synthetic.
type SyntheticOptions struct {
	Samples      int
	Coefficients []float64
	Noise        float64
	Seed         int64
}

// Synthetic draws X (Samples x len(Coefficients)) i.i.d. standard normal and
// sets Y = X.c + Noise*e with e i.i.d. standard normal. All of X is drawn
// before any noise, so a seed fully determines the dataset.
func Synthetic(opts SyntheticOptions) (*Dataset, error) {
	if opts.Samples <= 0 {
		return nil, errors.Errorf("dataset: samples must be > 0 (got %d)", opts.Samples)
	}
	coef := opts.Coefficients
	if len(coef) == 0 {
		coef = DefaultCoefficients
	}
	if opts.Noise < 0 {
		return nil, errors.Errorf("dataset: noise must be >= 0 (got %g)", opts.Noise)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	x := matrix.RandN(opts.Samples, len(coef), rng)
	c := matrix.New(len(coef), 1, append([]float64(nil), coef...))
	y, err := matrix.MatMul(x, c)
	if err != nil {
		return nil, err
	}
	if opts.Noise > 0 {
		noise := matrix.Scale(matrix.RandN(opts.Samples, 1, rng), opts.Noise)
		if y, err = matrix.Add(y, noise); err != nil {
			return nil, err
		}
	}
	return &Dataset{X: x, Y: y}, nil
}
