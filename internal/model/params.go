package model

import (
	"fmt"

	"github.com/pkg/errors"

	"scratchnet/internal/matrix"
)

// Params holds the four trainable tensors of the network:
// W1 (D x H), B1 (1 x H), W2 (H x O) and B2 (1 x O).
type Params struct {
	W1 *matrix.Dense
	B1 *matrix.Dense
	W2 *matrix.Dense
	B2 *matrix.Dense
}

// Shapes lists the parameter shapes in W1, B1, W2, B2 order.
func (p *Params) Shapes() [4]matrix.Shape {
	return [4]matrix.Shape{p.W1.Shape(), p.B1.Shape(), p.W2.Shape(), p.B2.Shape()}
}

// Sizes returns the input width D, hidden width H and output width O.
func (p *Params) Sizes() (inputs, hidden, outputs int) {
	inputs, hidden = p.W1.Dims()
	_, outputs = p.W2.Dims()
	return
}

// Validate checks the four shapes are mutually consistent.
func (p *Params) Validate() error {
	if p == nil || p.W1 == nil || p.B1 == nil || p.W2 == nil || p.B2 == nil {
		return errors.New("model: incomplete parameters")
	}
	d, h, o := p.Sizes()
	want := [4]matrix.Shape{{Rows: d, Cols: h}, {Rows: 1, Cols: h}, {Rows: h, Cols: o}, {Rows: 1, Cols: o}}
	got := p.Shapes()
	for i, name := range []string{"W1", "B1", "W2", "B2"} {
		if got[i] != want[i] {
			return errors.Wrapf(matrix.ErrShapeMismatch, "model: %s is %s, want %s", name, got[i], want[i])
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	return &Params{
		W1: p.W1.Clone(),
		B1: p.B1.Clone(),
		W2: p.W2.Clone(),
		B2: p.B2.Clone(),
	}
}

// Equal reports whether all four tensors are identical.
func (p *Params) Equal(o *Params) bool {
	return p.W1.Equal(o.W1) && p.B1.Equal(o.B1) && p.W2.Equal(o.W2) && p.B2.Equal(o.B2)
}

// AllFinite reports whether every parameter value is finite.
func (p *Params) AllFinite() bool {
	return matrix.AllFinite(p.W1) && matrix.AllFinite(p.B1) && matrix.AllFinite(p.W2) && matrix.AllFinite(p.B2)
}

func (p *Params) String() string {
	s := p.Shapes()
	return fmt.Sprintf("W1=%s b1=%s W2=%s b2=%s", s[0], s[1], s[2], s[3])
}
