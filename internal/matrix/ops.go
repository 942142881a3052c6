package matrix

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func sameShape(op string, a, b *Dense) error {
	if a.Shape() != b.Shape() {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s vs %s", op, a.Shape(), b.Shape())
	}
	return nil
}

// MatMul returns a.b for a (M x K) and b (K x N).
func MatMul(a, b *Dense) (*Dense, error) {
	as, bs := a.Shape(), b.Shape()
	if as.Cols != bs.Rows {
		return nil, errors.Wrapf(ErrShapeMismatch, "matmul: %s @ %s", as, bs)
	}
	var out mat.Dense
	out.Mul(a.m, b.m)
	return wrap(&out), nil
}

// T returns the transpose of a as a new matrix.
func T(a *Dense) *Dense {
	return wrap(mat.DenseCopyOf(a.m.T()))
}

// Add returns a+b elementwise.
func Add(a, b *Dense) (*Dense, error) {
	if err := sameShape("add", a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Add(a.m, b.m)
	return wrap(&out), nil
}

// Sub returns a-b elementwise.
func Sub(a, b *Dense) (*Dense, error) {
	if err := sameShape("sub", a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Sub(a.m, b.m)
	return wrap(&out), nil
}

// AddRowVector broadcasts row across the rows of a: out[i,j] = a[i,j] + row[0,j].
// a must be N x K and row must be 1 x K.
func AddRowVector(a, row *Dense) (*Dense, error) {
	as, rs := a.Shape(), row.Shape()
	if rs.Rows != 1 || rs.Cols != as.Cols {
		return nil, errors.Wrapf(ErrShapeMismatch, "broadcast add: %s + %s", as, rs)
	}
	out := a.Clone()
	bias := row.m.RawRowView(0)
	for i := 0; i < as.Rows; i++ {
		floats.Add(out.m.RawRowView(i), bias)
	}
	return out, nil
}

// Maximum returns max(a[i,j], v) elementwise.
func Maximum(a *Dense, v float64) *Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, x float64) float64 {
		return math.Max(x, v)
	}, a.m)
	return wrap(&out)
}

// ReLU returns max(a, 0) elementwise.
func ReLU(a *Dense) *Dense {
	return Maximum(a, 0)
}

// WherePositive returns a matrix taking a[i,j] where cond[i,j] > 0 and b[i,j]
// elsewhere. All three operands must share a shape.
func WherePositive(cond, a, b *Dense) (*Dense, error) {
	if err := sameShape("where", cond, a); err != nil {
		return nil, err
	}
	if err := sameShape("where", cond, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(i, j int, c float64) float64 {
		if c > 0 {
			return a.m.At(i, j)
		}
		return b.m.At(i, j)
	}, cond.m)
	return wrap(&out), nil
}

// SumRows reduces an N x K matrix along its rows into a 1 x K matrix of
// column sums.
func SumRows(a *Dense) *Dense {
	rows, cols := a.Dims()
	out := Zeros(1, cols)
	acc := out.m.RawRowView(0)
	for i := 0; i < rows; i++ {
		floats.Add(acc, a.m.RawRowView(i))
	}
	return out
}

// Scale returns s*a.
func Scale(a *Dense, s float64) *Dense {
	var out mat.Dense
	out.Scale(s, a.m)
	return wrap(&out)
}

// SumSquares returns the sum of the squares of all elements.
func SumSquares(a *Dense) float64 {
	rows, _ := a.Dims()
	total := 0.0
	for i := 0; i < rows; i++ {
		row := a.m.RawRowView(i)
		total += floats.Dot(row, row)
	}
	return total
}

// SubScaled updates d in place: d <- d - alpha*g.
func (d *Dense) SubScaled(alpha float64, g *Dense) error {
	if err := sameShape("sub scaled", d, g); err != nil {
		return err
	}
	rows, _ := d.Dims()
	for i := 0; i < rows; i++ {
		floats.AddScaled(d.m.RawRowView(i), -alpha, g.m.RawRowView(i))
	}
	return nil
}
