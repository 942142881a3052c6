// Package matrix provides the dense two-dimensional float64 matrix used by the
// network. Every value handled by the fit routine is a real-valued matrix, so
// there is a single element type and a single rank.
//
// Binary operations check shapes up front and return an error wrapping
// ErrShapeMismatch instead of letting gonum panic.
package matrix

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned (wrapped) by any operation whose operands have
// incompatible shapes.
var ErrShapeMismatch = errors.New("matrix: shape mismatch")

// Shape is the (rows, cols) pair of a matrix.
type Shape struct {
	Rows, Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Dense is a row-major rows x cols matrix of float64.
type Dense struct {
	m *mat.Dense
}

// New returns a rows x cols matrix backed by data, which must hold rows*cols
// values in row-major order. A nil data allocates zeros. It panics on
// non-positive dimensions or a data length mismatch, like mat.NewDense.
func New(rows, cols int, data []float64) *Dense {
	return &Dense{m: mat.NewDense(rows, cols, data)}
}

// Zeros returns a rows x cols matrix of zeros.
func Zeros(rows, cols int) *Dense {
	return New(rows, cols, nil)
}

// RandN returns a rows x cols matrix with entries drawn i.i.d. from the
// standard normal distribution, filled in row-major order.
func RandN(rows, cols int, rng *rand.Rand) *Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return New(rows, cols, data)
}

// FromRows builds a matrix from a non-empty slice of equal-length rows.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("matrix: FromRows needs at least one non-empty row")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return New(len(rows), cols, data), nil
}

func wrap(m *mat.Dense) *Dense {
	return &Dense{m: m}
}

// Dims returns the number of rows and columns.
func (d *Dense) Dims() (rows, cols int) {
	return d.m.Dims()
}

// Shape returns the matrix shape.
func (d *Dense) Shape() Shape {
	r, c := d.m.Dims()
	return Shape{Rows: r, Cols: c}
}

// At returns the element at row i, column j.
func (d *Dense) At(i, j int) float64 {
	return d.m.At(i, j)
}

// Set stores v at row i, column j.
func (d *Dense) Set(i, j int, v float64) {
	d.m.Set(i, j, v)
}

// Row returns a copy of row i.
func (d *Dense) Row(i int) []float64 {
	return append([]float64(nil), d.m.RawRowView(i)...)
}

// SliceRows returns a copy of rows [i, j).
func (d *Dense) SliceRows(i, j int) *Dense {
	_, c := d.m.Dims()
	return wrap(mat.DenseCopyOf(d.m.Slice(i, j, 0, c)))
}

// RawData returns a row-major copy of all elements.
func (d *Dense) RawData() []float64 {
	r, c := d.m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, d.m.RawRowView(i)...)
	}
	return out
}

// Clone returns a deep copy.
func (d *Dense) Clone() *Dense {
	return wrap(mat.DenseCopyOf(d.m))
}

// Equal reports whether both matrices have the same shape and identical
// elements.
func (d *Dense) Equal(o *Dense) bool {
	return mat.Equal(d.m, o.m)
}

// EqualApprox reports whether both matrices have the same shape and elements
// within tol of each other.
func (d *Dense) EqualApprox(o *Dense, tol float64) bool {
	return mat.EqualApprox(d.m, o.m, tol)
}

// AllFinite reports whether no element is NaN or infinite.
func AllFinite(d *Dense) bool {
	r, _ := d.m.Dims()
	for i := 0; i < r; i++ {
		for _, v := range d.m.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// String formats the matrix with gonum's formatter.
func (d *Dense) String() string {
	return fmt.Sprintf("%v", mat.Formatted(d.m, mat.Squeeze()))
}
