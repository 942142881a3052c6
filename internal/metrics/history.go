package metrics

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Point is the loss observed at one iteration.
type Point struct {
	Iteration int   `json:"iteration"`
	Loss      Value `json:"loss"`
}

// Value is a float64 that survives JSON encoding when it is NaN or infinite,
// which happens whenever a run diverges.
type Value float64

// MarshalJSON encodes non-finite values as the strings "NaN", "+Inf" and "-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts numbers and the strings written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Wrapf(err, "metrics: bad loss value %q", s)
		}
		*v = Value(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrap(err, "metrics: bad loss value")
	}
	*v = Value(f)
	return nil
}

// History is the ordered loss trajectory of a run.
type History struct {
	Points []Point `json:"points"`
}

// FromLosses builds a history where losses[i] belongs to iteration i+1.
func FromLosses(losses []float64) *History {
	h := &History{Points: make([]Point, 0, len(losses))}
	for i, l := range losses {
		h.Add(i+1, l)
	}
	return h
}

// Add appends the loss of an iteration.
func (h *History) Add(iteration int, loss float64) {
	h.Points = append(h.Points, Point{Iteration: iteration, Loss: Value(loss)})
}

// Len returns the number of recorded points.
func (h *History) Len() int {
	return len(h.Points)
}

// Losses returns the recorded losses in order.
func (h *History) Losses() []float64 {
	out := make([]float64, len(h.Points))
	for i, p := range h.Points {
		out[i] = float64(p.Loss)
	}
	return out
}

// Initial returns the first loss, or NaN when empty.
func (h *History) Initial() float64 {
	if len(h.Points) == 0 {
		return math.NaN()
	}
	return float64(h.Points[0].Loss)
}

// Final returns the last loss, or NaN when empty.
func (h *History) Final() float64 {
	if len(h.Points) == 0 {
		return math.NaN()
	}
	return float64(h.Points[len(h.Points)-1].Loss)
}

// Ratio returns Final()/Initial().
func (h *History) Ratio() float64 {
	return h.Final() / h.Initial()
}

// NonFinite reports whether any loss is NaN or infinite.
func (h *History) NonFinite() bool {
	for _, p := range h.Points {
		f := float64(p.Loss)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}

// Diverged reports whether the run blew up: some loss is non-finite, or the
// last loss is larger than the first.
func (h *History) Diverged() bool {
	if len(h.Points) == 0 {
		return false
	}
	return h.NonFinite() || h.Final() > h.Initial()
}

// Decreasing reports whether each of the first n+1 losses is no larger than
// the one before it.
func (h *History) Decreasing(n int) bool {
	if n >= len(h.Points) {
		n = len(h.Points) - 1
	}
	for i := 1; i <= n; i++ {
		if !(h.Points[i].Loss <= h.Points[i-1].Loss) {
			return false
		}
	}
	return true
}

// WriteJSON encodes the history to w.
func (h *History) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return errors.Wrap(err, "metrics: encode history")
	}
	return nil
}

// ReadJSON decodes a history written by WriteJSON.
func ReadJSON(r io.Reader) (*History, error) {
	h := &History{}
	if err := json.NewDecoder(r).Decode(h); err != nil {
		return nil, errors.Wrap(err, "metrics: decode history")
	}
	return h, nil
}
