package metrics

import (
	"io"
	"math"

	mg "github.com/erkkah/margaid"
	"github.com/pkg/errors"
)

// PlotOptions controls RenderSVG.
type PlotOptions struct {
	Width, Height int
	// LogScale draws the loss axis logarithmically; non-positive losses are
	// then skipped.
	LogScale bool
	Title    string
}

// DefaultPlotOptions are the dimensions used by the command line.
var DefaultPlotOptions = PlotOptions{Width: 1024, Height: 400, LogScale: true, Title: "Training loss"}

// ErrNothingToPlot is returned when a history has no drawable point.
var ErrNothingToPlot = errors.New("metrics: no finite loss to plot")

// RenderSVG draws the loss curve of h as an SVG document. Non-finite losses
// are left out of the curve.
func RenderSVG(w io.Writer, h *History, opts PlotOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultPlotOptions.Width, DefaultPlotOptions.Height
	}
	series := mg.NewSeries(mg.Titled("loss"))
	points := 0
	for _, p := range h.Points {
		v := float64(p.Loss)
		if math.IsNaN(v) || math.IsInf(v, 0) || (opts.LogScale && v <= 0) {
			continue
		}
		series.Add(mg.MakeValue(float64(p.Iteration), v))
		points++
	}
	if points == 0 {
		return ErrNothingToPlot
	}

	yProjection := mg.Lin
	if opts.LogScale {
		yProjection = mg.Log
	}
	diagram := mg.New(opts.Width, opts.Height,
		mg.WithAutorange(mg.XAxis, series),
		mg.WithAutorange(mg.YAxis, series),
		mg.WithProjection(mg.YAxis, yProjection),
		mg.WithInset(70),
		mg.WithPadding(2),
		mg.WithColorScheme(90),
		mg.WithBackgroundColor("#f8f8f8"),
	)
	diagram.Line(series, mg.UsingAxes(mg.XAxis, mg.YAxis), mg.UsingMarker("square"), mg.UsingStrokeWidth(2))
	diagram.Axis(series, mg.XAxis, diagram.ValueTicker('f', 0, 10), false, "Iteration")
	diagram.Axis(series, mg.YAxis, diagram.ValueTicker('f', 3, 10), true, "Loss")
	diagram.Frame()
	if opts.Title != "" {
		diagram.Title(opts.Title)
	}
	if err := diagram.Render(w); err != nil {
		return errors.Wrap(err, "metrics: render loss plot")
	}
	return nil
}
