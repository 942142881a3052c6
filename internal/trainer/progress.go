package trainer

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// progressBar shows iterations completed and the latest loss on a terminal.
type progressBar struct {
	bar *progressbar.ProgressBar
	w   io.Writer
}

func newProgressBar(total int, w io.Writer) *progressBar {
	if w == nil {
		w = os.Stderr
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("fit"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("iters"),
		// Same value as progressbar.ThemeASCII (added in v3.16, which needs Go 1.22).
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "=", SaucerHead: ">", SaucerPadding: ".", BarStart: "[", BarEnd: "]"}),
		progressbar.OptionThrottle(0),
	)
	return &progressBar{bar: bar, w: w}
}

func (p *progressBar) step(loss float64) {
	p.bar.Describe(fmt.Sprintf("fit loss=%.4g", loss))
	_ = p.bar.Add(1)
}

func (p *progressBar) finish() {
	_ = p.bar.Finish()
	_, _ = fmt.Fprintln(p.w)
}
