package trainer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	tableBorderColor  = "#705090"
)

// Summary renders a table describing a finished run.
func Summary(res *RunResult) string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return rightAlignedStyle
			}
			return normalStyle
		})

	h := res.History
	table.Row("Samples", humanize.Comma(int64(res.Data.Samples())))
	table.Row("Iterations", humanize.Comma(int64(h.Len())))
	table.Row("Learning rate", fmt.Sprintf("%g", res.Config.LearningRate))
	if h.Len() > 0 {
		table.Row("Initial loss", fmt.Sprintf("%.4f", h.Initial()))
		table.Row("Final loss", fmt.Sprintf("%.4f", h.Final()))
		table.Row("Final / initial", fmt.Sprintf("%.4f", h.Ratio()))
	}
	if h.Diverged() {
		table.Row("Status", "diverged")
	}
	shapes := res.Fit.Params.Shapes()
	parts := make([]string, 0, len(shapes))
	for i, name := range []string{"W1", "b1", "W2", "b2"} {
		parts = append(parts, fmt.Sprintf("%s=%s", name, shapes[i]))
	}
	table.Row("Parameters", strings.Join(parts, " "))
	table.Row("Duration", res.Duration.Round(time.Microsecond).String())
	return table.String()
}
