package components

import (
	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a colored unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(cli.RenderSparkline(values))
}

// minBarSlot is the narrowest column a week can occupy: one bar cell plus
// a gap.
const minBarSlot = 2

// ChartWeeks returns how many of the most recent weeks fit into width.
func ChartWeeks(n, width int) int {
	fit := width / minBarSlot
	if fit < 1 {
		fit = 1
	}
	if n < fit {
		return n
	}
	return fit
}

// WeeklyBarChart renders weekly net totals as a bar chart, oldest week on
// the left. Bars are sized by magnitude and colored by sign: net savings
// green, net spending red. weeks is ordered newest first.
func WeeklyBarChart(weeks []model.WeeklyTotal, width, height int) string {
	if len(weeks) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 4 {
		vals := make([]float64, len(weeks))
		for i, w := range weeks {
			vals[len(weeks)-1-i] = w.Total.InexactFloat64()
		}
		return Sparkline(vals, t.Accent)
	}

	n := ChartWeeks(len(weeks), width)
	shown := weeks[:n]

	chart := barchart.New(width, height)
	bars := make([]barchart.BarData, 0, n)
	for i := n - 1; i >= 0; i-- {
		w := shown[i]
		style := lipgloss.NewStyle().Foreground(t.Amount(w.Total.IsNegative()))
		bars = append(bars, barchart.BarData{
			Label: w.Start.Format("02"),
			Values: []barchart.BarValue{{
				Name:  cli.FormatWeek(w.Start),
				Value: w.Total.Abs().InexactFloat64(),
				Style: style,
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}
