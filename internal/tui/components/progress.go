package components

import (
	"fmt"

	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct maps savings progress (0-100) to a color: red when just
// starting, green once the goal is near.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 100:
		return t.GreenBright
	case pct >= 75:
		return t.Green
	case pct >= 50:
		return t.Yellow
	case pct >= 25:
		return t.Orange
	default:
		return t.Red
	}
}

// GoalProgressBar renders a progress bar for a 0-100 percentage followed by
// the percentage itself.
func GoalProgressBar(pct float64, width int) string {
	t := theme.Active

	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if width < 4 {
		width = 4
	}

	color := ColorForPct(pct)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct/100) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

// WeekDots renders one dot per week of the plan, filled for weeks hit.
// Long plans are compressed to fit width.
func WeekDots(hit, total, width int) string {
	t := theme.Active
	if total <= 0 || width <= 0 {
		return ""
	}
	cells := total
	if cells > width {
		cells = width
	}
	filled := hit * cells / total
	if hit > 0 && filled == 0 {
		filled = 1
	}

	onStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	offStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	out := ""
	for i := 0; i < cells; i++ {
		if i < filled {
			out += onStyle.Render("●")
		} else {
			out += offStyle.Render("·")
		}
	}
	return out
}
