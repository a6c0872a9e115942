package tui

import (
	"fmt"
	"strings"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/savings"
	"github.com/homerun-app/homerun/internal/tui/components"
	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderWeeksTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hitStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)

	if len(a.weeks) == 0 {
		return components.ContentCard("Weekly Net", mutedStyle.Render("No dated transactions yet."), cw)
	}

	inner := components.CardInnerWidth(cw)
	chartH := 12
	if a.isCompactLayout() {
		chartH = 8
	}
	n := components.ChartWeeks(len(a.weeks), inner)

	var b strings.Builder
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Weekly Net (last %d weeks)", n),
		components.WeeklyBarChart(a.weeks, inner, chartH),
		cw,
	))
	b.WriteString("\n")

	// Week table, newest first. The current week also shows the running
	// accumulator the home-run check compares against.
	current := savings.WeekID(a.now())
	target := a.result.WeeklyTarget
	var tb strings.Builder
	tb.WriteString(mutedStyle.Render(fmt.Sprintf("%-10s %8s %14s  %s", "Week of", "Txns", "Net", "")))
	tb.WriteString("\n")
	limit := len(a.weeks)
	if limit > 8 {
		limit = 8
	}
	for i := 0; i < limit; i++ {
		w := a.weeks[i]
		amt := cli.FormatMoney(w.Total)
		tb.WriteString(valueStyle.Render(fmt.Sprintf("%-10s %8d ", cli.FormatWeek(w.Start), w.Count)))
		tb.WriteString(lipgloss.NewStyle().Foreground(t.Amount(w.Total.IsNegative())).Background(t.Surface).
			Render(fmt.Sprintf("%14s", amt)))
		if a.result.TargetOK && w.Total.GreaterThanOrEqual(target) {
			tb.WriteString(hitStyle.Render("  ≥ target"))
		}
		if w.WeekID == current {
			tb.WriteString(mutedStyle.Render("  (this week)"))
		}
		if i < limit-1 {
			tb.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Recent Weeks", tb.String(), cw))
	return b.String()
}
