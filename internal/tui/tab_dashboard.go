package tui

import (
	"fmt"
	"strings"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/tui/components"
	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	res := a.result
	prog := res.Progress
	state := res.Cycle.State
	var b strings.Builder

	// Banner: goal reached outranks a fresh home run.
	bannerStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.GreenBright).
		Bold(true).
		Width(cw).
		Align(lipgloss.Center)
	switch {
	case prog.Reached():
		b.WriteString(bannerStyle.Render("Goal reached! Your downpayment is saved."))
		b.WriteString("\n")
	case a.homeRunTicks > 0:
		b.WriteString(bannerStyle.Background(t.Accent).Render("Home run! Weekly target hit."))
		b.WriteString("\n")
	}

	// Row 1: metric cards
	target := "n/a"
	if res.TargetOK {
		target = cli.FormatMoney(res.WeeklyTarget)
	}
	metrics := []components.Metric{
		{Label: "Saved", Value: cli.FormatMoney(prog.Saved), Delta: cli.FormatPercent(prog.Percent) + " of goal",
			Color: t.Amount(prog.Saved.IsNegative())},
		{Label: "Downpayment Goal", Value: cli.FormatMoney(prog.Goal),
			Delta: fmt.Sprintf("%.0f%% of %s", res.Goal.DownpaymentPercent, cli.FormatMoneyShort(res.Goal.HousePrice))},
		{Label: "Weekly Target", Value: target,
			Delta: "this week " + cli.FormatMoney(state.Accumulator)},
		{Label: "Home Runs Left", Value: cli.FormatNumber(int64(state.HomeRunsLeft)),
			Delta: fmt.Sprintf("%d weeks hit", state.WeeksGoalHit)},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: progress
	inner := components.CardInnerWidth(cw)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	var pb strings.Builder
	pb.WriteString(components.GoalProgressBar(prog.Percent, inner-8))
	pb.WriteString("\n")
	if prog.Reached() {
		pb.WriteString(mutedStyle.Render("Nothing left to save."))
	} else {
		pb.WriteString(mutedStyle.Render(fmt.Sprintf("%s to go", cli.FormatMoney(prog.Remaining()))))
	}
	pb.WriteString("\n\n")
	pb.WriteString(mutedStyle.Render("Weeks hit  "))
	pb.WriteString(components.WeekDots(state.WeeksGoalHit, res.Goal.TotalWeeks(), inner-11))
	b.WriteString(components.ContentCard("Progress", pb.String(), cw))
	b.WriteString("\n")

	// Row 3: flows and categories
	halves := components.LayoutRow(cw, 2)
	period := "all time"
	if a.days > 0 {
		period = fmt.Sprintf("last %dd", a.days)
	}

	var fb strings.Builder
	rows := []struct {
		label string
		value string
	}{
		{"Income", cli.RenderAmount(a.flows.Income)},
		{"Spend", cli.RenderAmount(a.flows.Spend)},
		{"Net", cli.RenderAmount(a.flows.Net)},
		{"Transactions", cli.FormatNumber(int64(len(a.recent)))},
	}
	for _, r := range rows {
		fb.WriteString(mutedStyle.Render(fmt.Sprintf("%-14s", r.label)))
		fb.WriteString(r.value)
		fb.WriteString("\n")
	}
	if len(a.weeks) > 1 {
		vals := make([]float64, 0, len(a.weeks))
		for i := len(a.weeks) - 1; i >= 0; i-- {
			vals = append(vals, a.weeks[i].Total.InexactFloat64())
		}
		if n := components.CardInnerWidth(halves[0]) - 14; len(vals) > n && n > 0 {
			vals = vals[len(vals)-n:]
		}
		fb.WriteString(mutedStyle.Render(fmt.Sprintf("%-14s", "Weekly net")))
		fb.WriteString(components.Sparkline(vals, t.Accent))
	}
	flowCard := components.ContentCard("Cash Flow ("+period+")", fb.String(), halves[0])

	var cb strings.Builder
	catW := components.CardInnerWidth(halves[1]) - 16
	shown := a.categories
	if len(shown) > 6 {
		shown = shown[:6]
	}
	for i, c := range shown {
		cb.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", catW, cli.Truncate(c.Category, catW))))
		cb.WriteString(cli.RenderAmount(c.Total))
		if i < len(shown)-1 {
			cb.WriteString("\n")
		}
	}
	if len(shown) == 0 {
		cb.WriteString(mutedStyle.Render("No categorized activity."))
	}
	catCard := components.ContentCard("Top Categories", cb.String(), halves[1])

	if a.isCompactLayout() {
		b.WriteString(flowCard)
		b.WriteString("\n")
		b.WriteString(catCard)
	} else {
		b.WriteString(components.CardRow([]string{flowCard, catCard}))
	}
	return b.String()
}
