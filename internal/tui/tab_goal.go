package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/savings"
	"github.com/homerun-app/homerun/internal/tui/components"
	"github.com/homerun-app/homerun/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// goalValues are the raw form inputs.
type goalValues struct {
	price   string
	percent string
	years   string
}

// goalState tracks the Goal tab edit form.
type goalState struct {
	form    *huh.Form
	vals    *goalValues
	saved   bool
	saveErr error
}

func (s goalState) editing() bool {
	return s.form != nil
}

func goalValuesFrom(g savings.Goal) *goalValues {
	return &goalValues{
		price:   g.HousePrice.StringFixed(0),
		percent: strconv.FormatFloat(g.DownpaymentPercent, 'f', -1, 64),
		years:   strconv.Itoa(g.YearsToSave),
	}
}

// parse converts form input to a validated goal.
func (v goalValues) parse() (config.GoalConfig, error) {
	price, err := parsePositiveFloat(v.price)
	if err != nil {
		return config.GoalConfig{}, fmt.Errorf("house price: %w", err)
	}
	pct, err := parsePositiveFloat(v.percent)
	if err != nil {
		return config.GoalConfig{}, fmt.Errorf("downpayment percent: %w", err)
	}
	years, err := strconv.Atoi(strings.TrimSpace(v.years))
	if err != nil {
		return config.GoalConfig{}, fmt.Errorf("years to save: not a whole number")
	}
	g := config.GoalConfig{HousePrice: price, DownpaymentPercent: pct, YearsToSave: years}
	if err := g.Validate(); err != nil {
		return config.GoalConfig{}, err
	}
	return g, nil
}

func parsePositiveFloat(s string) (float64, error) {
	s = strings.NewReplacer(",", "", "$", "", "%", "").Replace(strings.TrimSpace(s))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number")
	}
	if f <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return f, nil
}

func newGoalForm(v *goalValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("House price (USD)").Value(&v.price).
				Validate(func(s string) error { _, err := parsePositiveFloat(s); return err }),
			huh.NewInput().Title("Downpayment (%)").Value(&v.percent).
				Validate(func(s string) error {
					f, err := parsePositiveFloat(s)
					if err == nil && f > 100 {
						err = fmt.Errorf("at most 100")
					}
					return err
				}),
			huh.NewInput().Title("Years to save").Value(&v.years).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 || n > 50 {
						return fmt.Errorf("between 1 and 50")
					}
					return nil
				}),
		).Title("Savings goal"),
	).WithShowHelp(true).WithShowErrors(true)
}

func (a App) openGoalForm() (tea.Model, tea.Cmd) {
	a.goalState.vals = goalValuesFrom(a.tracker.Goal())
	a.goalState.form = newGoalForm(a.goalState.vals)
	a.goalState.saved = false
	a.goalState.saveErr = nil
	if a.width > 0 {
		a.goalState.form = a.goalState.form.WithWidth(a.contentWidth() - 4)
	}
	return a, a.goalState.form.Init()
}

func (a App) updateGoalForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.goalState.form = nil
		return a, nil
	}

	form, cmd := a.goalState.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.goalState.form = f
	}

	switch a.goalState.form.State {
	case huh.StateCompleted:
		a.goalState.form = nil
		a.applyGoal(*a.goalState.vals)
		return a, nil
	case huh.StateAborted:
		a.goalState.form = nil
		return a, nil
	}
	return a, cmd
}

// applyGoal sets the tracker goal from form values and persists it.
func (a *App) applyGoal(v goalValues) {
	g, err := v.parse()
	if err != nil {
		a.goalState.saveErr = err
		return
	}
	if a.saveGoal != nil {
		if err := a.saveGoal(g); err != nil {
			a.goalState.saveErr = err
			a.goalState.saved = false
			return
		}
	}
	a.goalState.saveErr = nil
	a.result = a.tracker.SetGoal(g.Params())
	a.recompute()
	a.goalState.saved = true
}

func (a App) renderGoalTab(cw int) string {
	t := theme.Active

	if a.goalState.editing() {
		return components.ContentCard("Edit Goal", a.goalState.form.View(), cw)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	g := a.tracker.Goal()
	res := a.result
	target := "n/a (years to save must be positive)"
	if res.TargetOK {
		target = cli.FormatMoney(res.WeeklyTarget)
	}

	fields := []struct{ label, value string }{
		{"House price", cli.FormatMoney(g.HousePrice)},
		{"Downpayment", fmt.Sprintf("%s%%", strconv.FormatFloat(g.DownpaymentPercent, 'f', -1, 64))},
		{"Years to save", fmt.Sprintf("%d (%d weeks)", g.YearsToSave, g.TotalWeeks())},
		{"Downpayment goal", cli.FormatMoney(savings.DownpaymentGoal(g))},
		{"Weekly target", target},
		{"Home runs left", cli.FormatNumber(int64(res.Cycle.State.HomeRunsLeft))},
		{"Weeks hit", cli.FormatNumber(int64(res.Cycle.State.WeeksGoalHit))},
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
		b.WriteString(valueStyle.Render(f.value))
		b.WriteString("\n")
	}

	switch {
	case a.goalState.saveErr != nil:
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.goalState.saveErr)))
		b.WriteString("\n")
	case a.goalState.saved:
		b.WriteString("\n")
		b.WriteString(greenStyle.Render("Saved!"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("[e/Enter] edit goal"))

	return components.ContentCard("Savings Goal", b.String(), cw)
}
