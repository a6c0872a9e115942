// Package tui provides the interactive Bubble Tea dashboard for homerun.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/tui/components"
	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultMsg is sent when a tracker refresh completes.
type ResultMsg struct {
	Result  pipeline.Result
	Elapsed time.Duration
}

// Options configures the dashboard.
type Options struct {
	Tracker *pipeline.Tracker
	// Days limits the Transactions tab to recent activity; 0 shows all.
	Days int
	// RefreshInterval enables auto refresh when positive.
	RefreshInterval time.Duration
	// SaveGoal persists goal edits; nil keeps them in memory only.
	SaveGoal func(config.GoalConfig) error
}

// App is the root Bubble Tea model.
type App struct {
	tracker  *pipeline.Tracker
	saveGoal func(config.GoalConfig) error

	// Data
	result     pipeline.Result
	recent     []model.Transaction // newest first, limited to days
	weeks      []model.WeeklyTotal
	flows      model.Flows
	categories []model.CategoryTotal
	loaded     bool
	loadTime   time.Duration

	// Refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool
	homeRunTicks    int // flash countdown after a home run

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	days      int
	spinner   spinner.Model

	// Per-tab state
	txState   transactionsState
	goalState goalState

	now func() time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	refreshTimeout   = 60 * time.Second
	homeRunFlash     = 24 // ticks at 250ms
)

// Tab indices.
const (
	tabDashboard = iota
	tabTransactions
	tabWeeks
	tabGoal
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		tracker:         opts.Tracker,
		saveGoal:        opts.SaveGoal,
		days:            opts.Days,
		autoRefresh:     opts.RefreshInterval > 0,
		refreshInterval: opts.RefreshInterval,
		spinner:         sp,
		now:             time.Now,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		refreshCmd(a.tracker),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute derives the per-tab views from the current result.
func (a *App) recompute() {
	txs := a.result.Transactions
	recent := txs
	if a.days > 0 {
		now := a.now()
		recent = pipeline.FilterByTime(txs, now.AddDate(0, 0, -a.days), now)
	}
	a.recent = pipeline.SortByDate(recent)
	a.flows = pipeline.SplitFlows(recent)
	a.categories = pipeline.AggregateCategories(recent)
	a.weeks = pipeline.WeeklyTotals(txs)
	a.txState.clamp(len(a.recent))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.goalState.form != nil {
			a.goalState.form = a.goalState.form.WithWidth(a.contentWidth() - 4)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.goalState.editing() {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabTransactions {
				a.txState.move(-1, len(a.recent))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabTransactions {
				a.txState.move(1, len(a.recent))
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}

		// The goal form intercepts all keys while open.
		if a.goalState.editing() {
			return a.updateGoalForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch a.activeTab {
		case tabTransactions:
			if a.txState.handleKey(key, len(a.recent), a.pageSize()) {
				return a, nil
			}
		case tabGoal:
			if key == "enter" || key == "e" {
				return a.openGoalForm()
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, refreshCmd(a.tracker)
			}
			return a, nil
		case "R":
			a.autoRefresh = !a.autoRefresh
			if a.refreshInterval <= 0 {
				a.refreshInterval = 5 * time.Minute
			}
			return a, nil
		case "left", "h":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "l", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case ResultMsg:
		a.result = msg.Result
		a.loaded = true
		a.refreshing = false
		a.loadTime = msg.Elapsed
		a.lastRefresh = a.now()
		if msg.Result.Cycle.HomeRun {
			a.homeRunTicks = homeRunFlash
		}
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.homeRunTicks > 0 {
			a.homeRunTicks--
		}
		if a.loaded && a.autoRefresh && !a.refreshing && a.now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshCmd(a.tracker))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks) to the goal form.
	if a.goalState.editing() {
		return a.updateGoalForm(msg)
	}
	return a, nil
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) pageSize() int {
	n := a.height - 12
	if n < 5 {
		n = 5
	}
	return n
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  homerun needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("⌂ homerun"))
	b.WriteString(subtitleStyle.Render(" · downpayment tracker"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Fetching transactions from " + a.tracker.SourceName() + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d t w g", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in transactions"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"e Enter", "Edit goal (Goal tab)"},
			{"Esc", "Cancel edit"},
			{"r", "Refresh now"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("⌂ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	status := components.Status{
		Source:      a.tracker.SourceName(),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	}
	if !a.lastRefresh.IsZero() {
		status.Age = formatAge(a.now().Sub(a.lastRefresh))
	}
	if a.result.FetchErr != nil {
		status.Message = "fetch failed: " + truncStr(a.result.FetchErr.Error(), 40)
	}
	statusBar := components.RenderStatusBar(w, status)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case tabWeeks:
		content = a.renderWeeksTab(cw)
	case tabGoal:
		content = a.renderGoalTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refreshCmd runs one tracker refresh off the UI goroutine.
func refreshCmd(tr *pipeline.Tracker) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		res := tr.Refresh(ctx)
		return ResultMsg{Result: res, Elapsed: time.Since(start)}
	}
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
