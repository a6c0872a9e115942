package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/savings"
	"github.com/homerun-app/homerun/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type stubSource struct{ txs []model.Transaction }

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Fetch(context.Context) ([]model.Transaction, error) { return s.txs, nil }

var testNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

func loadedApp(t *testing.T, txs []model.Transaction) App {
	t.Helper()
	goal := savings.Goal{HousePrice: decimal.NewFromInt(100000), DownpaymentPercent: 20, YearsToSave: 5}
	tr := pipeline.NewTracker(goal, pipeline.Options{
		Source: stubSource{txs: txs},
		Cursor: savings.NewMemoryCursor(),
		Now:    func() time.Time { return testNow },
	})
	a := NewApp(Options{Tracker: tr, Days: 30})
	a.now = func() time.Time { return testNow }

	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m, _ = m.Update(ResultMsg{Result: tr.Refresh(context.Background())})
	return m.(App)
}

func sampleTxs() []model.Transaction {
	return []model.Transaction{
		{ID: "a", Name: "Paycheck", Amount: decimal.RequireFromString("1525.50"), Date: testNow.AddDate(0, 0, -2)},
		{ID: "b", Name: "Groceries", Amount: decimal.RequireFromString("-80"), Date: testNow.AddDate(0, 0, -1),
			Category: []string{"Shops"}},
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0
		for i := 0; i < n; i++ {
			w := components.TabVisualWidth(components.Tabs[i], i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w
			if i < n-1 {
				pos++
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("x past last tab -> %d, want -1", got)
		}
	}
}

func TestResultPopulatesDashboard(t *testing.T) {
	a := loadedApp(t, sampleTxs())
	if !a.loaded {
		t.Fatal("app not loaded after ResultMsg")
	}
	if len(a.recent) != 2 || a.recent[0].ID != "b" {
		t.Fatalf("recent = %+v, want newest first", a.recent)
	}
	if a.homeRunTicks == 0 {
		t.Error("first refresh hit the weekly target; expected home run flash")
	}

	view := a.View()
	for _, want := range []string{"Saved", "Home Runs Left", "259", "Home run!"} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestGoalReachedBanner(t *testing.T) {
	txs := []model.Transaction{{ID: "big", Amount: decimal.NewFromInt(25000), Date: testNow}}
	a := loadedApp(t, txs)
	if !strings.Contains(a.View(), "Goal reached!") {
		t.Error("expected goal-reached banner at 100%")
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t, sampleTxs())
	for _, tc := range []struct {
		key  rune
		want int
	}{{'t', tabTransactions}, {'w', tabWeeks}, {'g', tabGoal}, {'d', tabDashboard}} {
		m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tc.key}})
		a = m.(App)
		if a.activeTab != tc.want {
			t.Errorf("key %q -> tab %d, want %d", tc.key, a.activeTab, tc.want)
		}
	}
}

func TestTransactionsNavigation(t *testing.T) {
	a := loadedApp(t, sampleTxs())
	a.activeTab = tabTransactions

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	a = m.(App)
	if a.txState.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", a.txState.cursor)
	}
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	a = m.(App)
	if a.txState.cursor != 1 {
		t.Fatalf("cursor moved past end: %d", a.txState.cursor)
	}
	if !strings.Contains(a.View(), "Groceries") {
		t.Error("transactions tab missing row")
	}
}

func TestApplyGoal(t *testing.T) {
	var saved config.GoalConfig
	a := loadedApp(t, sampleTxs())
	a.saveGoal = func(g config.GoalConfig) error {
		saved = g
		return nil
	}

	a.applyGoal(goalValues{price: "$300,000", percent: "10", years: "2"})
	if a.goalState.saveErr != nil || !a.goalState.saved {
		t.Fatalf("applyGoal: saved=%v err=%v", a.goalState.saved, a.goalState.saveErr)
	}
	if saved.HousePrice != 300000 || saved.YearsToSave != 2 {
		t.Errorf("persisted goal = %+v", saved)
	}
	if got := a.result.Progress.Goal; !got.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("goal = %s, want 30000", got)
	}
	// 104 weeks, one already hit
	if a.result.Cycle.State.HomeRunsLeft != 103 {
		t.Errorf("HomeRunsLeft = %d, want 103", a.result.Cycle.State.HomeRunsLeft)
	}

	a.applyGoal(goalValues{price: "300000", percent: "150", years: "2"})
	if a.goalState.saveErr == nil {
		t.Error("expected validation error for 150%")
	}

	for _, v := range []goalValues{
		{price: "NaN", percent: "20", years: "5"},
		{price: "+Inf", percent: "20", years: "5"},
		{price: "300000", percent: "NaN", years: "5"},
		{price: "300000", percent: "-Inf", years: "5"},
	} {
		a.applyGoal(v)
		if a.goalState.saveErr == nil {
			t.Errorf("applyGoal(%+v) accepted a non-finite value", v)
		}
	}
	if got := a.tracker.Goal().HousePrice; !got.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("HousePrice = %s after rejected edits, want 300000", got)
	}
}

func TestApplyGoalSaveFailureKeepsGoal(t *testing.T) {
	a := loadedApp(t, sampleTxs())
	a.saveGoal = func(config.GoalConfig) error { return errors.New("read-only config") }
	before := a.tracker.Goal()

	a.applyGoal(goalValues{price: "300000", percent: "10", years: "2"})
	if a.goalState.saveErr == nil || a.goalState.saved {
		t.Fatalf("saved=%v err=%v, want save error", a.goalState.saved, a.goalState.saveErr)
	}
	if after := a.tracker.Goal(); after.YearsToSave != before.YearsToSave {
		t.Fatalf("YearsToSave = %d after failed save, want %d", after.YearsToSave, before.YearsToSave)
	}
}
