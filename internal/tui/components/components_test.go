package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, total := range []int{80, 97, 120, 181} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Errorf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(80, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no styling below the short card", i)
		}
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 44 {
			t.Errorf("line %d width = %d, want 44", i, w)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('w'); got != 2 {
		t.Errorf("TabIdxByKey('w') = %d, want 2", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestColorForPct(t *testing.T) {
	th := theme.Active
	tests := []struct {
		pct  float64
		want lipgloss.Color
	}{
		{0, th.Red},
		{30, th.Orange},
		{60, th.Yellow},
		{80, th.Green},
		{100, th.GreenBright},
	}
	for _, tt := range tests {
		if got := ColorForPct(tt.pct); got != tt.want {
			t.Errorf("ColorForPct(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestWeekDots(t *testing.T) {
	dots := stripANSI(WeekDots(3, 10, 40))
	if strings.Count(dots, "●") != 3 || strings.Count(dots, "·") != 7 {
		t.Errorf("WeekDots(3, 10) = %q", dots)
	}
	// 260 weeks compressed into 26 cells; one hit still shows.
	dots = stripANSI(WeekDots(1, 260, 26))
	if strings.Count(dots, "●") != 1 || lipgloss.Width(dots) != 26 {
		t.Errorf("WeekDots(1, 260, 26) = %q", dots)
	}
}

func TestWeeklyBarChart(t *testing.T) {
	start := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	weeks := []model.WeeklyTotal{
		{WeekID: 2829, Start: start.AddDate(0, 0, 7), Total: decimal.NewFromInt(-40)},
		{WeekID: 2828, Start: start, Total: decimal.NewFromInt(120)},
	}
	out := WeeklyBarChart(weeks, 40, 8)
	if strings.TrimSpace(stripANSI(out)) == "" {
		t.Fatal("empty chart")
	}
	if WeeklyBarChart(nil, 40, 8) != "" {
		t.Error("chart of no weeks should be empty")
	}
	if got := ChartWeeks(100, 40); got != 20 {
		t.Errorf("ChartWeeks(100, 40) = %d, want 20", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
