package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1625.5", "$1,625.50"},
		{"-4.25", "-$4.25"},
		{"1234567.891", "$1,234,567.89"},
		{"76.923076923", "$76.92"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyShort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"76.92", "$76.92"},
		{"1250", "$1.2K"},
		{"20000", "$20K"},
		{"1250000", "$1.2M"},
		{"-1500", "-$1.5K"},
	}
	for _, tt := range tests {
		if got := FormatMoneyShort(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatMoneyShort(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignedAndDelta(t *testing.T) {
	if got := FormatSigned(decimal.NewFromInt(100)); got != "+$100.00" {
		t.Fatalf("FormatSigned = %q", got)
	}
	if got := FormatDelta(decimal.NewFromInt(10), decimal.NewFromInt(25)); got != "-$15.00" {
		t.Fatalf("FormatDelta = %q", got)
	}
}

func TestFormatMisc(t *testing.T) {
	if got := FormatPercent(8.1275); got != "8.1%" {
		t.Fatalf("FormatPercent = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Fatalf("FormatDate(zero) = %q", got)
	}
	if got := FormatCategory([]string{"Food and Drink", "Coffee"}); got != "Food and Drink > Coffee" {
		t.Fatalf("FormatCategory = %q", got)
	}
	if got := Truncate("Starbucks Reserve Roastery", 10); got != "Starbucks…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := FormatNumber(-1234567); got != "-1,234,567" {
		t.Fatalf("FormatNumber = %q", got)
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	if got := RenderProgressBar(250, 10); !strings.HasSuffix(got, "100.0%") {
		t.Fatalf("RenderProgressBar(250) = %q", got)
	}
	if got := RenderProgressBar(-5, 10); !strings.HasSuffix(got, "0.0%") {
		t.Fatalf("RenderProgressBar(-5) = %q", got)
	}
	if RenderProgressBar(50, 0) != "" {
		t.Fatal("zero width bar should be empty")
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-10, 0, 10}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Fatalf("RenderSparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("empty series should render empty")
	}
}

func TestRenderTableAlignsUnicode(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Amount"},
		Rows:    [][]string{{"Café…", "$1.00"}, {"Rent", "-$1,200.00"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
}
