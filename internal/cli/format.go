// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a currency amount with separators and two decimals.
// e.g., 1625.5 -> "$1,625.50", -4.25 -> "-$4.25"
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg())
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "$" + s
	}
	return "$" + FormatNumber(n) + "." + frac
}

// FormatMoneyShort formats a currency amount compactly for narrow cells.
// e.g., 20000 -> "$20K", 1250000 -> "$1.2M", 76.92 -> "$76.92"
func FormatMoneyShort(d decimal.Decimal) string {
	f, _ := d.Float64()
	sign := ""
	if f < 0 {
		sign, f = "-", -f
	}
	switch {
	case f >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, f/1_000_000)
	case f >= 10_000:
		return fmt.Sprintf("%s$%.0fK", sign, f/1_000)
	case f >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, f/1_000)
	}
	return fmt.Sprintf("%s$%.2f", sign, f)
}

// FormatSigned formats an amount with an explicit sign.
// e.g., 100 -> "+$100.00", -4.25 -> "-$4.25"
func FormatSigned(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 percentage.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the change between two amounts with a sign.
func FormatDelta(current, previous decimal.Decimal) string {
	return FormatSigned(current.Sub(previous))
}

// FormatDate formats a transaction date; the zero time renders as "-".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02 2006")
}

// FormatWeek labels a week by its start date, e.g. "Feb 29".
func FormatWeek(start time.Time) string {
	return start.UTC().Format("Jan 02")
}

// FormatCategory joins a category path for display.
func FormatCategory(cats []string) string {
	if len(cats) == 0 {
		return "-"
	}
	return strings.Join(cats, " > ")
}

// Truncate shortens s to max runes with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
