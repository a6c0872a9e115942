package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount decodes a polymorphic JSON amount: a number (12.5), a numeric
// string ("12.50", "$12.50") or null. Anything missing or unparseable is a
// zero contribution, never an error.
func ParseAmount(raw json.RawMessage) decimal.Decimal {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return decimal.Zero
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseAmountString(s)
	}

	return decimal.Zero
}

// ParseAmountString parses a textual amount such as "1,525.50" or "-$12".
// Unparseable input yields zero.
func ParseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, "$", "", 1)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
