// Package model defines domain types for homerun transactions and progress.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one bank transaction as supplied by a transaction source.
// Amount is signed: negative is a spend, positive is income or a deposit.
// Everything except Amount is display metadata.
type Transaction struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Merchant string          `json:"merchant,omitempty"`
	Category []string        `json:"category,omitempty"`
	Pending  bool            `json:"pending,omitempty"`
}

// IsSpend reports whether the transaction moved money out of the account.
func (t Transaction) IsSpend() bool {
	return t.Amount.IsNegative()
}

// DateLayout is the calendar date format used by Plaid and the ledger file.
const DateLayout = "2006-01-02"

// AccountBalance is a bank account with its current balances.
type AccountBalance struct {
	AccountID string
	Name      string
	Mask      string
	Subtype   string
	Current   *float64
	Available *float64
	Currency  string
}
