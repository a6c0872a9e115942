package plaid

import (
	"encoding/json"
	"fmt"
)

// Environment selects the Plaid API host.
type Environment string

// Plaid environments.
const (
	Sandbox     Environment = "sandbox"
	Development Environment = "development"
	Production  Environment = "production"
)

var hosts = map[Environment]string{
	Sandbox:     "https://sandbox.plaid.com",
	Development: "https://development.plaid.com",
	Production:  "https://production.plaid.com",
}

// ParseEnvironment maps a config value to an Environment, defaulting to sandbox.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case "", Sandbox:
		return Sandbox, nil
	case Development:
		return Development, nil
	case Production:
		return Production, nil
	}
	return "", fmt.Errorf("plaid: unknown environment %q (want sandbox, development or production)", s)
}

// Transaction is a raw transaction from /transactions/get.
// Plaid reports outflows as positive amounts.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Name          string          `json:"name"`
	MerchantName  *string         `json:"merchant_name"`
	Amount        json.RawMessage `json:"amount"`
	Currency      string          `json:"iso_currency_code"`
	Date          string          `json:"date"`
	Category      []string        `json:"category"`
	Pending       bool            `json:"pending"`
}

// Account is an account with its balances.
type Account struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Mask      string   `json:"mask"`
	Type      string   `json:"type"`
	Subtype   string   `json:"subtype"`
	Balances  Balances `json:"balances"`
}

// Balances holds the reported balances of an account. Either may be absent.
type Balances struct {
	Current   *float64 `json:"current"`
	Available *float64 `json:"available"`
	Currency  string   `json:"iso_currency_code"`
}

type transactionsRequest struct {
	AccessToken string              `json:"access_token"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Options     transactionsOptions `json:"options"`
}

type transactionsOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type transactionsResponse struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	RequestID         string        `json:"request_id"`
}

type balanceResponse struct {
	Accounts  []Account `json:"accounts"`
	RequestID string    `json:"request_id"`
}

type sandboxTokenRequest struct {
	InstitutionID   string   `json:"institution_id"`
	InitialProducts []string `json:"initial_products"`
}

type sandboxTokenResponse struct {
	PublicToken string `json:"public_token"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// APIError is the error object Plaid returns with non-2xx responses.
type APIError struct {
	Type           string `json:"error_type"`
	Code           string `json:"error_code"`
	Message        string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
	Status         int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid: %s/%s (status %d): %s", e.Type, e.Code, e.Status, e.Message)
}
