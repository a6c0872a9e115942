package source

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/homerun-app/homerun/internal/model"
)

// RawRecord is one transaction-like object from an HTTP source. Every field
// is optional and kept raw, so one oddly typed field never fails the batch.
type RawRecord struct {
	ID            json.RawMessage `json:"id"`
	TransactionID json.RawMessage `json:"transaction_id"`
	Name          json.RawMessage `json:"name"`
	Merchant      json.RawMessage `json:"merchant"`
	MerchantName  json.RawMessage `json:"merchant_name"`
	Amount        json.RawMessage `json:"amount"`
	Date          json.RawMessage `json:"date"`
	Category      json.RawMessage `json:"category"`
	Pending       json.RawMessage `json:"pending"`
}

// envelope is the response body of GET /transactions. Records are decoded
// one at a time.
type envelope struct {
	Data struct {
		Transactions []json.RawMessage `json:"transactions"`
	} `json:"data"`
}

// toTransaction normalizes a raw record. Missing or malformed amounts
// become zero; an unparseable date becomes the zero time.
func (r RawRecord) toTransaction() model.Transaction {
	id := rawString(r.TransactionID)
	if id == "" {
		id = rawString(r.ID)
	}
	merchant := rawString(r.Merchant)
	if merchant == "" {
		merchant = rawString(r.MerchantName)
	}
	return model.Transaction{
		ID:       id,
		Name:     rawString(r.Name),
		Amount:   model.ParseAmount(r.Amount),
		Date:     parseDate(rawString(r.Date)),
		Merchant: merchant,
		Category: parseCategory(r.Category),
		Pending:  rawBool(r.Pending),
	}
}

// rawString reads a JSON string, or the literal text of a number. Anything
// else reads as empty.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// rawBool reads a JSON boolean or a "true"/"false" string.
func rawBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	v, err := strconv.ParseBool(strings.TrimSpace(rawString(raw)))
	return err == nil && v
}

// parseDate accepts a calendar date or an RFC3339 timestamp.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// parseCategory accepts either a list of tags or a single tag string.
func parseCategory(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return splitCategory(one)
	}
	return nil
}

// splitCategory splits "Food and Drink > Restaurants" style paths.
func splitCategory(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '>' || r == '|' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
