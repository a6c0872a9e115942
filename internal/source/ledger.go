package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/homerun-app/homerun/internal/model"
)

// ledgerNamespace seeds name-based IDs for rows without an id column, so
// re-reading an unchanged file yields the same IDs.
var ledgerNamespace = uuid.MustParse("9f0a3b0e-5c1d-4b8e-a3f2-6d1e2c7b8a90")

func rowID(line int, rec []string) string {
	return uuid.NewSHA1(ledgerNamespace, []byte(fmt.Sprintf("%d|%s", line, strings.Join(rec, "\x1f")))).String()
}

// Ledger reads transactions from a CSV file with a header row naming at
// least date, name and amount. Optional columns are category, merchant and
// id. A row with a bad amount contributes zero.
type Ledger struct {
	path string
}

// NewLedger creates a ledger source for the CSV file at path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Name implements Source.
func (l *Ledger) Name() string { return "ledger" }

// Fetch implements Source.
func (l *Ledger) Fetch(_ context.Context) ([]model.Transaction, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	defer f.Close()
	return ParseLedger(f)
}

// ParseLedger decodes ledger CSV from r.
func ParseLedger(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Transaction{}, nil
		}
		return nil, fmt.Errorf("ledger: reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["amount"]; !ok {
		return nil, fmt.Errorf("ledger: header has no amount column")
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []model.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ledger: line %d: %w", line, err)
		}

		id := field(rec, "id")
		if id == "" {
			id = rowID(line, rec)
		}
		tx := model.Transaction{
			ID:       id,
			Name:     field(rec, "name"),
			Amount:   model.ParseAmountString(field(rec, "amount")),
			Date:     parseDate(field(rec, "date")),
			Merchant: field(rec, "merchant"),
			Category: splitCategory(field(rec, "category")),
		}
		out = append(out, tx)
	}
	return out, nil
}
