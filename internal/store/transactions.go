package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/homerun-app/homerun/internal/model"

	"github.com/shopspring/decimal"
)

// SaveTransactions replaces the cached batch with txs, keeping input order.
// Records without an ID are keyed by their position.
func (s *Store) SaveTransactions(ctx context.Context, txs []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO transactions
		(id, name, amount, date, merchant, category, pending, seq, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, t := range txs {
		id := t.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		date := ""
		if !t.Date.IsZero() {
			date = t.Date.UTC().Format(time.RFC3339)
		}
		cats, _ := json.Marshal(t.Category)
		pending := 0
		if t.Pending {
			pending = 1
		}
		if _, err := stmt.ExecContext(ctx, id, t.Name, t.Amount.String(), date, t.Merchant, string(cats), pending, i, now); err != nil {
			return fmt.Errorf("saving transaction %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// LoadTransactions returns the cached batch in the order it was saved.
func (s *Store) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, amount, date, merchant, category, pending
		FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []model.Transaction{}
	for rows.Next() {
		var (
			t                    model.Transaction
			amount               string
			date, merchant, cats sql.NullString
			pending              int
		)
		if err := rows.Scan(&t.ID, &t.Name, &amount, &date, &merchant, &cats, &pending); err != nil {
			return nil, err
		}
		t.Amount, _ = decimal.NewFromString(amount)
		if date.Valid && date.String != "" {
			t.Date, _ = time.Parse(time.RFC3339, date.String)
		}
		t.Merchant = merchant.String
		if cats.Valid && cats.String != "" && cats.String != "null" {
			_ = json.Unmarshal([]byte(cats.String), &t.Category)
		}
		t.Pending = pending != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// TransactionCount returns the number of cached transactions.
func (s *Store) TransactionCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n)
	return n, err
}
