package source

import (
	"context"
	"time"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/plaid"
)

// Plaid reads the last N days of transactions straight from Plaid.
type Plaid struct {
	client      *plaid.Client
	accessToken string
	days        int
	invert      bool
	now         func() time.Time
}

// NewPlaid creates a Plaid source. When invert is set, amounts are negated
// so that spends are negative like every other source.
func NewPlaid(client *plaid.Client, accessToken string, days int, invert bool) *Plaid {
	if days <= 0 {
		days = 30
	}
	return &Plaid{
		client:      client,
		accessToken: accessToken,
		days:        days,
		invert:      invert,
		now:         time.Now,
	}
}

// Name implements Source.
func (p *Plaid) Name() string { return "plaid" }

// Fetch implements Source.
func (p *Plaid) Fetch(ctx context.Context) ([]model.Transaction, error) {
	end := p.now()
	start := end.AddDate(0, 0, -p.days)

	raw, err := p.client.Transactions(ctx, p.accessToken, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]model.Transaction, 0, len(raw))
	for _, r := range raw {
		tx := fromPlaid(r)
		if p.invert {
			tx.Amount = tx.Amount.Neg()
		}
		out = append(out, tx)
	}
	return out, nil
}

func fromPlaid(r plaid.Transaction) model.Transaction {
	merchant := ""
	if r.MerchantName != nil {
		merchant = *r.MerchantName
	}
	return model.Transaction{
		ID:       r.TransactionID,
		Name:     r.Name,
		Amount:   model.ParseAmount(r.Amount),
		Date:     parseDate(r.Date),
		Merchant: merchant,
		Category: r.Category,
		Pending:  r.Pending,
	}
}

// Balances lists the accounts linked to the access token.
func (p *Plaid) Balances(ctx context.Context) ([]model.AccountBalance, error) {
	accounts, err := p.client.Balances(ctx, p.accessToken)
	if err != nil {
		return nil, err
	}
	out := make([]model.AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.AccountBalance{
			AccountID: a.AccountID,
			Name:      a.Name,
			Mask:      a.Mask,
			Subtype:   a.Subtype,
			Current:   a.Balances.Current,
			Available: a.Balances.Available,
			Currency:  a.Balances.Currency,
		})
	}
	return out, nil
}
