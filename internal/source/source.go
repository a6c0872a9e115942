// Package source fetches bank transactions from the configured provider:
// Plaid directly, an HTTP backend that proxies it, or a local CSV ledger.
package source

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/plaid"
)

// ErrNoSource indicates no transaction source is configured.
var ErrNoSource = errors.New("source: no transaction source configured")

// Source yields a finite batch of transactions.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Transaction, error)
}

// FetchOrEmpty fetches from src, degrading any failure to an empty list.
// The returned error is informational; the transactions are always usable.
func FetchOrEmpty(ctx context.Context, src Source) ([]model.Transaction, error) {
	if src == nil {
		return []model.Transaction{}, ErrNoSource
	}
	txs, err := src.Fetch(ctx)
	if err != nil {
		log.Printf("[WARN] source %s: %v (continuing with no transactions)", src.Name(), err)
		return []model.Transaction{}, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}

// FromConfig builds the source selected by the configuration.
func FromConfig(cfg config.Config) (Source, error) {
	switch name := config.ResolveSource(cfg); name {
	case config.SourcePlaid:
		p := config.GetPlaidCredentials(cfg)
		env, err := plaid.ParseEnvironment(p.Env)
		if err != nil {
			return nil, err
		}
		client := plaid.NewClient(p.ClientID, p.Secret, env)
		if client == nil {
			return nil, fmt.Errorf("source: plaid client_id and secret are required")
		}
		if p.AccessToken == "" {
			return nil, fmt.Errorf("source: plaid access_token is required (run `homerun sandbox`)")
		}
		return NewPlaid(client, p.AccessToken, cfg.General.Days, config.InvertPlaidAmounts(cfg)), nil
	case config.SourceBackend:
		url := config.GetBackendURL(cfg)
		if url == "" {
			return nil, fmt.Errorf("source: backend.url is required")
		}
		return NewBackend(url), nil
	case config.SourceLedger:
		if cfg.Ledger.Path == "" {
			return nil, fmt.Errorf("source: ledger.path is required")
		}
		return NewLedger(cfg.Ledger.Path), nil
	case "":
		return nil, ErrNoSource
	default:
		return nil, fmt.Errorf("source: unknown source %q", name)
	}
}
