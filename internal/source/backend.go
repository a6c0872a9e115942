package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/homerun-app/homerun/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
)

// Backend reads transactions from GET {baseURL}/transactions, which answers
// with {"data":{"transactions":[...]}}.
type Backend struct {
	baseURL string
	http    *http.Client
}

// NewBackend creates a backend source for baseURL.
func NewBackend(baseURL string) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Name implements Source.
func (b *Backend) Name() string { return "backend" }

// Fetch implements Source.
func (b *Backend) Fetch(ctx context.Context) ([]model.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("backend: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("backend: reading response: %w", err)
	}
	return decodeEnvelope(body)
}

func decodeEnvelope(body []byte) ([]model.Transaction, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("backend: parsing transactions: %w", err)
	}
	out := make([]model.Transaction, 0, len(env.Data.Transactions))
	for i, raw := range env.Data.Transactions {
		var r RawRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			log.Printf("[WARN] backend: skipping transaction %d: %v", i, err)
			continue
		}
		out = append(out, r.toTransaction())
	}
	return out, nil
}
