// Package plaid is a small client for the Plaid REST API: transactions,
// balances and the sandbox token bootstrap.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	requestTimeout = 15 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	pageSize       = 500
	apiVersion     = "2020-09-14"

	// SandboxInstitution is the First Platypus Bank test institution.
	SandboxInstitution = "ins_109511"
)

var (
	// ErrUnauthorized indicates bad API keys or an invalid access token.
	ErrUnauthorized = errors.New("plaid: unauthorized")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("plaid: rate limited")
)

// Client talks to one Plaid environment.
type Client struct {
	clientID string
	secret   string
	baseURL  string
	http     *http.Client
}

// NewClient creates a client for the given credentials and environment.
// Returns nil if either credential is empty.
func NewClient(clientID, secret string, env Environment) *Client {
	clientID = strings.TrimSpace(clientID)
	secret = strings.TrimSpace(secret)
	if clientID == "" || secret == "" {
		return nil
	}
	base, ok := hosts[env]
	if !ok {
		base = hosts[Sandbox]
	}
	return &Client{
		clientID: clientID,
		secret:   secret,
		baseURL:  base,
		http:     &http.Client{},
	}
}

// WithBaseURL points the client at a different host, e.g. a test server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Transactions returns every transaction dated within [start, end],
// following count/offset pagination until total_transactions is reached.
func (c *Client) Transactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error) {
	req := transactionsRequest{
		AccessToken: accessToken,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		Options:     transactionsOptions{Count: pageSize},
	}

	var all []Transaction
	for {
		var resp transactionsResponse
		if err := c.post(ctx, "/transactions/get", req, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Transactions...)

		if len(resp.Transactions) == 0 || len(all) >= resp.TotalTransactions {
			return all, nil
		}
		req.Options.Offset = len(all)
	}
}

// Balances returns the accounts of an item with real-time balances.
func (c *Client) Balances(ctx context.Context, accessToken string) ([]Account, error) {
	var resp balanceResponse
	body := map[string]string{"access_token": accessToken}
	if err := c.post(ctx, "/accounts/balance/get", body, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// CreateSandboxPublicToken creates a public token for a sandbox institution
// without going through Link.
func (c *Client) CreateSandboxPublicToken(ctx context.Context, institutionID string, products []string) (string, error) {
	if len(products) == 0 {
		products = []string{"transactions"}
	}
	var resp sandboxTokenResponse
	req := sandboxTokenRequest{InstitutionID: institutionID, InitialProducts: products}
	if err := c.post(ctx, "/sandbox/public_token/create", req, &resp); err != nil {
		return "", err
	}
	return resp.PublicToken, nil
}

// ExchangePublicToken swaps a public token for a long-lived access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error) {
	var resp exchangeResponse
	body := map[string]string{"public_token": publicToken}
	if err := c.post(ctx, "/item/public_token/exchange", body, &resp); err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.ItemID, nil
}

// post sends an authenticated JSON request and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("plaid: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("plaid: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("PLAID-CLIENT-ID", c.clientID)
	req.Header.Set("PLAID-SECRET", c.secret)
	req.Header.Set("Plaid-Version", apiVersion)
	req.Header.Set("User-Agent", "homerun/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plaid: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("plaid: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("plaid: parsing %s: %w", path, err)
	}
	return nil
}

// classify turns a non-2xx response into an error, wrapping the sentinel
// errors for auth and rate-limit failures so callers can use errors.Is.
func classify(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr = nil
	}

	var sentinel error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case apiErr != nil && apiErr.Type == "RATE_LIMIT_EXCEEDED":
		sentinel = ErrRateLimited
	case apiErr != nil && isAuthCode(apiErr.Code):
		sentinel = ErrUnauthorized
	}

	switch {
	case sentinel != nil && apiErr != nil:
		return fmt.Errorf("%w: %s", sentinel, apiErr.Message)
	case sentinel != nil:
		return sentinel
	case apiErr != nil:
		return apiErr
	}
	return fmt.Errorf("plaid: unexpected status %d", status)
}

func isAuthCode(code string) bool {
	switch code {
	case "INVALID_API_KEYS", "INVALID_ACCESS_TOKEN", "ITEM_LOGIN_REQUIRED", "UNAUTHORIZED_ENVIRONMENT":
		return true
	}
	return false
}
