package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/plaid"
)

func TestBackendFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"transactions":[
			{"transaction_id":"t1","name":"Paycheck","amount":1525.50,"date":"2024-03-01","category":["Transfer","Payroll"]},
			{"id":"t2","name":"Coffee","amount":"-4.25","date":"2024-03-02T08:30:00Z","merchant_name":"Starbucks","category":"Food and Drink > Coffee"},
			{"name":"Mystery","amount":null},
			{"name":"Nothing"},
			{"name":"Garbage","amount":"lots"}
		]}}`))
	}))
	defer srv.Close()

	txs, err := NewBackend(srv.URL + "/").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(txs) != 5 {
		t.Fatalf("got %d transactions, want 5", len(txs))
	}
	if txs[0].ID != "t1" || txs[0].Amount.String() != "1525.5" {
		t.Fatalf("txs[0] = %+v", txs[0])
	}
	if txs[1].ID != "t2" || txs[1].Merchant != "Starbucks" || len(txs[1].Category) != 2 {
		t.Fatalf("txs[1] = %+v", txs[1])
	}
	if txs[1].Date.Day() != 2 {
		t.Fatalf("txs[1].Date = %v", txs[1].Date)
	}
	for _, tx := range txs[2:] {
		if !tx.Amount.IsZero() {
			t.Errorf("%s amount = %s, want 0", tx.Name, tx.Amount)
		}
	}
}

func TestBackendDecodeMixedTypes(t *testing.T) {
	txs, err := decodeEnvelope([]byte(`{"data":{"transactions":[
		{"id":1,"amount":10,"pending":"true"},
		{"id":"b","amount":5,"name":42,"merchant_name":null},
		7,
		{"transaction_id":99.5,"amount":"2.5","date":20240301,"pending":"nope"}
	]}}`))
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	if txs[0].ID != "1" || !txs[0].Pending || txs[0].Amount.String() != "10" {
		t.Fatalf("txs[0] = %+v", txs[0])
	}
	if txs[1].ID != "b" || txs[1].Name != "42" || txs[1].Merchant != "" {
		t.Fatalf("txs[1] = %+v", txs[1])
	}
	if txs[2].ID != "99.5" || txs[2].Pending || !txs[2].Date.IsZero() || txs[2].Amount.String() != "2.5" {
		t.Fatalf("txs[2] = %+v", txs[2])
	}
}

func TestBackendFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	txs, err := FetchOrEmpty(context.Background(), NewBackend(srv.URL))
	if err == nil {
		t.Fatal("FetchOrEmpty error = nil, want status error")
	}
	if txs == nil || len(txs) != 0 {
		t.Fatalf("FetchOrEmpty txs = %v, want empty non-nil slice", txs)
	}
}

func TestFetchOrEmptyNilSource(t *testing.T) {
	txs, err := FetchOrEmpty(context.Background(), nil)
	if !errors.Is(err, ErrNoSource) {
		t.Fatalf("err = %v, want ErrNoSource", err)
	}
	if len(txs) != 0 {
		t.Fatalf("txs = %v", txs)
	}
}

func TestParseLedger(t *testing.T) {
	in := strings.Join([]string{
		"date,name,amount,category",
		"2024-03-01,Paycheck,\"1,525.50\",Income",
		"2024-03-02,Rent,-1200,Housing > Rent",
		"2024-03-03,Oops,abc,",
		"2024-03-04,Short",
	}, "\n")

	txs, err := ParseLedger(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseLedger: %v", err)
	}
	if len(txs) != 4 {
		t.Fatalf("got %d rows, want 4", len(txs))
	}
	if txs[0].Amount.String() != "1525.5" {
		t.Fatalf("txs[0].Amount = %s", txs[0].Amount)
	}
	if got := txs[1].Category; len(got) != 2 || got[1] != "Rent" {
		t.Fatalf("txs[1].Category = %v", got)
	}
	if !txs[2].Amount.IsZero() || !txs[3].Amount.IsZero() {
		t.Fatal("bad amounts should contribute zero")
	}
	if txs[0].ID == "" || txs[0].ID == txs[1].ID {
		t.Fatal("generated IDs should be unique and non-empty")
	}

	again, _ := ParseLedger(strings.NewReader(in))
	if again[0].ID != txs[0].ID {
		t.Fatalf("generated IDs not stable across reads: %s vs %s", again[0].ID, txs[0].ID)
	}
}

func TestParseLedgerRequiresAmount(t *testing.T) {
	if _, err := ParseLedger(strings.NewReader("date,name\n2024-01-01,x\n")); err == nil {
		t.Fatal("ParseLedger without amount column should fail")
	}
	txs, err := ParseLedger(strings.NewReader(""))
	if err != nil || len(txs) != 0 {
		t.Fatalf("empty ledger = %v, %v", txs, err)
	}
}

func TestLedgerFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte("id,date,name,amount\nx1,2024-05-01,Deposit,100\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	txs, err := NewLedger(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "x1" {
		t.Fatalf("txs = %+v", txs)
	}
	if _, err := NewLedger(path + ".missing").Fetch(context.Background()); err == nil {
		t.Fatal("missing ledger should fail")
	}
}

func TestPlaidSourceInvertsAmounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_transactions":2,"transactions":[
			{"transaction_id":"p1","name":"Uber","amount":6.33,"date":"2024-03-01","merchant_name":"Uber"},
			{"transaction_id":"p2","name":"Payroll","amount":-500,"date":"2024-03-02"}
		]}`))
	}))
	defer srv.Close()

	client := plaid.NewClient("id", "secret", plaid.Sandbox).WithBaseURL(srv.URL)
	src := NewPlaid(client, "access-sandbox", 0, true)
	src.now = func() time.Time { return time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC) }

	txs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if txs[0].Amount.String() != "-6.33" || !txs[0].IsSpend() {
		t.Fatalf("txs[0].Amount = %s, want -6.33", txs[0].Amount)
	}
	if txs[1].Amount.String() != "500" {
		t.Fatalf("txs[1].Amount = %s, want 500", txs[1].Amount)
	}
	if txs[0].Merchant != "Uber" {
		t.Fatalf("Merchant = %q", txs[0].Merchant)
	}
}

func TestPlaidBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/balance/get" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"accounts":[
			{"account_id":"a1","name":"Plaid Checking","mask":"0000","subtype":"checking",
			 "balances":{"current":110,"available":100,"iso_currency_code":"USD"}},
			{"account_id":"a2","name":"Plaid CD","mask":"2222","subtype":"cd",
			 "balances":{"current":1000,"available":null}}
		]}`))
	}))
	defer srv.Close()

	client := plaid.NewClient("id", "secret", plaid.Sandbox).WithBaseURL(srv.URL)
	accts, err := NewPlaid(client, "access-sandbox", 0, true).Balances(context.Background())
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if len(accts) != 2 {
		t.Fatalf("len = %d, want 2", len(accts))
	}
	if accts[0].Mask != "0000" || accts[0].Current == nil || *accts[0].Current != 110 {
		t.Fatalf("accts[0] = %+v", accts[0])
	}
	if accts[1].Available != nil {
		t.Fatalf("accts[1].Available = %v, want nil", *accts[1].Available)
	}
}

func TestFromConfig(t *testing.T) {
	for _, k := range []string{"PLAID_CLIENT_ID", "PLAID_SECRET", "PLAID_ACCESS_TOKEN", "HOMERUN_BACKEND_URL"} {
		t.Setenv(k, "")
	}

	cfg := config.DefaultConfig()
	if _, err := FromConfig(cfg); !errors.Is(err, ErrNoSource) {
		t.Fatalf("FromConfig(defaults) err = %v, want ErrNoSource", err)
	}

	cfg.General.Source = config.SourceLedger
	cfg.Ledger.Path = "/tmp/ledger.csv"
	src, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig(ledger): %v", err)
	}
	if src.Name() != "ledger" {
		t.Fatalf("Name = %q", src.Name())
	}

	cfg.General.Source = "carrier-pigeon"
	if _, err := FromConfig(cfg); err == nil {
		t.Fatal("unknown source should fail")
	}
}

var _ Source = (*Backend)(nil)
var _ Source = (*Ledger)(nil)
var _ Source = (*Plaid)(nil)
