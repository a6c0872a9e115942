package cmd

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/store"

	"github.com/shopspring/decimal"
)

func TestSetupValuesApply(t *testing.T) {
	for _, k := range []string{"PLAID_CLIENT_ID", "PLAID_SECRET", "PLAID_ACCESS_TOKEN", "HOMERUN_BACKEND_URL"} {
		t.Setenv(k, "")
	}

	cfg := config.DefaultConfig()
	v := newSetupValues(cfg)
	if v.source != config.SourceLedger {
		t.Fatalf("default source = %q, want ledger", v.source)
	}

	v.price = " 350000 "
	v.pct = "10"
	v.years = "3"
	v.days = "90"
	v.source = config.SourceBackend
	v.backend = "http://localhost:8000 "
	if err := v.apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Goal.HousePrice != 350000 || cfg.Goal.DownpaymentPercent != 10 || cfg.Goal.YearsToSave != 3 {
		t.Fatalf("goal = %+v", cfg.Goal)
	}
	if cfg.General.Days != 90 || cfg.General.Source != config.SourceBackend {
		t.Fatalf("general = %+v", cfg.General)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Fatalf("backend url = %q", cfg.Backend.URL)
	}

	v.years = "0"
	if err := v.apply(&cfg); err == nil {
		t.Fatal("zero years should be rejected")
	}
}

func TestSetupValidators(t *testing.T) {
	if positiveFloat("-1") == nil || positiveFloat("abc") == nil || positiveFloat("12.5") != nil {
		t.Fatal("positiveFloat")
	}
	if positiveFloat("NaN") == nil || positiveFloat("+Inf") == nil || positiveFloat("inf") == nil {
		t.Fatal("positiveFloat accepted a non-finite value")
	}
	if percentInput("101") == nil || percentInput("0") == nil || percentInput("20") != nil {
		t.Fatal("percentInput")
	}
	if percentInput("NaN") == nil {
		t.Fatal("percentInput accepted NaN")
	}
	if yearsInput("1.5") == nil || yearsInput("51") == nil || yearsInput("30") != nil {
		t.Fatal("yearsInput")
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", ":1", "--detach=true"})
	want := []string{"daemon", "--addr", ":1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"access-sandbox-1234567890": "access-s...7890",
		"abcdef":                    "abcd...",
		"abc":                       "****",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSinceLastCheck(t *testing.T) {
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer func() { _ = st.Close() }()
	rt := &runtime{store: st}
	ctx := context.Background()

	res := pipeline.Result{Evaluated: true}
	res.Progress.Saved = decimal.NewFromInt(150)
	if got := sinceLastCheck(ctx, rt, res); got != "-" {
		t.Fatalf("no history = %q, want -", got)
	}

	for _, v := range []int64{100, 150} {
		if err := st.RecordSnapshot(ctx, model.Snapshot{At: time.Now(), Saved: decimal.NewFromInt(v)}); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}
	if got := sinceLastCheck(ctx, rt, res); got != "+$50.00" {
		t.Fatalf("sinceLastCheck = %q, want +$50.00", got)
	}

	res.Evaluated = false
	if got := sinceLastCheck(ctx, rt, res); got != "+$0.00" {
		t.Fatalf("unchanged batch = %q, want +$0.00", got)
	}
}
