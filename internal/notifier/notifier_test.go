package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/model"

	"github.com/shopspring/decimal"
)

func testTelegram(url string) *Telegram {
	tg := NewTelegram("123:abc", "42", "")
	tg.apiBase = url
	tg.backoff = time.Millisecond
	return tg
}

func TestTelegramSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot123:abc/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := testTelegram(srv.URL).Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Fatalf("payload = %v", got)
	}
}

func TestTelegramRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := testTelegram(srv.URL).SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestTelegramGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testTelegram(srv.URL).SendWithRetry(context.Background(), "x", 1)
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	if _, ok := FromConfig(config.DefaultConfig()).(Noop); !ok {
		t.Fatal("unconfigured telegram should give Noop")
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "t")
	t.Setenv("TELEGRAM_CHAT_ID", "c")
	if _, ok := FromConfig(config.DefaultConfig()).(*Telegram); !ok {
		t.Fatal("env-configured telegram should give *Telegram")
	}
}

func TestFormatters(t *testing.T) {
	snap := model.Snapshot{
		At:           time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Saved:        decimal.RequireFromString("1625.50"),
		Goal:         decimal.NewFromInt(20000),
		WeeklyTarget: decimal.RequireFromString("76.923"),
		Percent:      8.1275,
		Accumulator:  decimal.NewFromInt(12),
		HomeRunsLeft: 259,
		WeeksGoalHit: 1,
	}
	hr := FormatHomeRun(snap)
	if !strings.Contains(hr, "$76.92") || !strings.Contains(hr, "Home runs left: 259") {
		t.Fatalf("FormatHomeRun = %q", hr)
	}

	weeks := []model.WeeklyTotal{{Start: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(70), Count: 2}}
	cats := []model.CategoryTotal{{Category: "Food & Drink", Total: decimal.NewFromInt(-50)}}
	d := FormatWeeklyDigest(snap, weeks, cats)
	for _, want := range []string{"2024-03-04", "8.1%", "Feb 29", "+$70.00", "Food &amp; Drink"} {
		if !strings.Contains(d, want) {
			t.Errorf("digest missing %q:\n%s", want, d)
		}
	}
	if !strings.Contains(FormatGoalReached(snap), "$20,000.00") {
		t.Fatal("FormatGoalReached missing goal")
	}
}
