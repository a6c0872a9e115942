package daemon

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/savings"

	"github.com/shopspring/decimal"
)

type staticSource struct {
	mu  sync.Mutex
	txs []model.Transaction
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Fetch(context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs, nil
}

func (s *staticSource) set(txs ...model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = txs
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
	return nil
}

func newTestService(t *testing.T, src *staticSource, n *recordingNotifier) *Service {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	goal := savings.Goal{HousePrice: decimal.NewFromInt(10000), DownpaymentPercent: 10, YearsToSave: 1}
	tr := pipeline.NewTracker(goal, pipeline.Options{
		Source: src,
		Cursor: savings.NewMemoryCursor(),
		Now:    func() time.Time { return now },
	})
	return New(Config{Interval: time.Minute, EventsBuffer: 10}, tr, n)
}

func amount(id string, v int64) model.Transaction {
	return model.Transaction{ID: id, Amount: decimal.NewFromInt(v)}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Transactions:    10,
		SavedUSD:        100.5,
		ProgressPercent: 1.0,
		AccumulatorUSD:  10,
		HomeRunsLeft:    52,
		WeeksGoalHit:    0,
	}
	curr := Snapshot{
		Transactions:    12,
		SavedUSD:        103.1,
		ProgressPercent: 1.5,
		AccumulatorUSD:  0,
		HomeRunsLeft:    51,
		WeeksGoalHit:    1,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Transactions != 2 {
		t.Fatalf("Transactions delta = %d, want 2", delta.Transactions)
	}
	if math.Abs(delta.SavedUSD-2.6) > 1e-9 {
		t.Fatalf("Saved delta = %.2f, want 2.60", delta.SavedUSD)
	}
	if delta.HomeRunsLeft != -1 || delta.WeeksGoalHit != 1 {
		t.Fatalf("home run deltas = %d/%d, want -1/1", delta.HomeRunsLeft, delta.WeeksGoalHit)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		DataDir:      ".",
		Interval:     10 * time.Minute,
		EventsBuffer: 2,
	}, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsEvents(t *testing.T) {
	src := &staticSource{}
	src.set(amount("a", 5))
	n := &recordingNotifier{}
	s := newTestService(t, src, n)
	ctx := context.Background()

	// goal 1000 over 52 weeks: target ~19.23
	s.pollOnce(ctx)
	s.pollOnce(ctx)
	src.set(amount("a", 5), amount("b", 20))
	s.pollOnce(ctx)
	src.set(amount("a", 5), amount("b", 20), amount("c", 2000))
	s.pollOnce(ctx)

	s.mu.RLock()
	var types []string
	for _, ev := range s.events {
		types = append(types, ev.Type)
	}
	s.mu.RUnlock()

	want := []string{EventSnapshot, EventProgressDelta, EventHomeRun, EventProgressDelta, EventHomeRun, EventGoalReached}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", types, want)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) != 3 {
		t.Fatalf("notifications = %d, want 3", len(n.msgs))
	}
	if !strings.Contains(n.msgs[2], "Downpayment goal reached") {
		t.Fatalf("last notification = %q", n.msgs[2])
	}
}

func TestSendDigest(t *testing.T) {
	src := &staticSource{}
	src.set(model.Transaction{ID: "a", Amount: decimal.NewFromInt(7), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	n := &recordingNotifier{}
	s := newTestService(t, src, n)

	s.sendDigest(context.Background())
	if len(n.msgs) != 0 {
		t.Fatal("digest sent before any poll")
	}
	s.pollOnce(context.Background())
	s.sendDigest(context.Background())
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "homerun weekly") {
		t.Fatalf("digest = %v", n.msgs)
	}
}

func TestStatusHandler(t *testing.T) {
	src := &staticSource{}
	src.set(amount("a", 250))
	s := newTestService(t, src, &recordingNotifier{})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.PollCount != 1 || st.Summary.SavedUSD != 250 || st.Summary.ProgressPercent != 25 {
		t.Fatalf("status = %+v", st)
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", health.StatusCode)
	}
}

func TestNewIntervalDefaults(t *testing.T) {
	tr := pipeline.NewTracker(savings.Goal{YearsToSave: 1}, pipeline.Options{Cursor: savings.NewMemoryCursor()})
	tests := []struct {
		in, want time.Duration
	}{
		{0, 15 * time.Minute},
		{10 * time.Second, time.Minute},
		{5 * time.Minute, 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := New(Config{Interval: tt.in}, tr, nil).cfg.Interval; got != tt.want {
			t.Errorf("New(Interval: %s).Interval = %s, want %s", tt.in, got, tt.want)
		}
	}
}
