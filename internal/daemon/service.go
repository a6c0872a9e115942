// Package daemon provides the long-running background savings monitor.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/notifier"
	"github.com/homerun-app/homerun/internal/pipeline"
)

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventProgressDelta = "progress_delta"
	EventHomeRun       = "home_run"
	EventGoalReached   = "goal_reached"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir      string
	Source       string
	Interval     time.Duration
	DigestCron   string // empty disables the weekly digest
	Addr         string
	EventsBuffer int
}

// Snapshot is a compact savings state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	WeekID          int64     `json:"week_id"`
	Transactions    int       `json:"transactions"`
	SavedUSD        float64   `json:"saved_usd"`
	GoalUSD         float64   `json:"goal_usd"`
	WeeklyTargetUSD float64   `json:"weekly_target_usd"`
	ProgressPercent float64   `json:"progress_percent"`
	AccumulatorUSD  float64   `json:"accumulator_usd"`
	HomeRunsLeft    int       `json:"home_runs_left"`
	WeeksGoalHit    int       `json:"weeks_goal_hit"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Transactions    int     `json:"transactions"`
	SavedUSD        float64 `json:"saved_usd"`
	ProgressPercent float64 `json:"progress_percent"`
	AccumulatorUSD  float64 `json:"accumulator_usd"`
	HomeRunsLeft    int     `json:"home_runs_left"`
	WeeksGoalHit    int     `json:"weeks_goal_hit"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.SavedUSD == 0 &&
		d.ProgressPercent == 0 &&
		d.AccumulatorUSD == 0 &&
		d.HomeRunsLeft == 0 &&
		d.WeeksGoalHit == 0
}

// Event is emitted whenever the savings snapshot updates.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	Source          string    `json:"source"`
	DigestCron      string    `json:"digest_cron,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	tracker  *pipeline.Tracker
	notifier notifier.Notifier

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	reached     bool
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// minInterval keeps polls from hammering the transaction source.
const minInterval = time.Minute

// New returns a new daemon service polling tracker. A nil notifier
// disables notifications.
func New(cfg Config, tracker *pipeline.Tracker, n notifier.Notifier) *Service {
	switch {
	case cfg.Interval <= 0:
		cfg.Interval = 15 * time.Minute
	case cfg.Interval < minInterval:
		log.Printf("[WARN] daemon: interval %s below %s, using %s", cfg.Interval, minInterval, minInterval)
		cfg.Interval = minInterval
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8790"
	}
	if n == nil {
		n = notifier.Noop{}
	}

	return &Service{
		cfg:       cfg,
		tracker:   tracker,
		notifier:  n,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the daemon HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and the cron schedules until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), func() { s.pollOnce(ctx) }); err != nil {
		return fmt.Errorf("register poll job: %w", err)
	}
	if s.cfg.DigestCron != "" {
		if _, err := c.AddFunc(s.cfg.DigestCron, func() { s.sendDigest(ctx) }); err != nil {
			return fmt.Errorf("register digest job %q: %w", s.cfg.DigestCron, err)
		}
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	c.Start()
	log.Printf("[INFO] daemon polling every %s, serving on %s", s.cfg.Interval, s.cfg.Addr)
	defer func() { <-c.Stop().Done() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	res := s.tracker.Refresh(ctx)
	now := res.Snapshot.At
	snap := snapshotFromModel(res.Snapshot)

	var events []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot
	wasReached := s.reached

	s.hasSnapshot = true
	s.snapshot = snap
	s.reached = res.Progress.Reached()
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	if res.FetchErr != nil {
		s.lastError = res.FetchErr.Error()
	}

	newEvent := func(typ string, d Delta) Event {
		s.nextEventID++
		return Event{ID: s.nextEventID, Type: typ, Timestamp: now, Snapshot: snap, Delta: d}
	}

	if !prevExists {
		events = append(events, newEvent(EventSnapshot, Delta{}))
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		events = append(events, newEvent(EventProgressDelta, delta))
	}
	if res.Cycle.HomeRun {
		events = append(events, newEvent(EventHomeRun, Delta{}))
	}
	if s.reached && !wasReached && prevExists {
		events = append(events, newEvent(EventGoalReached, Delta{}))
	}
	s.mu.Unlock()

	if res.FetchErr != nil {
		log.Printf("[WARN] daemon poll: %v", res.FetchErr)
	}

	for _, ev := range events {
		s.publishEvent(ev)
		switch ev.Type {
		case EventHomeRun:
			s.notify(ctx, notifier.FormatHomeRun(res.Snapshot))
		case EventGoalReached:
			s.notify(ctx, notifier.FormatGoalReached(res.Snapshot))
		}
	}
}

func (s *Service) sendDigest(ctx context.Context) {
	res, ok := s.tracker.Current()
	if !ok {
		return
	}
	weeks := pipeline.WeeklyTotals(res.Transactions)
	cats := pipeline.AggregateCategories(res.Transactions)
	s.notify(ctx, notifier.FormatWeeklyDigest(res.Snapshot, weeks, cats))
	log.Println("[INFO] weekly digest sent")
}

func (s *Service) notify(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		log.Printf("[ERROR] notify: %v", err)
	}
}

func snapshotFromModel(m model.Snapshot) Snapshot {
	saved, _ := m.Saved.Float64()
	goal, _ := m.Goal.Float64()
	target, _ := m.WeeklyTarget.Float64()
	acc, _ := m.Accumulator.Float64()
	return Snapshot{
		At:              m.At,
		WeekID:          m.WeekID,
		Transactions:    m.Transactions,
		SavedUSD:        saved,
		GoalUSD:         goal,
		WeeklyTargetUSD: target,
		ProgressPercent: m.Percent,
		AccumulatorUSD:  acc,
		HomeRunsLeft:    m.HomeRunsLeft,
		WeeksGoalHit:    m.WeeksGoalHit,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Transactions:    curr.Transactions - prev.Transactions,
		SavedUSD:        curr.SavedUSD - prev.SavedUSD,
		ProgressPercent: curr.ProgressPercent - prev.ProgressPercent,
		AccumulatorUSD:  curr.AccumulatorUSD - prev.AccumulatorUSD,
		HomeRunsLeft:    curr.HomeRunsLeft - prev.HomeRunsLeft,
		WeeksGoalHit:    curr.WeeksGoalHit - prev.WeeksGoalHit,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Source:          s.cfg.Source,
		DigestCron:      s.cfg.DigestCron,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
