package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/shopspring/decimal"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/savings"
	"github.com/homerun-app/homerun/internal/source"
)

// Recorder persists evaluation snapshots.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap model.Snapshot) error
}

// TransactionCache keeps the last fetched batch.
type TransactionCache interface {
	SaveTransactions(ctx context.Context, txs []model.Transaction) error
}

// Options configures a Tracker. Source and Cursor are required.
type Options struct {
	Source   source.Source
	Cursor   savings.CursorStore
	Recorder Recorder         // optional
	Cache    TransactionCache // optional
	Now      func() time.Time
}

// Result is the outcome of one Refresh.
type Result struct {
	Transactions []model.Transaction
	Goal         savings.Goal
	Progress     savings.Progress
	WeeklyTarget decimal.Decimal
	TargetOK     bool
	Cycle        savings.Cycle
	// Evaluated is false when the batch matched the previous one and the
	// weekly cycle was not run again.
	Evaluated bool
	Snapshot  model.Snapshot
	FetchErr  error
}

// Tracker owns the in-process weekly state and serialises evaluations.
type Tracker struct {
	mu       sync.Mutex
	goal     savings.Goal
	state    savings.WeeklyState
	src      source.Source
	cursor   savings.CursorStore
	recorder Recorder
	cache    TransactionCache
	now      func() time.Time

	lastHash  uint64
	hasLast   bool
	last      Result
	refreshed bool
}

// NewTracker creates a tracker for goal.
func NewTracker(goal savings.Goal, opts Options) *Tracker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		goal:     goal,
		state:    savings.NewWeeklyState(goal),
		src:      opts.Source,
		cursor:   opts.Cursor,
		recorder: opts.Recorder,
		cache:    opts.Cache,
		now:      now,
	}
}

// Refresh fetches the current batch and folds it into the model. Fetch
// failures degrade to an empty batch and are reported in Result.FetchErr.
func (t *Tracker) Refresh(ctx context.Context) Result {
	txs, fetchErr := source.FetchOrEmpty(ctx, t.src)
	return t.Apply(ctx, txs, fetchErr)
}

// Apply folds an already fetched batch into the model. The weekly cycle
// only runs when the batch differs from the previously applied one.
func (t *Tracker) Apply(ctx context.Context, txs []model.Transaction, fetchErr error) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cache != nil && fetchErr == nil {
		if err := t.cache.SaveTransactions(ctx, txs); err != nil {
			log.Printf("[WARN] pipeline: caching transactions: %v", err)
		}
	}

	at := t.now()
	res := t.derive(txs)
	res.FetchErr = fetchErr

	h, err := batchHash(txs)
	changed := err != nil || !t.hasLast || h != t.lastHash
	if changed {
		res.Cycle = savings.EvaluateWeeklyCycle(ctx, t.state, res.Progress.Saved, res.WeeklyTarget, at, t.cursor)
		t.state = res.Cycle.State
		res.Evaluated = true
		t.lastHash, t.hasLast = h, err == nil
	} else {
		res.Cycle = savings.Cycle{State: t.state, WeekID: savings.WeekID(at)}
	}

	res.Snapshot = model.Snapshot{
		At:           at,
		WeekID:       res.Cycle.WeekID,
		Transactions: len(txs),
		Saved:        res.Progress.Saved,
		Goal:         res.Progress.Goal,
		WeeklyTarget: res.WeeklyTarget,
		Percent:      res.Progress.Percent,
		Accumulator:  t.state.Accumulator,
		HomeRunsLeft: t.state.HomeRunsLeft,
		WeeksGoalHit: t.state.WeeksGoalHit,
		HomeRun:      res.Cycle.HomeRun,
	}

	if res.Evaluated && t.recorder != nil {
		if err := t.recorder.RecordSnapshot(ctx, res.Snapshot); err != nil {
			log.Printf("[WARN] pipeline: recording snapshot: %v", err)
		}
	}

	t.last = res
	t.refreshed = true
	return res
}

// derive computes the goal-dependent values for a batch. Caller holds mu.
func (t *Tracker) derive(txs []model.Transaction) Result {
	target, ok := savings.WeeklyTarget(t.goal)
	return Result{
		Transactions: txs,
		Goal:         t.goal,
		Progress:     savings.ComputeProgress(t.goal, txs),
		WeeklyTarget: target,
		TargetOK:     ok,
	}
}

// SetGoal replaces the goal. Derived values are recomputed against the last
// batch; when the number of weeks changes, the home runs left are reset to
// the new total minus the weeks already hit.
func (t *Tracker) SetGoal(g savings.Goal) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	if g.TotalWeeks() != t.goal.TotalWeeks() {
		left := g.TotalWeeks() - t.state.WeeksGoalHit
		if left < 0 {
			left = 0
		}
		t.state.HomeRunsLeft = left
	}
	t.goal = g

	res := t.derive(t.last.Transactions)
	res.Cycle = savings.Cycle{State: t.state, WeekID: t.last.Cycle.WeekID}
	res.Snapshot = t.last.Snapshot
	res.Snapshot.Goal = res.Progress.Goal
	res.Snapshot.WeeklyTarget = res.WeeklyTarget
	res.Snapshot.Percent = res.Progress.Percent
	res.Snapshot.HomeRunsLeft = t.state.HomeRunsLeft
	t.last = res
	return res
}

// Goal returns the current goal.
func (t *Tracker) Goal() savings.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.goal
}

// State returns the current weekly state.
func (t *Tracker) State() savings.WeeklyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Current returns the last result and whether any refresh has happened.
func (t *Tracker) Current() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.refreshed
}

// SourceName returns the name of the configured source.
func (t *Tracker) SourceName() string {
	if t.src == nil {
		return "none"
	}
	return t.src.Name()
}

type hashedTx struct {
	ID     string
	Amount string
	Date   string
}

// batchHash fingerprints the parts of a batch that matter to the model.
func batchHash(txs []model.Transaction) (uint64, error) {
	proj := make([]hashedTx, len(txs))
	for i, tx := range txs {
		proj[i] = hashedTx{
			ID:     tx.ID,
			Amount: tx.Amount.String(),
			Date:   tx.Date.UTC().Format(time.RFC3339),
		}
	}
	return hashstructure.Hash(proj, hashstructure.FormatV2, nil)
}
