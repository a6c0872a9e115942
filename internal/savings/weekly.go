package savings

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WeekMillis is the length of one week in milliseconds.
const WeekMillis int64 = 7 * 24 * 60 * 60 * 1000

// WeekID counts whole 7-day periods since the Unix epoch. It is not aligned
// to ISO weeks; week 0 starts on Thursday 1970-01-01 UTC.
func WeekID(t time.Time) int64 {
	ms := t.UnixMilli()
	id := ms / WeekMillis
	if ms%WeekMillis != 0 && ms < 0 {
		id--
	}
	return id
}

// WeekStart returns the first instant of the given week id.
func WeekStart(id int64) time.Time {
	return time.UnixMilli(id * WeekMillis).UTC()
}

// WeeklyState is the running weekly home-run counter.
type WeeklyState struct {
	Accumulator  decimal.Decimal
	HomeRunsLeft int
	WeeksGoalHit int
}

// NewWeeklyState returns the initial state for a goal: nothing accumulated
// and one home run to go for every week of the saving period.
func NewWeeklyState(g Goal) WeeklyState {
	left := g.TotalWeeks()
	if left < 0 {
		left = 0
	}
	return WeeklyState{
		Accumulator:  decimal.Zero,
		HomeRunsLeft: left,
	}
}

// Done reports whether no home runs are left.
func (s WeeklyState) Done() bool {
	return s.HomeRunsLeft <= 0
}

// Cycle is the outcome of one weekly evaluation.
type Cycle struct {
	State   WeeklyState
	WeekID  int64
	NewWeek bool // accumulator was reset for a new week
	HomeRun bool // the weekly target was met on this evaluation
}

// EvaluateWeeklyCycle folds one observation of saved into the weekly state.
//
// Within the week recorded in the cursor store, saved is added to the
// accumulator. Otherwise the current week is written to the store and the
// accumulator restarts at saved. When the accumulator reaches target a home
// run is counted and the accumulator is reset to zero.
//
// The call is not idempotent: each call is a new observation. An unreadable
// cursor counts as no prior week. A target that is not positive never
// triggers a home run.
func EvaluateWeeklyCycle(
	ctx context.Context,
	state WeeklyState,
	saved, target decimal.Decimal,
	now time.Time,
	cursor CursorStore,
) Cycle {
	current := WeekID(now)
	last, ok := readCursor(ctx, cursor)

	c := Cycle{State: state, WeekID: current}
	if ok && last == current {
		c.State.Accumulator = c.State.Accumulator.Add(saved)
	} else {
		// The stored week only moves forward; a clock that went backwards
		// still resets the accumulator but leaves the cursor alone.
		if !ok || current > last {
			if err := cursor.Set(ctx, CursorKey, strconv.FormatInt(current, 10)); err != nil {
				log.Printf("[WARN] savings: writing week cursor: %v", err)
			}
		}
		c.State.Accumulator = saved
		c.NewWeek = true
	}

	if target.IsPositive() && c.State.Accumulator.GreaterThanOrEqual(target) {
		if c.State.HomeRunsLeft > 0 {
			c.State.HomeRunsLeft--
		}
		c.State.WeeksGoalHit++
		c.State.Accumulator = decimal.Zero
		c.HomeRun = true
	}

	return c
}

// readCursor returns the stored week id. Missing, unreadable or non-numeric
// values all read as absent.
func readCursor(ctx context.Context, cursor CursorStore) (int64, bool) {
	raw, ok, err := cursor.Get(ctx, CursorKey)
	if err != nil {
		log.Printf("[WARN] savings: reading week cursor: %v", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
