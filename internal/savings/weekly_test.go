package savings

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func weekTime(id int64) time.Time {
	return WeekStart(id).Add(36 * time.Hour)
}

func TestWeekID(t *testing.T) {
	tests := []struct {
		at   time.Time
		want int64
	}{
		{time.UnixMilli(0), 0},
		{time.UnixMilli(WeekMillis - 1), 0},
		{time.UnixMilli(WeekMillis), 1},
		{time.UnixMilli(-1), -1},
		{time.UnixMilli(-WeekMillis), -1},
		{time.UnixMilli(-WeekMillis - 1), -2},
		{time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 2826},
	}
	for _, tt := range tests {
		if got := WeekID(tt.at); got != tt.want {
			t.Errorf("WeekID(%d ms) = %d, want %d", tt.at.UnixMilli(), got, tt.want)
		}
	}
}

func TestEvaluateWeeklyCycle_SameWeekAccumulates(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()
	state := WeeklyState{HomeRunsLeft: 10}
	now := weekTime(100)

	c := EvaluateWeeklyCycle(ctx, state, dec("10"), dec("50"), now, cursor)
	if !c.NewWeek {
		t.Fatal("first evaluation should start a new week")
	}
	if v, ok, _ := cursor.Get(ctx, CursorKey); !ok || v != "100" {
		t.Fatalf("cursor = %q (ok=%v), want 100", v, ok)
	}

	c = EvaluateWeeklyCycle(ctx, c.State, dec("10"), dec("50"), now.Add(time.Hour), cursor)
	if c.NewWeek {
		t.Fatal("second evaluation in the same week reported NewWeek")
	}
	if !c.State.Accumulator.Equal(dec("20")) {
		t.Fatalf("Accumulator = %s, want 20", c.State.Accumulator)
	}

	for i := 0; i < 2; i++ {
		c = EvaluateWeeklyCycle(ctx, c.State, dec("0"), dec("50"), now, cursor)
	}
	if !c.State.Accumulator.Equal(dec("20")) {
		t.Fatalf("Accumulator after zero observations = %s, want 20", c.State.Accumulator)
	}
}

func TestEvaluateWeeklyCycle_WeekBoundaryResets(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()
	const w = int64(2000)
	_ = cursor.Set(ctx, CursorKey, strconv.FormatInt(w, 10))

	state := WeeklyState{Accumulator: dec("40"), HomeRunsLeft: 5}
	c := EvaluateWeeklyCycle(ctx, state, dec("15"), dec("100"), weekTime(w+1), cursor)

	if !c.NewWeek {
		t.Fatal("NewWeek = false across a week boundary")
	}
	if !c.State.Accumulator.Equal(dec("15")) {
		t.Fatalf("Accumulator = %s, want 15 (reset, not 55)", c.State.Accumulator)
	}
	if v, _, _ := cursor.Get(ctx, CursorKey); v != strconv.FormatInt(w+1, 10) {
		t.Fatalf("cursor = %s, want %d", v, w+1)
	}
}

func TestEvaluateWeeklyCycle_HomeRun(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()
	state := WeeklyState{HomeRunsLeft: 2}
	now := weekTime(7)

	c := EvaluateWeeklyCycle(ctx, state, dec("76.92"), dec("76.92"), now, cursor)
	if !c.HomeRun {
		t.Fatal("HomeRun = false when the accumulator reached the target")
	}
	if c.State.HomeRunsLeft != 1 || c.State.WeeksGoalHit != 1 {
		t.Fatalf("left=%d hit=%d, want 1 and 1", c.State.HomeRunsLeft, c.State.WeeksGoalHit)
	}
	if !c.State.Accumulator.IsZero() {
		t.Fatalf("Accumulator after home run = %s, want 0", c.State.Accumulator)
	}

	c = EvaluateWeeklyCycle(ctx, c.State, dec("100"), dec("50"), now, cursor)
	c = EvaluateWeeklyCycle(ctx, c.State, dec("100"), dec("50"), now, cursor)
	if c.State.HomeRunsLeft != 0 {
		t.Fatalf("HomeRunsLeft = %d, want floor 0", c.State.HomeRunsLeft)
	}
	if c.State.WeeksGoalHit != 3 {
		t.Fatalf("WeeksGoalHit = %d, want 3", c.State.WeeksGoalHit)
	}
	if !c.State.Done() {
		t.Fatal("Done() = false with no home runs left")
	}
}

func TestEvaluateWeeklyCycle_UnusableTargetNeverFires(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()
	g := Goal{HousePrice: dec("100000"), DownpaymentPercent: 20, YearsToSave: 0}
	target, _ := WeeklyTarget(g)

	c := EvaluateWeeklyCycle(ctx, NewWeeklyState(g), dec("500"), target, weekTime(1), cursor)
	if c.HomeRun {
		t.Fatal("HomeRun fired against a zero target")
	}
	if !c.State.Accumulator.Equal(dec("500")) {
		t.Fatalf("Accumulator = %s, want 500", c.State.Accumulator)
	}
}

func TestEvaluateWeeklyCycle_CorruptCursor(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()
	_ = cursor.Set(ctx, CursorKey, "not-a-week")

	state := WeeklyState{Accumulator: dec("30"), HomeRunsLeft: 3}
	c := EvaluateWeeklyCycle(ctx, state, dec("5"), dec("100"), weekTime(9), cursor)
	if !c.NewWeek || !c.State.Accumulator.Equal(dec("5")) {
		t.Fatalf("corrupt cursor: NewWeek=%v acc=%s, want reset to 5", c.NewWeek, c.State.Accumulator)
	}
	if v, _, _ := cursor.Get(ctx, CursorKey); v != "9" {
		t.Fatalf("cursor = %q, want 9", v)
	}
}

type failingCursor struct{}

func (failingCursor) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingCursor) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestEvaluateWeeklyCycle_UnavailableCursor(t *testing.T) {
	state := WeeklyState{Accumulator: dec("30"), HomeRunsLeft: 3}
	c := EvaluateWeeklyCycle(context.Background(), state, dec("5"), dec("100"), weekTime(9), failingCursor{})
	if !c.State.Accumulator.Equal(dec("5")) {
		t.Fatalf("Accumulator = %s, want 5", c.State.Accumulator)
	}
}

func TestEvaluateWeeklyCycle_CursorNeverDecreases(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()
	_ = cursor.Set(ctx, CursorKey, "50")

	c := EvaluateWeeklyCycle(ctx, WeeklyState{HomeRunsLeft: 1}, dec("5"), dec("100"), weekTime(49), cursor)
	if v, _, _ := cursor.Get(ctx, CursorKey); v != "50" {
		t.Fatalf("cursor = %q, want it to stay at 50", v)
	}
	if !c.State.Accumulator.Equal(dec("5")) {
		t.Fatalf("Accumulator = %s, want 5", c.State.Accumulator)
	}
}

func TestNewWeeklyState(t *testing.T) {
	s := NewWeeklyState(Goal{YearsToSave: 2})
	if s.HomeRunsLeft != 104 || s.WeeksGoalHit != 0 || !s.Accumulator.IsZero() {
		t.Fatalf("NewWeeklyState = %+v", s)
	}
	if neg := NewWeeklyState(Goal{YearsToSave: -1}); neg.HomeRunsLeft != 0 {
		t.Fatalf("HomeRunsLeft for negative years = %d, want 0", neg.HomeRunsLeft)
	}
}
