package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the state of the savings model after one evaluation.
type Snapshot struct {
	At           time.Time
	WeekID       int64
	Transactions int
	Saved        decimal.Decimal
	Goal         decimal.Decimal
	WeeklyTarget decimal.Decimal
	Percent      float64
	Accumulator  decimal.Decimal
	HomeRunsLeft int
	WeeksGoalHit int
	HomeRun      bool
}

// WeeklyTotal is the net of all transaction amounts dated within one
// fixed-epoch week.
type WeeklyTotal struct {
	WeekID int64
	Start  time.Time
	Total  decimal.Decimal
	Count  int
}

// CategoryTotal is the net amount and count of transactions sharing a
// top-level category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// Flows splits a transaction batch into money in and money out.
type Flows struct {
	Income decimal.Decimal
	Spend  decimal.Decimal // negative or zero
	Net    decimal.Decimal
}
