// Package savings implements the downpayment savings progress model: goal
// derivation, progress toward the goal, and the weekly home-run cycle.
package savings

import (
	"math"

	"github.com/homerun-app/homerun/internal/model"

	"github.com/shopspring/decimal"
)

// WeeksPerYear is the fixed year length used to spread the goal over weeks.
const WeeksPerYear = 52

var hundred = decimal.NewFromInt(100)

// Goal holds the user-supplied goal parameters.
type Goal struct {
	HousePrice         decimal.Decimal
	DownpaymentPercent float64 // 0-100
	YearsToSave        int
}

// TotalWeeks is the number of weeks available to reach the goal.
func (g Goal) TotalWeeks() int {
	return g.YearsToSave * WeeksPerYear
}

// DownpaymentGoal returns HousePrice * DownpaymentPercent / 100.
// Inputs are not validated; out-of-range values propagate arithmetically.
// A NaN or infinite percent has no decimal form and counts as zero.
func DownpaymentGoal(g Goal) decimal.Decimal {
	pct := g.DownpaymentPercent
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	return g.HousePrice.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// WeeklyTarget returns the amount that must be saved each week to reach the
// downpayment goal in time. When there are no weeks to save in
// (YearsToSave <= 0) it returns zero and ok=false; callers must not compare
// against or display that value as a real target.
func WeeklyTarget(g Goal) (target decimal.Decimal, ok bool) {
	weeks := g.TotalWeeks()
	if weeks <= 0 {
		return decimal.Zero, false
	}
	return DownpaymentGoal(g).Div(decimal.NewFromInt(int64(weeks))), true
}

// AggregateSavedAmount sums every transaction amount in input order.
// Spends and deposits are both included, so the result can be negative.
func AggregateSavedAmount(txs []model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// ProgressPercent returns saved as a percentage of goal, clamped to [0, 100].
// A non-positive goal is already met when nothing has been lost: the result
// is 100 for saved >= 0 and 0 otherwise.
func ProgressPercent(saved, goal decimal.Decimal) float64 {
	if !goal.IsPositive() {
		if saved.IsNegative() {
			return 0
		}
		return 100
	}

	pct, _ := saved.Div(goal).Mul(hundred).Float64()
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Progress is the derived savings state for one transaction set and goal.
type Progress struct {
	Saved   decimal.Decimal
	Goal    decimal.Decimal
	Percent float64
}

// ComputeProgress derives the saved amount and progress percent.
func ComputeProgress(g Goal, txs []model.Transaction) Progress {
	saved := AggregateSavedAmount(txs)
	goal := DownpaymentGoal(g)
	return Progress{
		Saved:   saved,
		Goal:    goal,
		Percent: ProgressPercent(saved, goal),
	}
}

// Reached reports whether the downpayment goal has been met.
func (p Progress) Reached() bool {
	return p.Percent >= 100
}

// Remaining is how much is still missing from the goal, never negative.
func (p Progress) Remaining() decimal.Decimal {
	rem := p.Goal.Sub(p.Saved)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}
