// Package pipeline connects a transaction source to the savings model:
// fetch, persist, derive progress and run the weekly cycle.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/savings"

	"github.com/shopspring/decimal"
)

// FilterByTime returns transactions dated within [since, until].
// A zero bound is open; undated transactions only pass with both bounds open.
func FilterByTime(txs []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txs
	}
	var out []model.Transaction
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		if !since.IsZero() && tx.Date.Before(since) {
			continue
		}
		if !until.IsZero() && tx.Date.After(until) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// maxGapFillWeeks bounds the zero-week fill so one outlier date cannot
// allocate centuries of empty weeks.
const maxGapFillWeeks = 10 * savings.WeeksPerYear

// WeeklyTotals buckets dated transactions into fixed-epoch weeks, most
// recent first. Weeks between the first and last bucket with no activity
// are included as zeros so charts show the gaps, unless the span exceeds
// maxGapFillWeeks.
func WeeklyTotals(txs []model.Transaction) []model.WeeklyTotal {
	weeks := make(map[int64]*model.WeeklyTotal)
	var lo, hi int64
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		id := savings.WeekID(tx.Date)
		wt, ok := weeks[id]
		if !ok {
			wt = &model.WeeklyTotal{WeekID: id, Start: savings.WeekStart(id), Total: decimal.Zero}
			weeks[id] = wt
			if len(weeks) == 1 || id < lo {
				lo = id
			}
			if len(weeks) == 1 || id > hi {
				hi = id
			}
		}
		wt.Total = wt.Total.Add(tx.Amount)
		wt.Count++
	}
	if len(weeks) == 0 {
		return nil
	}

	if hi-lo <= maxGapFillWeeks {
		for id := lo; id <= hi; id++ {
			if _, ok := weeks[id]; !ok {
				weeks[id] = &model.WeeklyTotal{WeekID: id, Start: savings.WeekStart(id), Total: decimal.Zero}
			}
		}
	}

	out := make([]model.WeeklyTotal, 0, len(weeks))
	for _, wt := range weeks {
		out = append(out, *wt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekID > out[j].WeekID
	})
	return out
}

// AggregateCategories totals transactions by their top-level category,
// largest absolute total first.
func AggregateCategories(txs []model.Transaction) []model.CategoryTotal {
	cats := make(map[string]*model.CategoryTotal)
	for _, tx := range txs {
		name := "Uncategorized"
		if len(tx.Category) > 0 && strings.TrimSpace(tx.Category[0]) != "" {
			name = strings.TrimSpace(tx.Category[0])
		}
		ct, ok := cats[name]
		if !ok {
			ct = &model.CategoryTotal{Category: name, Total: decimal.Zero}
			cats[name] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.Count++
	}

	out := make([]model.CategoryTotal, 0, len(cats))
	for _, ct := range cats {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Total.Abs(), out[j].Total.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SplitFlows sums income and spend separately.
func SplitFlows(txs []model.Transaction) model.Flows {
	f := model.Flows{Income: decimal.Zero, Spend: decimal.Zero}
	for _, tx := range txs {
		if tx.Amount.IsNegative() {
			f.Spend = f.Spend.Add(tx.Amount)
		} else {
			f.Income = f.Income.Add(tx.Amount)
		}
	}
	f.Net = f.Income.Add(f.Spend)
	return f
}

// SortByDate orders transactions newest first; undated ones go last.
func SortByDate(txs []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
