package api

import (
	"encoding/json"
	"time"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"

	"github.com/shopspring/decimal"
)

// Money is serialized as a bare JSON number with exact decimal digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type transactionDTO struct {
	ID       string      `json:"transaction_id"`
	Name     string      `json:"name"`
	Amount   json.Number `json:"amount"`
	Date     string      `json:"date,omitempty"`
	Merchant string      `json:"merchant_name,omitempty"`
	Category []string    `json:"category,omitempty"`
	Pending  bool        `json:"pending"`
}

func toTransactionDTOs(txs []model.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		d := transactionDTO{
			ID:       tx.ID,
			Name:     tx.Name,
			Amount:   money(tx.Amount),
			Merchant: tx.Merchant,
			Category: tx.Category,
			Pending:  tx.Pending,
		}
		if !tx.Date.IsZero() {
			d.Date = tx.Date.Format(model.DateLayout)
		}
		out = append(out, d)
	}
	return out
}

type progressDTO struct {
	Source         string      `json:"source"`
	Transactions   int         `json:"transactions"`
	HousePrice     json.Number `json:"house_price"`
	DownpaymentPct float64     `json:"downpayment_percent"`
	YearsToSave    int         `json:"years_to_save"`
	TotalWeeks     int         `json:"total_weeks"`
	Goal           json.Number `json:"downpayment_goal"`
	WeeklyTarget   json.Number `json:"weekly_target"`
	WeeklyTargetOK bool        `json:"weekly_target_ok"`
	Saved          json.Number `json:"saved_amount"`
	Percent        float64     `json:"progress_percent"`
	Reached        bool        `json:"goal_reached"`
	Accumulator    json.Number `json:"weekly_accumulator"`
	HomeRunsLeft   int         `json:"home_runs_left"`
	WeeksGoalHit   int         `json:"weeks_goal_hit"`
	WeekID         int64       `json:"week_id"`
	UpdatedAt      time.Time   `json:"updated_at"`
	FetchError     string      `json:"fetch_error,omitempty"`
}

func toProgressDTO(source string, res pipeline.Result) progressDTO {
	d := progressDTO{
		Source:         source,
		Transactions:   len(res.Transactions),
		HousePrice:     money(res.Goal.HousePrice),
		DownpaymentPct: res.Goal.DownpaymentPercent,
		YearsToSave:    res.Goal.YearsToSave,
		TotalWeeks:     res.Goal.TotalWeeks(),
		Goal:           money(res.Progress.Goal),
		WeeklyTarget:   money(res.WeeklyTarget),
		WeeklyTargetOK: res.TargetOK,
		Saved:          money(res.Progress.Saved),
		Percent:        res.Progress.Percent,
		Reached:        res.Progress.Reached(),
		Accumulator:    money(res.Cycle.State.Accumulator),
		HomeRunsLeft:   res.Cycle.State.HomeRunsLeft,
		WeeksGoalHit:   res.Cycle.State.WeeksGoalHit,
		WeekID:         res.Cycle.WeekID,
		UpdatedAt:      res.Snapshot.At,
	}
	if res.FetchErr != nil {
		d.FetchError = res.FetchErr.Error()
	}
	return d
}

type weekDTO struct {
	WeekID int64       `json:"week_id"`
	Start  string      `json:"start"`
	Total  json.Number `json:"total"`
	Count  int         `json:"count"`
}

func toWeekDTOs(weeks []model.WeeklyTotal) []weekDTO {
	out := make([]weekDTO, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, weekDTO{
			WeekID: w.WeekID,
			Start:  w.Start.Format(model.DateLayout),
			Total:  money(w.Total),
			Count:  w.Count,
		})
	}
	return out
}

type categoryDTO struct {
	Category string      `json:"category"`
	Total    json.Number `json:"total"`
	Count    int         `json:"count"`
}

type snapshotDTO struct {
	At           time.Time   `json:"at"`
	WeekID       int64       `json:"week_id"`
	Saved        json.Number `json:"saved_amount"`
	Percent      float64     `json:"progress_percent"`
	Accumulator  json.Number `json:"weekly_accumulator"`
	HomeRunsLeft int         `json:"home_runs_left"`
	WeeksGoalHit int         `json:"weeks_goal_hit"`
	HomeRun      bool        `json:"home_run"`
}

func toSnapshotDTOs(snaps []model.Snapshot) []snapshotDTO {
	out := make([]snapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotDTO{
			At:           s.At,
			WeekID:       s.WeekID,
			Saved:        money(s.Saved),
			Percent:      s.Percent,
			Accumulator:  money(s.Accumulator),
			HomeRunsLeft: s.HomeRunsLeft,
			WeeksGoalHit: s.WeeksGoalHit,
			HomeRun:      s.HomeRun,
		})
	}
	return out
}
