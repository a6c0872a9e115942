// Package export writes transactions and savings progress to CSV, JSON and
// YAML files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
)

// Transaction is the exported form of one transaction. Amounts are kept as
// decimal strings so no precision is lost.
type Transaction struct {
	ID       string `json:"id" yaml:"id"`
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Merchant string `json:"merchant,omitempty" yaml:"merchant,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Amount   string `json:"amount" yaml:"amount"`
	Pending  bool   `json:"pending,omitempty" yaml:"pending,omitempty"`
}

// Progress summarizes the savings model at export time.
type Progress struct {
	HousePrice         string  `json:"house_price" yaml:"house_price"`
	DownpaymentPercent float64 `json:"downpayment_percent" yaml:"downpayment_percent"`
	YearsToSave        int     `json:"years_to_save" yaml:"years_to_save"`
	Goal               string  `json:"downpayment_goal" yaml:"downpayment_goal"`
	WeeklyTarget       string  `json:"weekly_target" yaml:"weekly_target"`
	Saved              string  `json:"saved_amount" yaml:"saved_amount"`
	Percent            float64 `json:"progress_percent" yaml:"progress_percent"`
	HomeRunsLeft       int     `json:"home_runs_left" yaml:"home_runs_left"`
	WeeksGoalHit       int     `json:"weeks_goal_hit" yaml:"weeks_goal_hit"`
}

// Report is the document written by the JSON and YAML exporters.
type Report struct {
	GeneratedAt  time.Time     `json:"generated_at" yaml:"generated_at"`
	Source       string        `json:"source" yaml:"source"`
	Progress     Progress      `json:"progress" yaml:"progress"`
	Transactions []Transaction `json:"transactions" yaml:"transactions"`
}

// NewReport builds a report from a tracker result.
func NewReport(source string, res pipeline.Result, at time.Time) Report {
	return Report{
		GeneratedAt: at.UTC(),
		Source:      source,
		Progress: Progress{
			HousePrice:         res.Goal.HousePrice.StringFixed(2),
			DownpaymentPercent: res.Goal.DownpaymentPercent,
			YearsToSave:        res.Goal.YearsToSave,
			Goal:               res.Progress.Goal.StringFixed(2),
			WeeklyTarget:       res.WeeklyTarget.StringFixed(2),
			Saved:              res.Progress.Saved.StringFixed(2),
			Percent:            res.Progress.Percent,
			HomeRunsLeft:       res.Cycle.State.HomeRunsLeft,
			WeeksGoalHit:       res.Cycle.State.WeeksGoalHit,
		},
		Transactions: Transactions(pipeline.SortByDate(res.Transactions)),
	}
}

// Transactions converts model transactions to their exported form.
func Transactions(txs []model.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		e := Transaction{
			ID:       tx.ID,
			Name:     tx.Name,
			Merchant: tx.Merchant,
			Category: strings.Join(tx.Category, " > "),
			Amount:   tx.Amount.String(),
			Pending:  tx.Pending,
		}
		if !tx.Date.IsZero() {
			e.Date = tx.Date.Format(model.DateLayout)
		}
		out = append(out, e)
	}
	return out
}

var csvHeader = []string{"id", "date", "name", "merchant", "category", "amount", "pending"}

// WriteCSV writes one row per transaction with a header row. The layout is
// readable by the ledger source.
func WriteCSV(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{tx.ID, tx.Date, tx.Name, tx.Merchant, tx.Category, tx.Amount, strconv.FormatBool(tx.Pending)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteYAML writes the report as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// ToCSV writes the report's transactions to a CSV file at path.
func ToCSV(r Report, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteCSV(w, r.Transactions) })
}

// ToJSON writes the report to a JSON file at path.
func ToJSON(r Report, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteJSON(w, r) })
}

// ToYAML writes the report to a YAML file at path.
func ToYAML(r Report, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteYAML(w, r) })
}

// Write dispatches on format ("csv", "json" or "yaml").
func Write(w io.Writer, format string, r Report) error {
	switch strings.ToLower(format) {
	case "csv":
		return WriteCSV(w, r.Transactions)
	case "json":
		return WriteJSON(w, r)
	case "yaml", "yml":
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json or yaml)", format)
	}
}

// FormatFromPath guesses the export format from a file extension.
func FormatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return "csv"
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return "yaml"
	default:
		return "json"
	}
}

func toFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
