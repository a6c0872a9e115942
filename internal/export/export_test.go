package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/savings"
	"github.com/homerun-app/homerun/internal/source"

	"github.com/shopspring/decimal"
)

func testReport() Report {
	txs := []model.Transaction{
		{ID: "a", Name: "Paycheck", Amount: decimal.RequireFromString("1525.50"), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Name: "Coffee, large", Amount: decimal.RequireFromString("-4.25"), Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Category: []string{"Food and Drink", "Coffee"}},
	}
	goal := savings.Goal{HousePrice: decimal.NewFromInt(100000), DownpaymentPercent: 20, YearsToSave: 5}
	target, ok := savings.WeeklyTarget(goal)
	res := pipeline.Result{
		Transactions: txs,
		Goal:         goal,
		Progress:     savings.ComputeProgress(goal, txs),
		WeeklyTarget: target,
		TargetOK:     ok,
	}
	return NewReport("ledger", res, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
}

func TestNewReport(t *testing.T) {
	r := testReport()
	if r.Progress.Goal != "20000.00" {
		t.Errorf("Goal = %s, want 20000.00", r.Progress.Goal)
	}
	if r.Progress.Saved != "1521.25" {
		t.Errorf("Saved = %s, want 1521.25", r.Progress.Saved)
	}
	if r.Progress.WeeklyTarget != "76.92" {
		t.Errorf("WeeklyTarget = %s, want 76.92", r.Progress.WeeklyTarget)
	}
	if r.Transactions[0].ID != "b" {
		t.Errorf("transactions not newest first: %+v", r.Transactions)
	}
}

func TestCSVReadableByLedger(t *testing.T) {
	r := testReport()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r.Transactions); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	txs, err := source.ParseLedger(&buf)
	if err != nil {
		t.Fatalf("ParseLedger: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d rows, want 2", len(txs))
	}
	if txs[0].ID != "b" || txs[0].Name != "Coffee, large" {
		t.Errorf("first row = %+v", txs[0])
	}
	if len(txs[0].Category) != 2 || txs[0].Category[1] != "Coffee" {
		t.Errorf("category = %v", txs[0].Category)
	}
	if !savings.AggregateSavedAmount(txs).Equal(decimal.RequireFromString("1521.25")) {
		t.Errorf("saved from csv = %s", savings.AggregateSavedAmount(txs))
	}
}

func TestJSONAndYAMLFiles(t *testing.T) {
	r := testReport()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	if err := ToJSON(r, jsonPath); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON Report
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if fromJSON.Source != "ledger" || len(fromJSON.Transactions) != 2 {
		t.Errorf("json report = %+v", fromJSON)
	}

	yamlPath := filepath.Join(dir, "report.yaml")
	if err := ToYAML(r, yamlPath); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "downpayment_goal:") || !strings.Contains(string(data), "20000.00") {
		t.Errorf("yaml missing goal:\n%s", data)
	}
	var fromYAML Report
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if fromYAML.Progress.HomeRunsLeft != r.Progress.HomeRunsLeft || fromYAML.Transactions[1].Amount != "1525.5" {
		t.Errorf("yaml report = %+v", fromYAML)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xml", testReport()); err == nil {
		t.Fatal("expected error for xml")
	}
	if got := FormatFromPath("out.yml"); got != "yaml" {
		t.Errorf("FormatFromPath(out.yml) = %s", got)
	}
	if got := FormatFromPath("out.csv"); got != "csv" {
		t.Errorf("FormatFromPath(out.csv) = %s", got)
	}
}
