package chart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/homerun-app/homerun/internal/model"

	"github.com/shopspring/decimal"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestCumulativePoints(t *testing.T) {
	txs := []model.Transaction{
		{ID: "c", Amount: decimal.NewFromInt(-20), Date: day(3)},
		{ID: "a", Amount: decimal.NewFromInt(100), Date: day(1)},
		{ID: "b", Amount: decimal.NewFromInt(50), Date: day(2)},
	}
	pts := CumulativePoints(txs)
	want := []float64{100, 150, 130}
	if len(pts) != len(want) {
		t.Fatalf("got %d points, want %d", len(pts), len(want))
	}
	for i, w := range want {
		if pts[i].Y != w || pts[i].X != float64(i+1) {
			t.Errorf("point %d = (%v, %v), want (%d, %v)", i, pts[i].X, pts[i].Y, i+1, w)
		}
	}
}

func TestSavingsCurveWritesPNG(t *testing.T) {
	txs := []model.Transaction{
		{ID: "a", Amount: decimal.NewFromInt(1500), Date: day(1)},
		{ID: "b", Amount: decimal.NewFromInt(-40), Date: day(2)},
	}
	path := filepath.Join(t.TempDir(), "curve.png")
	if err := SavingsCurve(txs, decimal.NewFromInt(20000), path); err != nil {
		t.Fatalf("SavingsCurve: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty png")
	}
}

func TestSavingsCurveNoData(t *testing.T) {
	err := SavingsCurve(nil, decimal.NewFromInt(1), filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}
