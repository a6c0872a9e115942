// Package chart renders the savings curve as a PNG image.
package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("chart: no transactions to plot")

// Default image size.
const (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

// CumulativePoints returns the running saved amount after each transaction,
// oldest first. Undated transactions come before dated ones.
func CumulativePoints(txs []model.Transaction) plotter.XYs {
	sorted := pipeline.SortByDate(txs)
	pts := make(plotter.XYs, len(sorted))
	running := decimal.Zero
	for i := range sorted {
		tx := sorted[len(sorted)-1-i]
		running = running.Add(tx.Amount)
		pts[i].X = float64(i + 1)
		pts[i].Y = running.InexactFloat64()
	}
	return pts
}

// SavingsPlot builds the plot of cumulative savings against the downpayment
// goal. The goal is drawn as a dashed horizontal line.
func SavingsPlot(txs []model.Transaction, goal decimal.Decimal) (*plot.Plot, error) {
	if len(txs) == 0 {
		return nil, ErrNoData
	}
	pts := CumulativePoints(txs)

	p := plot.New()
	p.Title.Text = "Downpayment savings"
	p.X.Label.Text = "Transactions"
	p.Y.Label.Text = "Saved (USD)"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("chart: savings line: %w", err)
	}
	line.Color = color.RGBA{R: 0, G: 128, B: 255, A: 255}
	line.Width = vg.Points(2)
	points.Shape = nil

	g := goal.InexactFloat64()
	goalLine, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: g},
		{X: float64(len(pts) + 1), Y: g},
	})
	if err != nil {
		return nil, fmt.Errorf("chart: goal line: %w", err)
	}
	goalLine.Color = color.RGBA{R: 255, G: 0, B: 0, A: 100}
	goalLine.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(line, goalLine)
	p.Legend.Add("saved", line)
	p.Legend.Add("goal", goalLine)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// SavingsCurve renders the savings plot to path. The format follows the
// file extension (png, svg, pdf).
func SavingsCurve(txs []model.Transaction, goal decimal.Decimal, path string) error {
	p, err := SavingsPlot(txs, goal)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("chart: saving %s: %w", path, err)
	}
	return nil
}
