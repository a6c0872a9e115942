package cmd

import (
	"fmt"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/savings"

	"github.com/spf13/cobra"
)

var flagWeeksLimit int

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "Weekly net savings against the weekly target",
	RunE:  runWeeks,
}

func init() {
	weeksCmd.Flags().IntVarP(&flagWeeksLimit, "limit", "l", 12, "Number of recent weeks to show (0 for all)")
	rootCmd.AddCommand(weeksCmd)
}

func runWeeks(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.refresh(cmd.Context())
	weeks := pipeline.WeeklyTotals(res.Transactions)
	if len(weeks) == 0 {
		fmt.Println("\n  No dated transactions found.")
		return nil
	}
	if flagWeeksLimit > 0 && len(weeks) > flagWeeksLimit {
		weeks = weeks[:flagWeeksLimit]
	}

	current := savings.WeekID(res.Snapshot.At)
	rows := make([][]string, 0, len(weeks))
	vals := make([]float64, len(weeks))
	for i, w := range weeks {
		vals[len(weeks)-1-i] = w.Total.InexactFloat64()

		mark := ""
		if res.TargetOK && w.Total.GreaterThanOrEqual(res.WeeklyTarget) {
			mark = "home run"
		}
		if w.WeekID == current {
			mark += " (this week)"
		}
		rows = append(rows, []string{
			cli.FormatWeek(w.Start),
			cli.FormatNumber(int64(w.Count)),
			cli.RenderAmount(w.Total),
			mark,
		})
	}

	target := "n/a"
	if res.TargetOK {
		target = cli.FormatMoney(res.WeeklyTarget)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Weekly Net  target %s", target),
		Headers: []string{"Week of", "Txns", "Net", ""},
		Rows:    rows,
		Left:    []int{3},
	}))
	fmt.Printf("\n  Trend  %s\n", cli.RenderSparkline(vals))
	fmt.Printf("  Home runs left: %d   Weeks hit: %d\n",
		res.Cycle.State.HomeRunsLeft, res.Cycle.State.WeeksGoalHit)
	return nil
}
