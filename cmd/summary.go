package cmd

import (
	"context"
	"fmt"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Savings progress toward the downpayment goal",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.refresh(cmd.Context())
	prog := res.Progress
	state := res.Cycle.State

	fmt.Println()
	fmt.Println(cli.RenderTitle("HOMERUN  Downpayment Progress"))
	fmt.Println()

	if prog.Reached() {
		fmt.Println("  " + cli.RenderBanner(" GOAL REACHED! Your downpayment is saved. "))
		fmt.Println()
	} else if res.Cycle.HomeRun {
		fmt.Println("  " + cli.RenderBanner(" HOME RUN! Weekly target hit. "))
		fmt.Println()
	}

	target := "n/a (years to save must be positive)"
	if res.TargetOK {
		target = cli.FormatMoney(res.WeeklyTarget)
	}

	rows := [][]string{
		{"House Price", cli.FormatMoney(res.Goal.HousePrice)},
		{"Downpayment", cli.FormatPercent(res.Goal.DownpaymentPercent)},
		{"Years to Save", fmt.Sprintf("%d (%d weeks)", res.Goal.YearsToSave, res.Goal.TotalWeeks())},
		{"---"},
		{"Downpayment Goal", cli.FormatMoney(prog.Goal)},
		{"Saved", cli.RenderAmount(prog.Saved)},
		{"Since Last Check", sinceLastCheck(cmd.Context(), rt, res)},
		{"Remaining", cli.FormatMoney(prog.Remaining())},
		{"Progress", cli.RenderProgressBar(prog.Percent, 24)},
		{"---"},
		{"Weekly Target", target},
		{"This Week", cli.FormatMoney(state.Accumulator)},
		{"Home Runs Left", cli.FormatNumber(int64(state.HomeRunsLeft))},
		{"Weeks Goal Hit", cli.FormatNumber(int64(state.WeeksGoalHit))},
		{"---"},
		{"Transactions", cli.FormatNumber(int64(len(res.Transactions)))},
		{"Source", rt.tracker.SourceName()},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if n, err := rt.store.CountHomeRuns(cmd.Context()); err == nil && n > 0 {
		fmt.Printf("\n  %d home runs recorded so far.\n", n)
	}
	return nil
}

// sinceLastCheck compares saved against the snapshot recorded before this
// run's own evaluation.
func sinceLastCheck(ctx context.Context, rt *runtime, res pipeline.Result) string {
	skip := 0
	if res.Evaluated {
		skip = 1
	}
	snaps, err := rt.store.RecentSnapshots(ctx, skip+1)
	if err != nil || len(snaps) <= skip {
		return "-"
	}
	return cli.FormatDelta(res.Progress.Saved, snaps[skip].Saved)
}
