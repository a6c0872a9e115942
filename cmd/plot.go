package cmd

import (
	"fmt"

	"github.com/homerun-app/homerun/internal/chart"

	"github.com/spf13/cobra"
)

var flagPlotOut string

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render cumulative savings against the goal to an image",
	RunE:  runPlot,
}

func init() {
	plotCmd.Flags().StringVarP(&flagPlotOut, "out", "o", "savings.png", "Output image (.png, .svg or .pdf)")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.refresh(cmd.Context())
	if len(res.Transactions) == 0 {
		fmt.Println("\n  No transactions to plot.")
		return nil
	}

	if err := chart.SavingsCurve(res.Transactions, res.Progress.Goal, flagPlotOut); err != nil {
		return fmt.Errorf("plot savings: %w", err)
	}
	fmt.Printf("  Wrote %s\n", flagPlotOut)
	return nil
}
