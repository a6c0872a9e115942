package cmd

import (
	"fmt"
	"time"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagTxLimit    int
	flagTxCategory bool
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "List transactions, newest first",
	RunE:    runTransactions,
}

func init() {
	transactionsCmd.Flags().IntVarP(&flagTxLimit, "limit", "l", 50, "Maximum rows to show (0 for all)")
	transactionsCmd.Flags().BoolVar(&flagTxCategory, "categories", false, "Show totals by category instead")
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.refresh(cmd.Context())
	now := time.Now()
	txs := pipeline.FilterByTime(res.Transactions, since(rt.cfg, now), time.Time{})
	if len(txs) == 0 {
		fmt.Println("\n  No transactions found in the selected time range.")
		return nil
	}

	window := "All time"
	if rt.cfg.General.Days > 0 {
		window = fmt.Sprintf("Last %dd", rt.cfg.General.Days)
	}

	if flagTxCategory {
		return printCategories(txs, window)
	}

	sorted := pipeline.SortByDate(txs)
	shown := sorted
	if flagTxLimit > 0 && len(shown) > flagTxLimit {
		shown = shown[:flagTxLimit]
	}

	rows := make([][]string, 0, len(shown)+2)
	for _, tx := range shown {
		name := tx.Name
		if tx.Pending {
			name += " (pending)"
		}
		rows = append(rows, []string{
			cli.FormatDate(tx.Date),
			cli.Truncate(name, 32),
			cli.Truncate(cli.FormatCategory(tx.Category), 28),
			cli.RenderAmount(tx.Amount),
		})
	}

	flows := pipeline.SplitFlows(txs)
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"", "Net", fmt.Sprintf("in %s / out %s", cli.FormatMoneyShort(flows.Income), cli.FormatMoneyShort(flows.Spend)), cli.RenderAmount(flows.Net)})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Transactions  %s  (%d of %d)", window, len(shown), len(txs)),
		Headers: []string{"Date", "Name", "Category", "Amount"},
		Rows:    rows,
		Left:    []int{1, 2},
	}))
	return nil
}

func printCategories(txs []model.Transaction, window string) error {
	cats := pipeline.AggregateCategories(txs)
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			cli.Truncate(c.Category, 32),
			cli.FormatNumber(int64(c.Count)),
			cli.RenderAmount(c.Total),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Categories  " + window,
		Headers: []string{"Category", "Count", "Net"},
		Rows:    rows,
	}))
	return nil
}
