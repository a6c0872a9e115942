package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/homerun-app/homerun/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportOut    string
	flagExportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions and progress as CSV, JSON or YAML",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "csv, json or yaml (default from --out extension, else json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	// Keep stdout clean for piping.
	flagQuiet = flagQuiet || flagExportOut == ""

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.refresh(cmd.Context())
	report := export.NewReport(rt.tracker.SourceName(), res, time.Now())

	format := flagExportFormat
	if format == "" {
		format = export.FormatFromPath(flagExportOut)
	}

	if flagExportOut == "" {
		return export.Write(os.Stdout, format, report)
	}

	switch format {
	case "csv":
		err = export.ToCSV(report, flagExportOut)
	case "yaml", "yml":
		err = export.ToYAML(report, flagExportOut)
	case "json":
		err = export.ToJSON(report, flagExportOut)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("  Exported %d transactions to %s\n", len(report.Transactions), flagExportOut)
	return nil
}
