// Package cmd implements the homerun CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/pipeline"
	"github.com/homerun-app/homerun/internal/source"
	"github.com/homerun-app/homerun/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDays       int
	flagDataDir    string
	flagConfigPath string
	flagSource     string
	flagLedger     string
	flagNoStore    bool
	flagQuiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "homerun",
	Short: "Track savings toward a house downpayment",
	Long: "Pull bank transactions, measure progress toward a downpayment goal, " +
		"and score a home run every week you hit your savings target.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Data directory for the database (default $XDG_DATA_HOME/homerun)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file path (default $XDG_CONFIG_HOME/homerun/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagSource, "source", "s", "", "Transaction source: plaid, backend or ledger")
	rootCmd.PersistentFlags().StringVar(&flagLedger, "ledger", "", "Read transactions from this CSV ledger")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Keep state in memory only; nothing is persisted")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func configPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}
	return config.ConfigPath()
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return cfg, err
	}
	if !cfg.Goal.Finite() {
		progressf("  Ignoring goal in %s: house_price and downpayment_percent must be finite numbers\n", configPath())
		cfg.Goal = config.DefaultConfig().Goal
	}
	if flagDays > 0 {
		cfg.General.Days = flagDays
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagLedger != "" {
		cfg.Ledger.Path = flagLedger
		if flagSource == "" {
			cfg.General.Source = config.SourceLedger
		}
	}
	if flagSource != "" {
		cfg.General.Source = flagSource
	}
	return cfg, nil
}

func saveConfig(cfg config.Config) error {
	return config.SaveTo(configPath(), cfg)
}

// runtime bundles what most commands need: config, store and tracker.
type runtime struct {
	cfg     config.Config
	store   *store.Store
	tracker *pipeline.Tracker
}

func (r *runtime) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

// openRuntime wires the configured source, the database and a tracker.
// A missing or broken source is not fatal: the tracker reports an empty
// batch and the fetch error.
func openRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var st *store.Store
	if flagNoStore {
		st, err = store.NewMemory()
	} else {
		dir := pipeline.DataDir(cfg.General.DataDir)
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create data directory: %w", mkErr)
		}
		st, err = store.Open(pipeline.DBPath(dir))
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	src, err := source.FromConfig(cfg)
	if err != nil {
		if errors.Is(err, source.ErrNoSource) {
			progressf("  No transaction source configured. Run `homerun setup`.\n")
		} else {
			progressf("  Source unavailable: %v\n", err)
		}
	}

	tr := pipeline.NewTracker(cfg.Goal.Params(), pipeline.Options{
		Source:   src,
		Cursor:   st,
		Recorder: st,
		Cache:    st,
	})
	return &runtime{cfg: cfg, store: st, tracker: tr}, nil
}

// refresh runs one fetch-and-evaluate pass with progress output.
func (r *runtime) refresh(ctx context.Context) pipeline.Result {
	progressf("  Fetching transactions from %s...\n", r.tracker.SourceName())
	start := time.Now()
	res := r.tracker.Refresh(ctx)
	if res.FetchErr != nil && !errors.Is(res.FetchErr, source.ErrNoSource) {
		progressf("  Fetch failed: %v\n", res.FetchErr)
	}
	progressf("  Loaded %d transactions in %.1fs\n", len(res.Transactions), time.Since(start).Seconds())
	return res
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// since returns the start of the --days window, or the zero time for all.
func since(cfg config.Config, now time.Time) time.Time {
	if cfg.General.Days <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -cfg.General.Days)
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
