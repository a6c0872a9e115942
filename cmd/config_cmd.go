package cmd

import (
	"fmt"
	"os"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath()
	fmt.Printf("  Config file: %s\n", path)
	if _, statErr := os.Stat(path); statErr == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	src := config.ResolveSource(cfg)
	if src == "" {
		src = "not configured"
	}
	fmt.Printf("    Source:         %s\n", src)
	fmt.Printf("    Default days:   %d\n", cfg.General.Days)
	fmt.Printf("    Data directory: %s\n", pipeline.DataDir(cfg.General.DataDir))
	fmt.Println()

	fmt.Println("  [Goal]")
	fmt.Printf("    House price:    $%.0f\n", cfg.Goal.HousePrice)
	fmt.Printf("    Downpayment:    %.1f%%\n", cfg.Goal.DownpaymentPercent)
	fmt.Printf("    Years to save:  %d\n", cfg.Goal.YearsToSave)
	if err := cfg.Goal.Validate(); err != nil {
		fmt.Printf("    Warning:        %v\n", err)
	}
	fmt.Println()

	fmt.Println("  [Plaid]")
	p := config.GetPlaidCredentials(cfg)
	fmt.Printf("    Environment:    %s\n", p.Env)
	printSecret("Client ID:     ", p.ClientID)
	printSecret("Secret:        ", p.Secret)
	printSecret("Access token:  ", p.AccessToken)
	fmt.Printf("    Invert amounts: %v\n", config.InvertPlaidAmounts(cfg))
	fmt.Println()

	fmt.Println("  [Backend]")
	if u := config.GetBackendURL(cfg); u != "" {
		fmt.Printf("    URL: %s\n", u)
	} else {
		fmt.Println("    URL: not configured")
	}
	fmt.Println()

	fmt.Println("  [Ledger]")
	if cfg.Ledger.Path != "" {
		fmt.Printf("    Path: %s\n", cfg.Ledger.Path)
	} else {
		fmt.Println("    Path: not configured")
	}
	fmt.Println()

	fmt.Println("  [Telegram]")
	tg := config.GetTelegram(cfg)
	printSecret("Bot token:     ", tg.BotToken)
	if tg.ChatID != "" {
		fmt.Printf("    Chat ID:        %s\n", tg.ChatID)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Interval:       %s\n", config.PollInterval(cfg))
	fmt.Printf("    Digest cron:    %s\n", cfg.Daemon.DigestCron)
	fmt.Printf("    Listen:         %s\n", cfg.Daemon.Addr)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Listen:         %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:          %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `homerun setup` to reconfigure.")
	return nil
}

func printSecret(label, v string) {
	if v == "" {
		fmt.Printf("    %s not configured\n", label)
		return
	}
	fmt.Printf("    %s %s\n", label, maskSecret(v))
}
