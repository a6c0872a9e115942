package cmd

import (
	"errors"
	"fmt"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/plaid"
	"github.com/homerun-app/homerun/internal/source"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Create a Plaid sandbox item and save its access token",
	RunE:  runSandbox,
}

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show Plaid account balances",
	RunE:  runBalances,
}

func init() {
	rootCmd.AddCommand(sandboxCmd)
	rootCmd.AddCommand(balancesCmd)
}

func plaidClient(cfg config.Config) (*plaid.Client, config.PlaidConfig, error) {
	p := config.GetPlaidCredentials(cfg)
	env, err := plaid.ParseEnvironment(p.Env)
	if err != nil {
		return nil, p, err
	}
	client := plaid.NewClient(p.ClientID, p.Secret, env)
	if client == nil {
		return nil, p, errors.New("plaid client_id and secret are required (run `homerun setup`)")
	}
	return client, p, nil
}

func runSandbox(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, p, err := plaidClient(cfg)
	if err != nil {
		return err
	}
	if p.Env != "" && p.Env != string(plaid.Sandbox) {
		return fmt.Errorf("plaid env is %q; sandbox items need env = \"sandbox\"", p.Env)
	}

	ctx := cmd.Context()
	pub, err := client.CreateSandboxPublicToken(ctx, plaid.SandboxInstitution, []string{"transactions"})
	if err != nil {
		return fmt.Errorf("create sandbox token: %w", err)
	}
	token, itemID, err := client.ExchangePublicToken(ctx, pub)
	if err != nil {
		return fmt.Errorf("exchange public token: %w", err)
	}

	cfg.Plaid.AccessToken = token
	cfg.General.Source = config.SourcePlaid
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("  Created sandbox item %s\n", itemID)
	fmt.Printf("  Access token %s saved to %s\n", maskSecret(token), configPath())
	return nil
}

func runBalances(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, p, err := plaidClient(cfg)
	if err != nil {
		return err
	}
	if p.AccessToken == "" {
		return errors.New("no plaid access token configured (run `homerun sandbox`)")
	}

	src := source.NewPlaid(client, p.AccessToken, cfg.General.Days, config.InvertPlaidAmounts(cfg))
	accounts, err := src.Balances(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Println("\n  No accounts linked.")
		return nil
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		name := a.Name
		if a.Mask != "" {
			name += " ..." + a.Mask
		}
		rows = append(rows, []string{
			cli.Truncate(name, 32),
			a.Subtype,
			balanceCell(a.Current),
			balanceCell(a.Available),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Balances",
		Headers: []string{"Account", "Type", "Current", "Available"},
		Rows:    rows,
		Left:    []int{1},
	}))
	return nil
}

func balanceCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return cli.FormatMoney(decimal.NewFromFloat(*v))
}
