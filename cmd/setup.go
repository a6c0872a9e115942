package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the wizard's string-typed inputs before they are
// parsed back into a Config.
type setupValues struct {
	price   string
	pct     string
	years   string
	source  string
	days    string
	theme   string
	plaidID string
	secret  string
	env     string
	token   string
	backend string
	ledger  string
}

func newSetupValues(cfg config.Config) *setupValues {
	src := config.ResolveSource(cfg)
	if src == "" {
		src = config.SourceLedger
	}
	return &setupValues{
		price:   strconv.FormatFloat(cfg.Goal.HousePrice, 'f', -1, 64),
		pct:     strconv.FormatFloat(cfg.Goal.DownpaymentPercent, 'f', -1, 64),
		years:   strconv.Itoa(cfg.Goal.YearsToSave),
		source:  src,
		days:    strconv.Itoa(cfg.General.Days),
		theme:   cfg.Appearance.Theme,
		plaidID: cfg.Plaid.ClientID,
		secret:  cfg.Plaid.Secret,
		env:     cfg.Plaid.Env,
		token:   cfg.Plaid.AccessToken,
		backend: cfg.Backend.URL,
		ledger:  cfg.Ledger.Path,
	}
}

// apply parses the inputs into cfg. Fields were validated by the form.
func (v *setupValues) apply(cfg *config.Config) error {
	price, err := parseFinite(v.price)
	if err != nil {
		return fmt.Errorf("house price: %w", err)
	}
	pct, err := parseFinite(v.pct)
	if err != nil {
		return fmt.Errorf("downpayment percent: %w", err)
	}
	years, err := strconv.Atoi(strings.TrimSpace(v.years))
	if err != nil {
		return fmt.Errorf("years to save: %w", err)
	}
	days, err := strconv.Atoi(v.days)
	if err != nil {
		return fmt.Errorf("days: %w", err)
	}

	goal := config.GoalConfig{HousePrice: price, DownpaymentPercent: pct, YearsToSave: years}
	if err := goal.Validate(); err != nil {
		return err
	}
	cfg.Goal = goal
	cfg.General.Source = v.source
	cfg.General.Days = days
	cfg.Appearance.Theme = v.theme

	switch v.source {
	case config.SourcePlaid:
		cfg.Plaid.ClientID = strings.TrimSpace(v.plaidID)
		cfg.Plaid.Secret = strings.TrimSpace(v.secret)
		cfg.Plaid.Env = v.env
		cfg.Plaid.AccessToken = strings.TrimSpace(v.token)
	case config.SourceBackend:
		cfg.Backend.URL = strings.TrimSpace(v.backend)
	case config.SourceLedger:
		cfg.Ledger.Path = strings.TrimSpace(v.ledger)
	}
	return nil
}

// parseFinite rejects the nan and inf spellings strconv accepts.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func positiveFloat(s string) error {
	f, err := parseFinite(s)
	if err != nil || f <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func percentInput(s string) error {
	f, err := parseFinite(s)
	if err != nil || f <= 0 || f > 100 {
		return errors.New("enter a percentage between 0 and 100")
	}
	return nil
}

func yearsInput(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 50 {
		return errors.New("enter a whole number of years between 1 and 50")
	}
	return nil
}

func newSetupForm(v *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.Names()))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to homerun!").
				Description("Set a downpayment goal, then tell homerun where your transactions live."),
			huh.NewInput().Title("House price ($)").Value(&v.price).Validate(positiveFloat),
			huh.NewInput().Title("Downpayment (%)").Value(&v.pct).Validate(percentInput),
			huh.NewInput().Title("Years to save").Value(&v.years).Validate(yearsInput),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Transaction source").
				Options(
					huh.NewOption("Plaid", config.SourcePlaid),
					huh.NewOption("HTTP backend", config.SourceBackend),
					huh.NewOption("CSV ledger", config.SourceLedger),
				).
				Value(&v.source),
		),
		huh.NewGroup(
			huh.NewInput().Title("Plaid client ID").Value(&v.plaidID),
			huh.NewInput().Title("Plaid secret").Value(&v.secret).EchoMode(huh.EchoModePassword),
			huh.NewSelect[string]().Title("Plaid environment").
				Options(
					huh.NewOption("Sandbox", "sandbox"),
					huh.NewOption("Development", "development"),
					huh.NewOption("Production", "production"),
				).
				Value(&v.env),
			huh.NewInput().Title("Access token").
				Description("Leave blank in sandbox and run `homerun sandbox` to create one.").
				Value(&v.token).EchoMode(huh.EchoModePassword),
		).WithHideFunc(func() bool { return v.source != config.SourcePlaid }),
		huh.NewGroup(
			huh.NewInput().Title("Backend URL").
				Placeholder("http://localhost:8000").
				Value(&v.backend),
		).WithHideFunc(func() bool { return v.source != config.SourceBackend }),
		huh.NewGroup(
			huh.NewInput().Title("Ledger CSV path").Value(&v.ledger),
		).WithHideFunc(func() bool { return v.source != config.SourceLedger }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default time range").
				Options(
					huh.NewOption("7 days", "7"),
					huh.NewOption("30 days", "30"),
					huh.NewOption("90 days", "90"),
					huh.NewOption("All time", "0"),
				).
				Value(&v.days),
			huh.NewSelect[string]().Title("Color theme").Options(themeOpts...).Value(&v.theme),
		),
	)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v := newSetupValues(cfg)
	if err := newSetupForm(v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := v.apply(&cfg); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", configPath())
	fmt.Println("  Run `homerun setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
