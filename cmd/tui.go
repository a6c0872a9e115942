package cmd

import (
	"fmt"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/tui"
	"github.com/homerun-app/homerun/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagNoAutoRefresh bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagNoAutoRefresh, "no-auto-refresh", false, "Only refresh on demand (r)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Progress lines would tear the alt screen.
	flagQuiet = true

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	theme.SetActive(rt.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	interval := config.PollInterval(rt.cfg)
	if flagNoAutoRefresh {
		interval = 0
	}

	app := tui.NewApp(tui.Options{
		Tracker:         rt.tracker,
		Days:            rt.cfg.General.Days,
		RefreshInterval: interval,
		SaveGoal: func(g config.GoalConfig) error {
			cfg := rt.cfg
			cfg.Goal = g
			if err := saveConfig(cfg); err != nil {
				return err
			}
			rt.cfg = cfg
			return nil
		},
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
