package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/homerun-app/homerun/internal/api"
	"github.com/homerun-app/homerun/internal/config"

	"github.com/spf13/cobra"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve transactions and savings progress over a JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := flagServeAddr
	if addr == "" {
		addr = rt.cfg.Server.Addr
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Prime the model so the first request has data.
	rt.refresh(ctx)

	saveGoal := func(g config.GoalConfig) error {
		cfg := rt.cfg
		cfg.Goal = g
		if err := saveConfig(cfg); err != nil {
			return err
		}
		rt.cfg = cfg
		return nil
	}

	srv := api.NewServer(api.Config{Addr: addr}, rt.tracker, rt.store, saveGoal)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

