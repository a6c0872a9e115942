package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/daemon"
	"github.com/homerun-app/homerun/internal/notifier"
	"github.com/homerun-app/homerun/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonNoDigest     bool
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Poll transactions in the background and serve HTTP/SSE status",
	Long: "Poll the transaction source on an interval, score home runs as weeks roll over, " +
		"send Telegram notifications and a weekly digest, and serve status over HTTP/SSE.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and savings status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", "", "PID file path (default <data-dir>/homerund.pid)")
	pf.StringVar(&flagDaemonLogFile, "log-file", "", "Log file for detached mode (default <data-dir>/homerund.log)")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Events kept in memory (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonNoDigest, "no-digest", false, "Disable the scheduled weekly digest")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// resolveDaemonFlags fills unset daemon flags from the config file and
// returns the process record they point at.
func resolveDaemonFlags() (daemonProcess, error) {
	cfg, err := loadConfig()
	if err != nil {
		return daemonProcess{}, err
	}
	dir := pipeline.DataDir(cfg.General.DataDir)
	if flagDaemonAddr == "" {
		flagDaemonAddr = cfg.Daemon.Addr
	}
	if flagDaemonInterval <= 0 {
		flagDaemonInterval = config.PollInterval(cfg)
	}
	if flagDaemonEventsBuffer <= 0 {
		flagDaemonEventsBuffer = cfg.Daemon.EventsBuffer
	}
	if flagDaemonPIDFile == "" {
		flagDaemonPIDFile = filepath.Join(dir, "homerund.pid")
	}
	if flagDaemonLogFile == "" {
		flagDaemonLogFile = filepath.Join(dir, "homerund.log")
	}
	return daemonProcess{pidPath: flagDaemonPIDFile}, nil
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	proc, err := resolveDaemonFlags()
	if err != nil {
		return err
	}
	if pid, ok := proc.running(); ok {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	if !flagDaemonDetach {
		return serveDaemon(proc)
	}

	pid, err := spawnDetached(filterDetachArg(os.Args[1:]), flagDaemonLogFile)
	if err != nil {
		return err
	}
	fmt.Printf("  Started homerun daemon (pid %d)\n", pid)
	fmt.Printf("  Status: http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log:    %s\n", flagDaemonLogFile)
	return nil
}

// serveDaemon runs the poller in this process until SIGINT or SIGTERM.
func serveDaemon(proc daemonProcess) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	dataDir := pipeline.DataDir(rt.cfg.General.DataDir)
	release, err := proc.claim(daemonState{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		DataDir:   dataDir,
		Source:    rt.tracker.SourceName(),
	})
	if err != nil {
		return err
	}
	defer release()

	digest := rt.cfg.Daemon.DigestCron
	if flagDaemonNoDigest {
		digest = ""
	}
	svc := daemon.New(daemon.Config{
		DataDir:      dataDir,
		Source:       rt.tracker.SourceName(),
		Interval:     flagDaemonInterval,
		DigestCron:   digest,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
	}, rt.tracker, notifier.FromConfig(rt.cfg))

	fmt.Printf("  homerun daemon on http://%s, polling %s every %s\n",
		flagDaemonAddr, rt.tracker.SourceName(), flagDaemonInterval)
	if digest != "" {
		fmt.Printf("  Weekly digest: %s\n", digest)
	}
	fmt.Println("  Stop with: homerun daemon stop")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	proc, err := resolveDaemonFlags()
	if err != nil {
		return err
	}
	pid, ok := proc.running()
	if !ok {
		fmt.Println("  Daemon: not running")
		return nil
	}

	addr := flagDaemonAddr
	if st, err := proc.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	fmt.Printf("  Daemon: pid %d on http://%s\n", pid, addr)

	st, err := fetchDaemonStatus(cmd.Context(), addr)
	if err != nil {
		fmt.Printf("  API: %v\n", err)
		return nil
	}

	last := "pending"
	if !st.LastPollAt.IsZero() {
		last = st.LastPollAt.Local().Format(time.RFC3339)
	}
	sum := st.Summary
	fmt.Printf("  Last poll: %s (%d polls from %s)\n", last, st.PollCount, st.Source)
	fmt.Printf("  Transactions: %d\n", sum.Transactions)
	fmt.Printf("  Saved: $%.2f of $%.2f (%.1f%%)\n", sum.SavedUSD, sum.GoalUSD, sum.ProgressPercent)
	fmt.Printf("  This week: $%.2f of $%.2f\n", sum.AccumulatorUSD, sum.WeeklyTargetUSD)
	fmt.Printf("  Home runs left: %d (hit %d)\n", sum.HomeRunsLeft, sum.WeeksGoalHit)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	proc, err := resolveDaemonFlags()
	if err != nil {
		return err
	}
	pid, err := proc.terminate(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped homerun daemon (pid %d)\n", pid)
	return nil
}
