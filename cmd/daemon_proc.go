package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/homerun-app/homerun/internal/daemon"
)

// daemonState is written next to the PID file so status can find the
// listen address without reading config.
type daemonState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
	Source    string    `json:"source"`
}

// daemonProcess is the on-disk record of a daemon: a PID file plus a JSON
// state file beside it.
type daemonProcess struct {
	pidPath string
}

func (p daemonProcess) statePath() string {
	return strings.TrimSuffix(p.pidPath, filepath.Ext(p.pidPath)) + ".state.json"
}

// running reports the recorded PID when that process is alive. A stale
// record is removed.
func (p daemonProcess) running() (int, bool) {
	data, err := os.ReadFile(p.pidPath) //nolint:gosec // local user's data dir
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err == nil && pid > 0 && pidAlive(pid) {
		return pid, true
	}
	p.clear()
	return 0, false
}

// claim records st as the running daemon. The returned func removes the
// record again.
func (p daemonProcess) claim(st daemonState) (func(), error) {
	if pid, ok := p.running(); ok && pid != st.PID {
		return nil, fmt.Errorf("daemon already running (pid %d)", pid)
	}
	if err := os.MkdirAll(filepath.Dir(p.pidPath), 0o750); err != nil {
		return nil, fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(p.pidPath, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	if data, err := json.MarshalIndent(st, "", "  "); err == nil {
		_ = os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
	}
	return p.clear, nil
}

func (p daemonProcess) state() (daemonState, error) {
	var st daemonState
	data, err := os.ReadFile(p.statePath()) //nolint:gosec // local user's data dir
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

func (p daemonProcess) clear() {
	_ = os.Remove(p.pidPath)
	_ = os.Remove(p.statePath())
}

// terminate sends SIGTERM and waits up to timeout for the process to exit.
func (p daemonProcess) terminate(timeout time.Duration) (int, error) {
	pid, ok := p.running()
	if !ok {
		return 0, errors.New("daemon is not running")
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon (pid %d): %w", pid, err)
	}
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !pidAlive(pid) {
			p.clear()
			return pid, nil
		}
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit within %s", pid, timeout)
}

func pidAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// spawnDetached re-executes this binary as a child daemon with output
// appended to logPath.
func spawnDetached(args []string, logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return 0, fmt.Errorf("create log directory: %w", err)
	}
	logf, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // local user's data dir
	if err != nil {
		return 0, fmt.Errorf("open daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, append(args, "--child")...) //nolint:gosec // re-exec of this binary
	child.Stdout = logf
	child.Stderr = logf
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := child.Start(); err != nil {
		return 0, fmt.Errorf("start detached daemon: %w", err)
	}
	return child.Process.Pid, nil
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// fetchDaemonStatus reads /v1/status from a running daemon.
func fetchDaemonStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed status: %w", err)
	}
	return st, nil
}
