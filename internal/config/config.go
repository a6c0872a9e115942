// Package config loads and saves the homerun TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Source names accepted in general.source.
const (
	SourcePlaid   = "plaid"
	SourceBackend = "backend"
	SourceLedger  = "ledger"
)

// Config holds all homerun configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Goal       GoalConfig       `toml:"goal"`
	Plaid      PlaidConfig      `toml:"plaid"`
	Backend    BackendConfig    `toml:"backend"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Telegram   TelegramConfig   `toml:"telegram"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Source  string `toml:"source"`
	Days    int    `toml:"days"`
	DataDir string `toml:"data_dir,omitempty"`
}

// PlaidConfig holds Plaid API credentials.
type PlaidConfig struct {
	ClientID    string `toml:"client_id,omitempty"`
	Secret      string `toml:"secret,omitempty"`
	Env         string `toml:"env"`
	AccessToken string `toml:"access_token,omitempty"`
	// Plaid reports outflows as positive; unset means invert.
	InvertAmounts *bool `toml:"invert_amounts,omitempty"`
}

// BackendConfig points at an HTTP backend serving GET /transactions.
type BackendConfig struct {
	URL string `toml:"url,omitempty"`
}

// LedgerConfig points at a local CSV ledger.
type LedgerConfig struct {
	Path string `toml:"path,omitempty"`
}

// TelegramConfig holds notification settings.
type TelegramConfig struct {
	BotToken string `toml:"bot_token,omitempty"`
	ChatID   string `toml:"chat_id,omitempty"`
	Proxy    string `toml:"proxy,omitempty"`
}

// DaemonConfig holds background polling settings.
type DaemonConfig struct {
	Interval     string `toml:"interval"`
	DigestCron   string `toml:"digest_cron"`
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// ServerConfig holds the backend API listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Days: 30,
		},
		Goal: GoalConfig{
			HousePrice:         400000,
			DownpaymentPercent: 20,
			YearsToSave:        5,
		},
		Plaid: PlaidConfig{
			Env: "sandbox",
		},
		Daemon: DaemonConfig{
			Interval:     "15m",
			DigestCron:   "0 0 9 * * 1",
			Addr:         "127.0.0.1:8790",
			EventsBuffer: 200,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "homerun")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "homerun")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetPlaidCredentials returns the Plaid credentials, env vars first.
func GetPlaidCredentials(cfg Config) PlaidConfig {
	p := cfg.Plaid
	if v := os.Getenv("PLAID_CLIENT_ID"); v != "" {
		p.ClientID = v
	}
	if v := os.Getenv("PLAID_SECRET"); v != "" {
		p.Secret = v
	}
	if v := os.Getenv("PLAID_ENV"); v != "" {
		p.Env = v
	}
	if v := os.Getenv("PLAID_ACCESS_TOKEN"); v != "" {
		p.AccessToken = v
	}
	return p
}

// InvertPlaidAmounts reports whether Plaid amounts should be negated.
func InvertPlaidAmounts(cfg Config) bool {
	if cfg.Plaid.InvertAmounts == nil {
		return true
	}
	return *cfg.Plaid.InvertAmounts
}

// GetTelegram returns the Telegram settings, env vars first.
func GetTelegram(cfg Config) TelegramConfig {
	t := cfg.Telegram
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		t.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		t.ChatID = v
	}
	if t.Proxy == "" {
		t.Proxy = os.Getenv("HTTPS_PROXY")
	}
	return t
}

// GetBackendURL returns the backend URL from env var or config, in that order.
func GetBackendURL(cfg Config) string {
	if v := os.Getenv("HOMERUN_BACKEND_URL"); v != "" {
		return v
	}
	return cfg.Backend.URL
}

// ResolveSource picks the transaction source. An explicit general.source
// wins; otherwise the first configured source is used.
func ResolveSource(cfg Config) string {
	if s := strings.ToLower(strings.TrimSpace(cfg.General.Source)); s != "" {
		return s
	}
	p := GetPlaidCredentials(cfg)
	switch {
	case p.ClientID != "" && p.Secret != "" && p.AccessToken != "":
		return SourcePlaid
	case GetBackendURL(cfg) != "":
		return SourceBackend
	case cfg.Ledger.Path != "":
		return SourceLedger
	}
	return ""
}

// PollInterval parses daemon.interval, falling back to 15 minutes.
func PollInterval(cfg Config) time.Duration {
	d, err := time.ParseDuration(cfg.Daemon.Interval)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}
