package pipeline

import (
	"os"
	"path/filepath"
)

// DataDir returns the platform-appropriate data directory. A non-empty
// override wins.
func DataDir(override string) string {
	if override != "" {
		return override
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "homerun")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "homerun")
}

// DBPath returns the full path to the database inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "homerun.db")
}
