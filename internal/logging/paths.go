package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir is ~/.grantha/logs, or a temp-dir fallback when no
// home directory resolves.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".grantha", "logs")
	}
	return filepath.Join(home, ".grantha", "logs")
}

// DefaultLogPath is the standard log file inside DefaultLogDir.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "grantha.log")
}
