// Package logging wires slog to a size-rotated JSON log file, with an
// optional stderr tee for interactive runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls where and how much Grantha logs.
type Config struct {
	// Level is the minimum level written (debug, info, warn, error).
	Level string
	// FilePath is the log file. The parent directory is created on
	// demand.
	FilePath string
	// MaxSizeMB caps the file size before rotation.
	MaxSizeMB int
	// MaxFiles caps how many rotated generations are kept.
	MaxFiles int
	// WriteToStderr tees log lines to stderr as well.
	WriteToStderr bool
}

// DefaultConfig logs at info level to ~/.grantha/logs/grantha.log.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig is DefaultConfig at debug level.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens the log file and builds the JSON logger. The returned
// cleanup flushes and closes the file; call it on shutdown.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	logger := slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}))

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return logger, cleanup, nil
}

// parseLevel maps a config string to a slog level; unknown strings
// log at info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
