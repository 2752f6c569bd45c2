package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls log output.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Path routes logs to a rotated file instead of stderr when set.
	Path string
	// MaxSizeMB caps the size of one log file before rotation.
	MaxSizeMB int
	// MaxBackups caps the number of rotated files kept.
	MaxBackups int
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Setup builds a structured JSON logger and installs it as the process
// default.
func Setup(opts Options) *slog.Logger {
	var sink io.Writer = os.Stderr
	if strings.TrimSpace(opts.Path) != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		sink = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
	}
	logger := slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: parseLevel(opts.Level)}))
	slog.SetDefault(logger)
	return logger
}
