// Package disirlog provides the structured logging sink used by disir's
// collaborators (CLI, HTTP API, registry, loaders). The core engine
// (pkg/disir) never imports this package and does not log; collaborators
// build a *slog.Logger with New and pass it to the components they
// construct.
package disirlog

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how log lines are written.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or text
	Output     string // stdout, stderr, or file
	Filename   string // required when Output == "file"
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds a *slog.Logger from cfg. AddSource is only enabled at debug
// level, since source positions are expensive to capture per record.
func New(cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	writer := newWriter(cfg)
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a case-insensitive level name to its slog.Level.
// Unknown names fall back to Info rather than erroring, since log level
// is rarely worth failing startup over.
func ParseLevel(level string) slog.Level {
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

func newWriter(cfg Config) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.Filename == "" {
			return os.Stdout
		}
		return &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}
