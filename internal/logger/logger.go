// Package logger builds the zerolog logger used by the billpay service and
// a log/slog bridge for the library packages.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns a sensible default logging configuration
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stdout",
	}
}

// Logger pairs the service logger with the writer it targets.
type Logger struct {
	zerolog.Logger

	out   io.Writer
	json  bool
	level zerolog.Level
	close func() error
}

// New creates a Logger from cfg. Call Close when done to release a log file.
func New(cfg LogConfig) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	var (
		out     io.Writer
		closeFn = func() error { return nil }
	)
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: open %s: %w", cfg.Output, err)
		}
		out = file
		closeFn = file.Close
	}

	l := NewWithWriter(out, level, cfg.Format, cfg.TimeFormat)
	l.close = closeFn
	return l, nil
}

// NewWithWriter creates a Logger that writes to w.
func NewWithWriter(w io.Writer, level zerolog.Level, format, timeFormat string) *Logger {
	isJSON := strings.ToLower(format) == "json"
	out := w
	if !isJSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: timeFormat,
		}
	}

	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		Logger()

	return &Logger{
		Logger: zl,
		out:    w,
		json:   isJSON,
		level:  level,
		close:  func() error { return nil },
	}
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Slog returns a log/slog logger for the library packages. It writes to the
// same destination at the same level, as JSON or text to match the format,
// tagged with component.
func (l *Logger) Slog(component string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(l.level)}

	var h slog.Handler = slog.NewTextHandler(l.out, opts)
	if l.json {
		h = slog.NewJSONHandler(l.out, opts)
	}
	return slog.New(h).With("component", component)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	return l.close()
}

func slogLevel(level zerolog.Level) slog.Level {
	switch {
	case level <= zerolog.DebugLevel:
		return slog.LevelDebug
	case level == zerolog.InfoLevel:
		return slog.LevelInfo
	case level == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
