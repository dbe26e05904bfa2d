package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name. Unknown names map to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface. Args are slog style
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Output formats understood by NewLogger.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatTint = "tint"
)

// LoggerConfig configures construction of a KitLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json, text or tint
	Output    io.Writer
	AddSource bool
	Component string
	// NoColor disables ANSI colors for the tint format.
	NoColor bool
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: FormatJSON, Output: os.Stdout}
}

// KitLogger wraps slog.Logger adding component scoping and domain helpers
// for tools, model calls and runs.
type KitLogger struct {
	logger    *slog.Logger
	component string
}

// NewLogger builds a KitLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *KitLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler

	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource})
	case FormatTint:
		handler = tint.NewHandler(out, &tint.Options{
			Level:      slogLevel(cfg.Level),
			AddSource:  cfg.AddSource,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor,
		})
	default:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource})
	}

	l := &KitLogger{logger: slog.New(handler)}

	if cfg.Component != "" {
		return l.WithComponent(cfg.Component)
	}

	return l
}

// NewSlogLogger creates a new KitLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *KitLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger tagging every entry with the component.
func (l *KitLogger) WithComponent(c string) *KitLogger {
	return &KitLogger{logger: l.logger.With(slog.String("component", c)), component: c}
}

// With returns a logger carrying additional attributes.
func (l *KitLogger) With(args ...any) *KitLogger {
	return &KitLogger{logger: l.logger.With(args...), component: l.component}
}

// Slog exposes the underlying *slog.Logger.
func (l *KitLogger) Slog() *slog.Logger { return l.logger }

// Debug logs at debug level.
func (l *KitLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs at info level.
func (l *KitLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs at warn level.
func (l *KitLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs at error level.
func (l *KitLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// LogToolCall records execution details for a tool invocation.
func (l *KitLogger) LogToolCall(tool string, dur time.Duration, err error) {
	attrs := []slog.Attr{slog.String("tool_name", tool), slog.Duration("duration", dur), slog.Bool("success", err == nil)}

	if err != nil {
		l.logger.LogAttrs(context.Background(), slog.LevelError, "tool.call.failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}

	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "tool.call.completed", attrs...)
}

// LogModelCall records model call latency, token usage and success.
func (l *KitLogger) LogModelCall(model string, tokens int, dur time.Duration, err error) {
	attrs := []slog.Attr{slog.String("model", model), slog.Int("token_count", tokens), slog.Duration("duration", dur), slog.Bool("success", err == nil)}

	if err != nil {
		l.logger.LogAttrs(context.Background(), slog.LevelError, "model.call.failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}

	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "model.call.completed", attrs...)
}

// LogRun records aggregate run metrics.
func (l *KitLogger) LogRun(agent string, steps int, dur time.Duration, err error) {
	attrs := []slog.Attr{slog.String("agent", agent), slog.Int("step_count", steps), slog.Duration("duration", dur), slog.Bool("success", err == nil)}

	if err != nil {
		l.logger.LogAttrs(context.Background(), slog.LevelError, "agent.run.failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}

	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "agent.run.completed", attrs...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
