package stdout

import (
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/harshkrt/FinAgent/shared/application/ports"
)

// Logger implements ports.Logger on top of log/slog
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a logger writing text or JSON lines to w.
func NewLogger(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.logger.Error(msg, fields...)
}

// WithFields returns a Logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) ports.Logger {
	if len(fields) == 0 {
		return l
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return &Logger{logger: l.logger.With(args...)}
}

// Slog exposes the underlying logger for libraries that want a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

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
