package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Log output formats for --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newLogger creates a logger writing to w. Text output carries
// "HH:MM:SS.ms" timestamps (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level, format string) (*log.Logger, error) {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	}
	switch format {
	case "", logFormatText:
		opts.Formatter = log.TextFormatter
	case logFormatJSON:
		opts.Formatter = log.JSONFormatter
		opts.TimeFormat = time.RFC3339Nano
	default:
		return nil, fmt.Errorf("invalid log format: %q (must be text or json)", format)
	}
	return log.NewWithOptions(w, opts), nil
}

// stageTimer logs the end of a pipeline stage with its elapsed time.
type stageTimer struct {
	logger *log.Logger
	stage  string
	start  time.Time
}

func startStage(l *log.Logger, stage string) *stageTimer {
	l.Debug("stage started", "stage", stage)
	return &stageTimer{logger: l, stage: stage, start: time.Now()}
}

// done logs msg with the stage name, the extra key-value pairs and the
// elapsed time rounded to the millisecond.
func (s *stageTimer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "stage", s.stage, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
