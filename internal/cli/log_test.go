package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(&buf, tt.level, logFormatText)
			if err != nil {
				t.Fatalf("newLogger() error = %v", err)
			}
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, log.InfoLevel, logFormatJSON)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Info("synthesized", "nodes", 12)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if line["msg"] != "synthesized" {
		t.Errorf("msg = %v, want synthesized", line["msg"])
	}
	if line["nodes"] != float64(12) {
		t.Errorf("nodes = %v, want 12", line["nodes"])
	}
}

func TestNewLoggerInvalidFormat(t *testing.T) {
	if _, err := newLogger(&bytes.Buffer{}, log.InfoLevel, "xml"); err == nil {
		t.Error("newLogger() expected error for unknown format")
	}
}

func TestStageTimer(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := newLogger(&buf, log.InfoLevel, logFormatText)

	startStage(logger, "mdg").done("synthesized data graph", "nodes", 7)

	out := buf.String()
	for _, want := range []string{"synthesized data graph", "stage=mdg", "nodes=7", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should return default logger when none set")
	}

	var buf bytes.Buffer
	custom, _ := newLogger(&buf, log.InfoLevel, logFormatText)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
