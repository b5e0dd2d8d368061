package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"off", LevelNone},
		{"invalid", LevelInfo}, // Default to Info
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below level should be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("messages at/above level should be logged, got: %s", out)
	}
	if !strings.Contains(out, `error="boom"`) {
		t.Errorf("error text missing from output: %s", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	logger.Info("query started", Fields{"model": "fast", "stream": true})

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not valid JSON: %v (output: %s)", err, buf.String())
	}
	if e.Level != "INFO" || e.Message != "query started" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Fields["model"] != "fast" {
		t.Errorf("field model = %v, want fast", e.Fields["model"])
	}
}

func TestLogger_TextFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatText, Output: &buf})

	logger.Info("msg", Fields{"zulu": 1, "alpha": 2})

	out := buf.String()
	if strings.Index(out, "alpha=") > strings.Index(out, "zulu=") {
		t.Errorf("fields should be sorted alphabetically: %s", out)
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelNone, Format: FormatText, Output: &buf})

	logger.Error("hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("LevelNone should suppress everything, got: %s", buf.String())
	}

	logger.SetLevel(LevelDebug)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("after SetLevel(Debug) message should appear, got: %s", buf.String())
	}
}

func TestExecLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatText, Output: &buf})
	el := NewExecLogger(logger)

	longPrompt := strings.Repeat("x", maxLoggedArg+50)
	el.LogInvocation([]string{"llm", "--system", longPrompt})
	el.LogChunk(1, 42)
	el.LogExit(0, 100, 0, 250*time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "exec start") || !strings.Contains(out, "exec done") {
		t.Errorf("missing invocation/exit entries: %s", out)
	}
	if !strings.Contains(out, "...[truncated]") {
		t.Errorf("long argv element should be truncated: %s", out)
	}
	if strings.Contains(out, longPrompt) {
		t.Error("full prompt must not be logged")
	}
}
