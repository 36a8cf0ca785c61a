package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"WARN", WarnLevel},
		{"Warning", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("layout started", NodeID("person:7"), Iterations(300))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" || e.Message != "layout started" {
		t.Errorf("entry = %+v", e)
	}
	if e.Fields["node_id"] != "person:7" {
		t.Errorf("node_id = %v", e.Fields["node_id"])
	}
	if e.Fields["iterations"] != float64(300) {
		t.Errorf("iterations = %v", e.Fields["iterations"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	if got := len(decodeLines(t, &buf)); got != 2 {
		t.Errorf("got %d entries, want 2", got)
	}
}

func TestJSONLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewJSONLogger(&buf, InfoLevel)
	child := root.With(Component("scheduler"))

	child.Debug("hidden")
	root.SetLevel(DebugLevel)
	child.Debug("visible", Count(3))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Fields["component"] != "scheduler" {
		t.Errorf("component = %v", entries[0].Fields["component"])
	}
	if child.GetLevel() != DebugLevel {
		t.Errorf("child level = %v, want DEBUG", child.GetLevel())
	}
}

func TestFloat64NonFinite(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Debug("non-finite position reset",
		Float64("x", math.NaN()),
		Float64("y", math.Inf(-1)),
		Point("last", 1, math.Inf(1)),
	)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Fields["x"] != "NaN" || entries[0].Fields["y"] != "-Inf" {
		t.Errorf("fields = %v", entries[0].Fields)
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := Duration("timeout", 5*time.Second); f.Value != "5s" {
		t.Errorf("Duration() = %+v", f)
	}
	if f := Error(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Errorf("Error() = %+v", f)
	}
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
	if f := RunID("abc"); f.Key != "run_id" {
		t.Errorf("RunID() = %+v", f)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "batch", Iterations(10))
	if d := timer.End(Nodes(4)); d < 0 {
		t.Errorf("End() returned negative duration %v", d)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("missing latency field")
	}
	if entries[0].Fields["nodes"] != float64(4) {
		t.Errorf("nodes = %v", entries[0].Fields["nodes"])
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NewNopLogger()
	l.Info("nothing")
	if l.With(Count(1)) == nil {
		t.Error("With() returned nil")
	}
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
}
