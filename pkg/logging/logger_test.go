package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()

	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"Warn", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"", InfoLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelNamesParse(t *testing.T) {
	for _, name := range LevelNames {
		if ParseLevel(name).String() == "UNKNOWN" {
			t.Errorf("LevelNames entry %q does not parse", name)
		}
	}
}

func TestOptimizerFields(t *testing.T) {
	tests := []struct {
		field Field
		key   string
		value any
	}{
		{RunID("abc"), "run_id", "abc"},
		{Strategy("relaxmap"), "strategy", "relaxmap"},
		{HierarchyLevel(2), "level", 2},
		{Pass(3), "pass", 3},
		{Moves(7), "moves", uint64(7)},
		{Clusters(4), "clusters", 4},
		{Nodes(10), "nodes", uint64(10)},
		{Codelength(1.5), "codelength", 1.5},
		{Duration("timeout", 5*time.Second), "timeout", "5s"},
		{Error(errors.New("boom")), "error", "boom"},
		{Error(nil), "error", nil},
	}

	for _, tt := range tests {
		if tt.field.Key != tt.key || tt.field.Value != tt.value {
			t.Errorf("field = %+v, want {Key:%s Value:%v}", tt.field, tt.key, tt.value)
		}
	}
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("pass finished", Pass(1), Moves(12))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != "INFO" || entry.Message != "pass finished" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["moves"] != float64(12) { // JSON numbers decode as float64
		t.Errorf("moves field = %v, want 12", entry.Fields["moves"])
	}
	if entry.Time == "" {
		t.Error("Time field is empty")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %s, %s; want WARN, ERROR", entries[0].Level, entries[1].Level)
	}
	if logger.Enabled(InfoLevel) {
		t.Error("Enabled(InfoLevel) should be false at WARN")
	}
}

func TestJSONLogger_WithSharesLevelAndWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("mapequation"), RunID("r1"))
	child.Info("run started", Strategy("synchronous"))

	logger.SetLevel(ErrorLevel)
	child.Info("suppressed")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].Fields
	if fields["component"] != "mapequation" || fields["run_id"] != "r1" || fields["strategy"] != "synchronous" {
		t.Errorf("fields = %v", fields)
	}
	if child.GetLevel() != ErrorLevel {
		t.Errorf("child level = %v, want ErrorLevel", child.GetLevel())
	}
}

func TestJSONLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			child := logger.With(Int("worker", worker))
			for i := 0; i < 50; i++ {
				child.Info("tick", Pass(i))
			}
		}(w)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 400 {
		t.Errorf("Expected 400 entries, got %d", got)
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	op := StartTimer(logger, "level finished", HierarchyLevel(0))
	op.End(Clusters(3))
	op.EndError(errors.New("cancelled"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["clusters"] != float64(3) || entries[0].Fields["latency"] == nil {
		t.Errorf("End fields = %v", entries[0].Fields)
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "cancelled" {
		t.Errorf("EndError entry = %+v", entries[1])
	}
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))
	defer SetDefaultLogger(nil)

	DefaultLogger().Info("hello")
	if buf.Len() == 0 {
		t.Error("Expected output through the default logger")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	if logger.Enabled(ErrorLevel) {
		t.Error("NopLogger should never be enabled")
	}
	logger.With(Pass(1)).Info("ignored")
}

func BenchmarkJSONLogger_InfoFiltered(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, ErrorLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", Pass(i), Moves(42))
	}
}
