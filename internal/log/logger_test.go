package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})
	logger.WithComponent(ComponentStore).Info("Tag added", FieldTagID, "t1")

	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Errorf("expected store component in %q", out)
	}
	if strings.Contains(out, "component=app") {
		t.Errorf("component should be replaced, got %q", out)
	}
	if !strings.Contains(out, "tag_id=t1") {
		t.Errorf("expected tag id in %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info line should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn line missing: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	if got := FromContext(NewContext(context.Background(), logger)); got != logger {
		t.Fatalf("FromContext did not return the injected logger")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Errorf("expected fallback logger for empty context")
	}
}

func TestWithComponentTagsEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	ledger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf}).WithComponent(ComponentLedger)

	ledger.Logger.Info("Failed to publish ledger change")
	ledger.Slog().Info("Ledger change rejected")
	ledger.With(FieldRequestID, "r1").Info("Ledger changed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "component=ledger") {
			t.Errorf("missing ledger component in %q", line)
		}
		if strings.Contains(line, "component=app") || strings.Count(line, "component=") != 1 {
			t.Errorf("expected exactly one component in %q", line)
		}
	}
	if !strings.Contains(lines[2], "request_id=r1") {
		t.Errorf("With dropped attributes: %q", lines[2])
	}
}

func TestLogChange(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})
	NewStructuredLogger(logger).LogChange(context.Background(), "transaction", OpCreate, "tx1")

	out := buf.String()
	for _, want := range []string{"Ledger changed", "component=ledger", "entity=transaction", "operation=create", "transaction_id=tx1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if strings.Count(out, "component=") != 1 {
		t.Errorf("expected a single component in %q", out)
	}
}

func TestWithChange(t *testing.T) {
	f := NewFields().WithChange("transaction", "tx1").WithOperation(OpCreate)
	if f[FieldTransactionID] != "tx1" || f[FieldEntity] != "transaction" || f[FieldOperation] != OpCreate {
		t.Errorf("unexpected fields %v", f)
	}
	if _, ok := NewFields().WithChange("tag", "")[FieldTagID]; ok {
		t.Errorf("empty id should not be recorded")
	}
}
