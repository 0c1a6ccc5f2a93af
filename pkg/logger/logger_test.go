package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return entry
}

func TestInfoCarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := newTestLogger(&buf)

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithUserID(ctx, "user-1")
	ctx = logg.WithRentalID(ctx, "rental-1")
	logg.Info(ctx, "hello")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["request_id"] != "req-1" || entry["user_id"] != "user-1" || entry["rental_id"] != "rental-1" {
		t.Fatalf("missing context fields: %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service field: %v", entry)
	}
}

func TestErrorIncludesErrAndStack(t *testing.T) {
	var buf bytes.Buffer
	logg := newTestLogger(&buf)

	logg.Error(context.Background(), "failed", errors.New("boom"))

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["error"] != "boom" {
		t.Fatalf("expected error field, got %v", entry)
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatalf("expected stack field, got %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warn") != zerolog.WarnLevel {
		t.Fatal("expected warn level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("expected default info level")
	}
	if ParseLevel("nope") != zerolog.InfoLevel {
		t.Fatal("expected fallback info level")
	}
}
