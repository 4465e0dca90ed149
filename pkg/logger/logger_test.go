package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	return out
}

func TestNewWithWriter_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront", "info", &buf)
	l.Info("hello")

	out := decodeLine(t, &buf)
	if got := out["service"]; got != "storefront" {
		t.Errorf("service = %v, want %q", got, "storefront")
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront", "warn", &buf)
	l.Info("dropped")

	if buf.Len() != 0 {
		t.Errorf("info line should be filtered at warn level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithContext_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "req-123")
	WithContext(ctx, l).Info("hello")

	out := decodeLine(t, &buf)
	if got := out["correlation_id"]; got != "req-123" {
		t.Errorf("correlation_id = %v, want %q", got, "req-123")
	}
}

func TestWithContext_ClientID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	ctx := WithClientID(context.Background(), "browser-1")
	WithContext(ctx, l).Info("with client")

	out := decodeLine(t, &buf)
	if got := out["client_id"]; got != "browser-1" {
		t.Errorf("client_id = %v, want %q", got, "browser-1")
	}
}

func TestWithContext_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	WithContext(context.Background(), l).Info("no span")

	out := decodeLine(t, &buf)
	if _, ok := out["trace_id"]; ok {
		t.Error("trace_id should not be present when no span in context")
	}
	if _, ok := out["client_id"]; ok {
		t.Error("client_id should not be present when not in context")
	}
}

func TestWithContext_AllFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	traceID, _ := trace.TraceIDFromHex("abcdef1234567890abcdef1234567890")
	spanID, _ := trace.SpanIDFromHex("1234567890abcdef")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithCorrelationID(ctx, "corr-all")
	ctx = WithClientID(ctx, "client-all")

	WithContext(ctx, l).Info("all fields")

	out := decodeLine(t, &buf)
	if got := out["correlation_id"]; got != "corr-all" {
		t.Errorf("correlation_id = %v, want %q", got, "corr-all")
	}
	if got := out["client_id"]; got != "client-all" {
		t.Errorf("client_id = %v, want %q", got, "client-all")
	}
	if got := out["trace_id"]; got != "abcdef1234567890abcdef1234567890" {
		t.Errorf("trace_id = %v, want %q", got, "abcdef1234567890abcdef1234567890")
	}
	if got := out["span_id"]; got != "1234567890abcdef" {
		t.Errorf("span_id = %v, want %q", got, "1234567890abcdef")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	if got := FromContext(NewContext(context.Background(), l)); got != l {
		t.Error("FromContext should return the logger stored via NewContext")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext should return a non-nil fallback logger")
	}
}
