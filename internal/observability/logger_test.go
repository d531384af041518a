package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     string
		wantErr   bool
		wantDebug bool
	}{
		{name: "debug enables debug logging", level: "debug", wantDebug: true},
		{name: "warn disables debug logging", level: "warn"},
		{name: "blank defaults to info", level: ""},
		{name: "unknown level rejected", level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewLogger(%q) expected error", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger(%q) error = %v", tt.level, err)
			}

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Fatalf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithCorrelationID(context.Background(), "msg-ingest-42")

	got, ok := CorrelationIDFromContext(ctx)
	if !ok || got != "msg-ingest-42" {
		t.Fatalf("CorrelationIDFromContext() = (%q, %v), want (msg-ingest-42, true)", got, ok)
	}

	if _, ok := CorrelationIDFromContext(context.Background()); ok {
		t.Fatal("bare context should carry no correlation id")
	}
}

func TestWithContextLoggerAttachesCorrelationID(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContextLogger(base, WithCorrelationID(context.Background(), "msg-ingest-7")).
		Info("entry recorded")
	WithContextLogger(base, context.Background()).
		Info("entry recorded without id")

	entries := recorded.All()
	if len(entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["correlationId"]; got != "msg-ingest-7" {
		t.Fatalf("correlationId = %v, want msg-ingest-7", got)
	}
	if _, ok := entries[1].ContextMap()["correlationId"]; ok {
		t.Fatal("log line without correlation context should have no correlationId field")
	}
}

func TestWithContextLoggerNilLogger(t *testing.T) {
	t.Parallel()

	if got := WithContextLogger(nil, context.Background()); got != nil {
		t.Fatal("nil logger should stay nil")
	}
}
