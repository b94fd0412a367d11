package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogger(t *testing.T) {
	t.Run("missing logger falls back to nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
		assert.Empty(t, RequestID(context.Background()))
		assert.Empty(t, Actor(context.Background()))
	})

	t.Run("request id is attached once", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")

		L(ctx).Info("reserved")

		entries := recorded.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
		assert.Equal(t, "req-1", RequestID(ctx))
	})

	t.Run("actor round trips", func(t *testing.T) {
		ctx := WithActor(context.Background(), "ops@example.com")
		assert.Equal(t, "ops@example.com", Actor(ctx))
	})

	t.Run("trace ids come from the span context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
		ctx := trace.ContextWithSpanContext(WithContext(context.Background(), zap.New(core)), sc)

		L(ctx).Info("allocated")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
	})
}
