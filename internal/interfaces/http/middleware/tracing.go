package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/inventory/internal/infrastructure/logger"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider
}

// Tracing returns the otelgin server span middleware.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// TraceAttributes annotates the server span with the request id and actor.
// It must run after Tracing and RequestID so the span is still open when the
// handlers return.
func TraceAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if id := logger.RequestID(ctx); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if actor := logger.Actor(ctx); actor != "" {
			span.SetAttributes(attribute.String("inventory.actor", actor))
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
