// Package telemetry wires OpenTelemetry traces, metrics and logs, plus
// Pyroscope continuous profiling, for the inventory service.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/storefront/inventory/internal/infrastructure/config"
)

// ServiceVersion is reported on every exported signal. Set with -ldflags.
var ServiceVersion = "dev"

// Telemetry bundles the signal providers so they start and stop together
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	logger   *zap.Logger
}

// Setup starts every provider enabled in cfg. Disabled providers are no-ops,
// so the returned value is always safe to use and shut down.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}

	var err error
	if t.Tracer, err = NewTracerProvider(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if t.Meter, err = NewMeterProvider(ctx, cfg, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs, err = NewLoggerProvider(ctx, cfg, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Profiler, err = NewProfiler(cfg, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}
	return t, nil
}

// Shutdown flushes and stops every provider that was started
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
