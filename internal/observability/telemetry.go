package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Config holds telemetry configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool
	// SampleRatio is the fraction of root traces kept; children follow
	// their parent's decision.
	SampleRatio    float64
	ExportInterval time.Duration
	// Attributes are added to the resource, e.g. the storage backend
	Attributes []attribute.KeyValue
}

// Telemetry owns the installed providers until Shutdown
type Telemetry struct {
	shutdowns []func(context.Context) error
}

// Initialize installs OTLP trace and metric providers. When telemetry is
// disabled the global no-op providers stay in place and Shutdown does
// nothing. A provider that fails to start is logged and skipped.
func Initialize(ctx context.Context, cfg Config) (*Telemetry, error) {
	t := &Telemetry{}
	if !cfg.Enabled {
		Info("Telemetry disabled (set OTEL_ENABLED=true to enable)")
		return t, nil
	}

	Infof("Exporting telemetry to %s (sample ratio %.2f)", cfg.OTLPEndpoint, cfg.SampleRatio)

	// Empty schema URL avoids conflicts with the SDK's default schema version
	attrs := append([]attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	}, cfg.Attributes...)
	res, err := resource.New(ctx, resource.WithAttributes(attrs...), resource.WithHost())
	if err != nil {
		return nil, err
	}

	if tp, err := newTracerProvider(ctx, cfg, res); err != nil {
		Warnf("Tracing unavailable: %v", err)
	} else {
		otel.SetTracerProvider(tp)
		t.shutdowns = append(t.shutdowns, tp.Shutdown)
	}

	if mp, err := newMeterProvider(ctx, cfg, res); err != nil {
		Warnf("Metrics export unavailable: %v", err)
	} else {
		otel.SetMeterProvider(mp)
		t.shutdowns = append(t.shutdowns, mp.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	), nil
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	), nil
}

// Shutdown flushes and stops every installed provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if len(t.shutdowns) == 0 {
		return nil
	}

	Info("Flushing telemetry...")

	var errs []error
	for _, shutdown := range t.shutdowns {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
