// Package telemetry sets up the OpenTelemetry tracer provider that
// pkg/core/hooks.Runner's spans are exported through. The hook runner
// always calls otel.Tracer(...).Start regardless of whether a real
// exporter is installed; without this package that tracer is the global
// no-op provider. Setup installs a real one when the caller wants spans
// to leave the process.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Config controls the OTLP/HTTP exporter Setup installs.
type Config struct {
	// Enabled gates the whole thing; Setup is a no-op when false, and the
	// hook runner's spans simply go nowhere.
	Enabled bool
	// ServiceName tags every exported span's resource. Defaults to
	// "toolhooks-go".
	ServiceName string
	// Endpoint is the OTLP/HTTP collector endpoint, e.g.
	// "localhost:4318". Empty uses the exporter's own default resolution
	// (the OTEL_EXPORTER_OTLP_ENDPOINT environment variable).
	Endpoint string
	// Insecure disables TLS for the OTLP connection, for a local
	// collector without certificates.
	Insecure bool
}

// Setup installs a batching OTLP/HTTP tracer provider as the global
// provider and returns a shutdown func the caller must invoke (typically
// deferred) to flush buffered spans before exit. When cfg.Enabled is
// false, Setup returns a no-op shutdown func and leaves the existing
// global provider (normally the SDK's no-op default) untouched.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "toolhooks-go"
	}

	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return noop, fmt.Errorf("telemetry: create otlp exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return noop, fmt.Errorf("telemetry: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
