// Package telemetry wires OpenTelemetry tracing and Pyroscope profiling.
// Both are opt-in; when disabled the global no-op providers stay in place.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/theoremus-urban-solutions/transit-live/config"
)

// Version is reported as service.version on every span
const Version = "1.0.0"

// InitTracing installs a global tracer provider exporting over OTLP.
// The returned function flushes and shuts the provider down.
func InitTracing(ctx context.Context, cfg config.TelemetryConfig, log *zap.SugaredLogger) (func(), error) {
	if !cfg.Tracing {
		log.Debugw("tracing disabled")
		return func() {}, nil
	}

	exporter, err := newTraceExporter(ctx, cfg)
	if err != nil {
		log.Warnw("failed to create OTLP exporter, tracing disabled", "error", err)
		return func() {}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(Version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Infow("tracing enabled", "endpoint", cfg.TracingEndpoint, "protocol", cfg.TracingProtocol)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Errorw("error shutting down tracer provider", "error", err)
		}
	}, nil
}

func newTraceExporter(ctx context.Context, cfg config.TelemetryConfig) (*otlptrace.Exporter, error) {
	if cfg.TracingProtocol == "grpc" {
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.TracingEndpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.TracingEndpoint),
		otlptracehttp.WithInsecure(),
	)
}
