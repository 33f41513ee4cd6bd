// Package telemetry configures OpenTelemetry tracing for the bridge.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "agent-bridge"

// Config selects the OTLP collector.
type Config struct {
	// Endpoint is the OTLP gRPC collector address. Tracing is disabled when empty.
	Endpoint string
	// Insecure disables TLS on the collector connection.
	Insecure bool
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a global tracer provider exporting to the configured
// collector. The returned function must be called on exit.
func Setup(ctx context.Context, log *slog.Logger, cfg Config) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		log.Debug("OTLP endpoint not set, tracing disabled")

		return func(context.Context) error { return nil }, nil
	}

	log.Info("Initializing OTLP exporter", "endpoint", cfg.Endpoint, "insecure", cfg.Insecure)

	var creds grpc.DialOption
	if cfg.Insecure {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	} else {
		creds = grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, ""))
	}

	conn, err := grpc.NewClient(cfg.Endpoint, creds)
	if err != nil {
		return nil, fmt.Errorf("create gRPC connection to OTLP endpoint: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
		),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		_ = conn.Close()

		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), conn.Close())
	}, nil
}
