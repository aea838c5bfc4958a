// internal/infrastructure/telemetry/telemetry.go
package telemetry

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/your-org/campus-delivery-backend/internal/config"
)

// Provider owns the process tracer provider
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup installs a global tracer provider. Without an OTLP endpoint or stdout
// exporting it returns a provider that records nothing.
func Setup(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Provider, error) {
	return setup(ctx, cfg, logger, nil)
}

func setup(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, stdout io.Writer) (*Provider, error) {
	exporter, err := newExporter(ctx, cfg.Telemetry, stdout)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		logger.Debug("Tracing disabled")
		return &Provider{}, nil
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.App.Version),
			semconv.DeploymentEnvironment(cfg.App.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
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

	logger.WithField("service", serviceName).Info("Tracing enabled")
	return &Provider{tp: tp}, nil
}

func newExporter(ctx context.Context, cfg config.TelemetryConfig, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch {
	case cfg.OTLPEndpoint != "":
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		return exporter, nil
	case cfg.Stdout:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if stdout != nil {
			opts = append(opts, stdouttrace.WithWriter(stdout))
		}
		exporter, err := stdouttrace.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, nil
	}
}

// Enabled reports whether spans are exported
func (p *Provider) Enabled() bool {
	return p.tp != nil
}

// Shutdown flushes pending spans
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
