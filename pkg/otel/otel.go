package otel

import (
	"context"
	"errors"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
)

const instrumentationName = "github.com/adrianliechti/ingester"

// EnableTelemetry turns on the OTLP exporters. It is set when TELEMETRY is present in the environment.
var EnableTelemetry = os.Getenv("TELEMETRY") != ""

// Observable marks providers that are already wrapped with instrumentation.
type Observable interface {
	otelSetup()
}

// Setup installs OTLP exporters for traces, metrics and logs. It does nothing unless telemetry is
// enabled. The returned function flushes and stops the exporters.
func Setup(ctx context.Context, serviceName, serviceVersion string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if !EnableTelemetry {
		return noop, nil
	}

	resource, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)

	if err != nil {
		return noop, err
	}

	var shutdowns []func(context.Context) error
	var errs []error

	for _, setup := range []func(context.Context, *sdkresource.Resource) (func(context.Context) error, error){
		setupLogger,
		setupMeter,
		setupTracer,
	} {
		shutdown, err := setup(ctx, resource)

		if err != nil {
			errs = append(errs, err)
			continue
		}

		shutdowns = append(shutdowns, shutdown)
	}

	shutdown := func(ctx context.Context) error {
		var errs []error

		for _, s := range shutdowns {
			errs = append(errs, s(ctx))
		}

		return errors.Join(errs...)
	}

	return shutdown, errors.Join(errs...)
}

func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
