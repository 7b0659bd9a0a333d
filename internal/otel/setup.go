// Package otel bootstraps the OpenTelemetry pipeline for the relay. With
// useOTLP the exporters speak OTLP over gRPC; without it everything goes to
// stdout, which is what local development and the test harness use.
package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// SetupOTelSDK wires propagation, tracing, metrics and logging providers. The
// returned shutdown must be called to flush exporters; it aggregates every
// provider's shutdown error.
func SetupOTelSDK(ctx context.Context, useOTLP bool) (func(context.Context) error, error) {
	var shutdownFuncs []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) error {
		return errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracerProvider, err := newTracerProvider(useOTLP)
	if err != nil {
		return shutdown, handleErr(err)
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMeterProvider(useOTLP)
	if err != nil {
		return shutdown, handleErr(err)
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider(useOTLP)
	if err != nil {
		return shutdown, handleErr(err)
	}
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return shutdown, nil
}

func newTracerProvider(useOTLP bool) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error

	if useOTLP {
		exporter, err = otlptracegrpc.New(context.Background())
	} else {
		exporter, err = stdouttrace.New()
	}
	if err != nil {
		return nil, err
	}

	return trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithBatcher(exporter),
	), nil
}

func newMeterProvider(useOTLP bool) (*metric.MeterProvider, error) {
	var exporter metric.Exporter
	var err error

	if useOTLP {
		exporter, err = otlpmetricgrpc.New(context.Background())
	} else {
		exporter, err = stdoutmetric.New()
	}
	if err != nil {
		return nil, err
	}

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
	), nil
}

func newLoggerProvider(useOTLP bool) (*log.LoggerProvider, error) {
	var exporter log.Exporter
	var err error

	if useOTLP {
		exporter, err = otlploggrpc.New(context.Background())
	} else {
		exporter, err = stdoutlog.New()
	}
	if err != nil {
		return nil, err
	}

	return log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter)),
	), nil
}
