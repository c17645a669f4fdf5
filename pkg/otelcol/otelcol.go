package otelcol

import (
	"context"

	"license-tracker/pkg/config"
	"license-tracker/pkg/otelcol/exporters"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module installs the global tracer and meter providers. Spans are exported
// over OTLP when otel.addr is set; metrics are always exposed to the
// prometheus registry scraped at /metrics.
var Module = fx.Module("otelcol",
	fx.Provide(ProvideResource),
	fx.Invoke(registerTracing, registerMetrics),
)

func ProvideResource(cfg *config.Config) *resource.Resource {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.AppName),
		semconv.ServiceVersion(cfg.AppVersion),
		semconv.DeploymentEnvironment(cfg.AppEnv),
	))
	if err != nil {
		zap.L().Warn("failed to merge otel resource, using default", zap.Error(err))
		return resource.Default()
	}
	return res
}

func ProvideTrace(exporter trace.SpanExporter, opts ...trace.TracerProviderOption) *trace.TracerProvider {
	opts = append(opts, trace.WithBatcher(exporter))
	return trace.NewTracerProvider(opts...)
}

func ProvideMetric(reader metric.Reader, opts ...metric.Option) *metric.MeterProvider {
	opts = append(opts, metric.WithReader(reader))
	return metric.NewMeterProvider(opts...)
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, res *resource.Resource) error {
	if cfg.Otel.Addr == "" {
		return nil
	}

	var (
		exporter trace.SpanExporter
		err      error
	)
	switch cfg.Otel.Protocol {
	case "grpc":
		exporter, err = exporters.ProvideGrpc(cfg)
	default:
		exporter, err = exporters.ProvideHttp(cfg)
	}
	if err != nil {
		return err
	}

	tp := ProvideTrace(exporter, trace.WithResource(res))
	otel.SetTracerProvider(tp)
	zap.L().Info("otel tracing enabled", zap.String("addr", cfg.Otel.Addr), zap.String("protocol", cfg.Otel.Protocol))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}

func registerMetrics(lc fx.Lifecycle, res *resource.Resource) error {
	reader, err := otelprom.New()
	if err != nil {
		return err
	}

	mp := ProvideMetric(reader, metric.WithResource(res))
	otel.SetMeterProvider(mp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mp.Shutdown(ctx)
		},
	})
	return nil
}
