package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ProviderConfig configures the OTel SDK meter provider InitProvider builds.
type ProviderConfig struct {
	// ServiceName is reported as the "service.name" resource attribute.
	// Defaults to "vibe".
	ServiceName string

	// ServiceVersion is reported as the "service.version" resource
	// attribute.
	ServiceVersion string
}

// InitProvider wires a sdkmetric.MeterProvider backed by a Prometheus
// exporter (served at /metrics by `vibe serve`) and installs it as the
// global OTel meter provider so Default() picks it up. Returns a shutdown
// func to flush and close the exporter; call it in a defer from main().
func InitProvider(cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "vibe"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
