package metrics

import (
	"context"

	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	metrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
)

// NewMetricRecorder returns a PrometheusRecorder when metrics are enabled, a no-op recorder otherwise.
func NewMetricRecorder(cfg *config.MetricsConfig) metrics.MetricRecorder {
	if !cfg.Enabled {
		return metrics.NewNoOpMetricRecorder()
	}
	return NewPrometheusRecorder(cfg.Namespace, cfg.TextfilePath)
}

// NewTracer returns an OpenTelemetryTracer when tracing is enabled, a no-op tracer otherwise.
func NewTracer(lc fx.Lifecycle, cfg *config.TracingConfig) (metrics.Tracer, error) {
	if !cfg.Enabled {
		return metrics.NewNoOpTracer(), nil
	}
	tracer, err := NewOpenTelemetryTracer(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(tracer.Shutdown))
	return tracer, nil
}

// Module provides the metric recorder and tracer selected by configuration.
var Module = fx.Options(
	fx.Provide(NewMetricRecorder),
	fx.Provide(NewTracer),
)
