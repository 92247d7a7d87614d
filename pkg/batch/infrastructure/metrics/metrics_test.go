package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	config "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	coremetrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
)

func TestPrometheusRecorder_StepAndStage(t *testing.T) {
	r := NewPrometheusRecorder("surfin", "")
	ctx := context.Background()

	je := model.NewJobExecution("prepareForecastDataset", nil)
	se := model.NewStepExecution(je, "stackStep")
	se.MarkAsStarted()
	r.RecordStepStart(ctx, se)
	se.WriteCount = 120
	se.MarkAsCompleted()
	r.RecordStepEnd(ctx, se)

	r.RecordStageRows(ctx, "stack", "ulsan_1", 60)
	r.RecordStageRows(ctx, "stack", "ulsan_1", 72)

	assert.Equal(t, float64(120), testutil.ToFloat64(r.stepWriteCount.WithLabelValues("prepareForecastDataset", "stackStep")))
	assert.Equal(t, float64(72), testutil.ToFloat64(r.stageRows.WithLabelValues("stack", "ulsan_1")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stepDurationSeconds))
}

func TestPrometheusRecorder_RecordJobEndIgnoresRunning(t *testing.T) {
	r := NewPrometheusRecorder("surfin", "")
	je := model.NewJobExecution("prepareForecastDataset", nil)

	r.RecordJobEnd(context.Background(), je)
	assert.Equal(t, 0, testutil.CollectAndCount(r.jobDurationSeconds))

	je.MarkAsStarted()
	je.MarkAsCompleted()
	r.RecordJobEnd(context.Background(), je)
	assert.Equal(t, 1, testutil.CollectAndCount(r.jobDurationSeconds))
}

func TestPrometheusRecorder_FlushWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energyprep.prom")
	r := NewPrometheusRecorder("surfin", path)
	r.RecordStageRows(context.Background(), "align", "all", 8760)
	r.RecordDuration(context.Background(), "source_read", 15*time.Millisecond, map[string]string{"kind": "obs"})

	require.NoError(t, r.Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `surfin_prep_stage_rows{region="all",stage="align"} 8760`)
	assert.Contains(t, string(data), `surfin_prep_operation_duration_seconds_count{operation="source_read",tag="obs"} 1`)
}

func TestNewMetricRecorder_Disabled(t *testing.T) {
	rec := NewMetricRecorder(&config.MetricsConfig{Enabled: false})
	_, ok := rec.(*coremetrics.NoOpMetricRecorder)
	assert.True(t, ok)
}

func TestOpenTelemetryTracer_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := NewOpenTelemetryTracerWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	ctx := context.Background()

	je := model.NewJobExecution("prepareForecastDataset", nil)
	jobCtx, endJob := tracer.StartJobSpan(ctx, je)

	se := model.NewStepExecution(je, "splitStep")
	stepCtx, endStep := tracer.StartStepSpan(jobCtx, se)
	tracer.RecordEvent(stepCtx, "boundary", map[string]interface{}{"region": "ulsan_1", "train_boundary": 6})
	tracer.RecordError(stepCtx, "split", errors.New("empty group"))
	se.MarkAsFailed(errors.New("empty group"))
	endStep()

	je.MarkAsFailed(errors.New("empty group"))
	endJob()

	ended := sr.Ended()
	require.Len(t, ended, 2)
	step, job := ended[0], ended[1]
	assert.Equal(t, "step:splitStep", step.Name())
	assert.Equal(t, "job:prepareForecastDataset", job.Name())
	assert.Equal(t, job.SpanContext().SpanID(), step.Parent().SpanID())
	require.Len(t, step.Events(), 2)
	assert.Equal(t, "boundary", step.Events()[0].Name)

	require.NoError(t, tracer.Shutdown(ctx))
}

func TestNewOpenTelemetryTracer_UnknownExporter(t *testing.T) {
	_, err := NewOpenTelemetryTracer(context.Background(), &config.TracingConfig{Exporter: "zipkin"})
	assert.ErrorContains(t, err, "unknown tracing exporter: zipkin")
}
