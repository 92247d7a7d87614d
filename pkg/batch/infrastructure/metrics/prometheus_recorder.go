// Package metrics provides the Prometheus and OpenTelemetry backed
// implementations of the core metrics interfaces.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
// A batch process is not scraped, so the registry is written to a node_exporter
// textfile when the job ends.
type PrometheusRecorder struct {
	registry     *prometheus.Registry
	textfilePath string

	jobDurationSeconds  *prometheus.HistogramVec
	jobStatusCounter    *prometheus.CounterVec
	stepDurationSeconds *prometheus.HistogramVec
	stepStatusCounter   *prometheus.CounterVec
	stepWriteCount      *prometheus.CounterVec
	stageRows           *prometheus.GaugeVec
	operationSeconds    *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder(namespace, textfilePath string) *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry:     registry,
		textfilePath: textfilePath,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_job_duration_seconds",
			Help:      "Duration of batch job executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_name", "status", "exit_status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_job_status_total",
			Help:      "Total number of batch job executions by status.",
		}, []string{"job_name", "status"}),
		stepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_step_duration_seconds",
			Help:      "Duration of batch step executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_name", "step_name", "status", "exit_status"}),
		stepStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_step_status_total",
			Help:      "Total number of batch step executions by status.",
		}, []string{"job_name", "step_name", "status"}),
		stepWriteCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_step_write_total",
			Help:      "Total rows written by step.",
		}, []string{"job_name", "step_name"}),
		stageRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prep_stage_rows",
			Help:      "Rows produced by a pipeline stage in the last run.",
		}, []string{"stage", "region"}),
		operationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prep_operation_duration_seconds",
			Help:      "Duration of individual pipeline operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "tag"}),
	}

	registry.MustRegister(
		r.jobDurationSeconds,
		r.jobStatusCounter,
		r.stepDurationSeconds,
		r.stepStatusCounter,
		r.stepWriteCount,
		r.stageRows,
		r.operationSeconds,
	)
	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordJobStart records the start of a JobExecution.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Job '%s' started.", execution.JobName)
}

// RecordJobEnd records the end of a JobExecution.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	if execution.EndTime == nil {
		return
	}
	duration := execution.Duration().Seconds()
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	r.jobDurationSeconds.WithLabelValues(
		execution.JobName,
		execution.Status.String(),
		execution.ExitStatus.String(),
	).Observe(duration)
	logger.Debugf("Metrics: Job '%s' ended. Duration: %.3fs", execution.JobName, duration)
}

// RecordStepStart records the start of a StepExecution.
func (r *PrometheusRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {
	r.stepStatusCounter.WithLabelValues(jobNameOf(execution), execution.StepName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Step '%s' started.", execution.StepName)
}

// RecordStepEnd records the end of a StepExecution.
func (r *PrometheusRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	if execution.EndTime == nil {
		return
	}
	jobName := jobNameOf(execution)
	duration := execution.EndTime.Sub(execution.StartTime).Seconds()

	r.stepStatusCounter.WithLabelValues(jobName, execution.StepName, execution.Status.String()).Inc()
	r.stepDurationSeconds.WithLabelValues(
		jobName,
		execution.StepName,
		execution.Status.String(),
		execution.ExitStatus.String(),
	).Observe(duration)
	if execution.WriteCount > 0 {
		r.stepWriteCount.WithLabelValues(jobName, execution.StepName).Add(float64(execution.WriteCount))
	}
	logger.Debugf("Metrics: Step '%s' ended. Duration: %.3fs", execution.StepName, duration)
}

// RecordStageRows sets the row gauge of a stage.
func (r *PrometheusRecorder) RecordStageRows(ctx context.Context, stage string, region string, rows int) {
	r.stageRows.WithLabelValues(stage, region).Set(float64(rows))
}

// RecordDuration observes duration under name. Only the value of the
// alphabetically first tag key is kept as a label.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	var firstKey, tag string
	for k, v := range tags {
		if firstKey == "" || k < firstKey {
			firstKey, tag = k, v
		}
	}
	r.operationSeconds.WithLabelValues(name, tag).Observe(duration.Seconds())
}

// Flush writes the registry to the configured textfile, if any.
func (r *PrometheusRecorder) Flush() error {
	if r.textfilePath == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.textfilePath, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", r.textfilePath, err)
	}
	logger.Infof("Metrics written to %s", r.textfilePath)
	return nil
}

func jobNameOf(execution *model.StepExecution) string {
	if execution.JobExecution == nil {
		return ""
	}
	return execution.JobExecution.JobName
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
