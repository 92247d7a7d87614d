// Package metrics defines the recording and tracing abstractions used by the
// job runner and the steps. Implementations live in infrastructure/metrics.
package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics related to batch execution.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)
	// RecordJobEnd records the end of a JobExecution.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)
	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)
	// RecordStepEnd records the end of a StepExecution.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)

	// RecordStageRows records how many rows a pipeline stage produced for a
	// region (or "all" for whole-table stages).
	RecordStageRows(ctx context.Context, stage string, region string, rows int)

	// RecordDuration records the execution time of a named operation.
	//
	//	RecordDuration(ctx, "source_read", d, map[string]string{"kind": "obs"})
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)

	// Flush persists whatever the recorder keeps in memory. Called once when the job ends.
	Flush() error
}
