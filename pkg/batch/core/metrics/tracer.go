package metrics

import (
	"context"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing.
type Tracer interface {
	// StartJobSpan starts a span for a JobExecution.
	// Returns a context carrying the span and a function that ends it.
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())

	// StartStepSpan starts a span for a StepExecution, normally under the job span.
	StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func())

	// RecordError records an error in the current span.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event in the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})

	// Shutdown flushes pending spans.
	Shutdown(ctx context.Context) error
}
