// Package port defines the contracts between the job runner, steps, tasklets and listeners.
package port

import (
	"context"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
)

// JobRunner is responsible for driving a Job to completion and persisting its final state.
type JobRunner interface {
	Run(ctx context.Context, job Job, jobExecution *model.JobExecution)
}

// Job is an executable batch job.
type Job interface {
	// Run executes the job's steps. The JobExecution is updated in place.
	Run(ctx context.Context, jobExecution *model.JobExecution) error
	// JobName returns the logical name of the job.
	JobName() string
	// ValidateParameters validates job parameters before execution.
	ValidateParameters(params model.JobParameters) error
}

// Step is a single step executed within a job.
type Step interface {
	// Execute runs the step and records its outcome on stepExecution.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
}

// Tasklet is a step body that performs one operation.
type Tasklet interface {
	// Execute runs the business logic. Scalar results are written to
	// stepExecution.ExecutionContext and the counters on stepExecution.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases resources.
	Close(ctx context.Context) error
}

// TaskletFunc adapts a function to the Tasklet interface.
type TaskletFunc func(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)

// Execute calls f.
func (f TaskletFunc) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	return f(ctx, stepExecution)
}

// Close is a no-op.
func (f TaskletFunc) Close(ctx context.Context) error { return nil }

// StepExecutionListener receives step lifecycle events.
type StepExecutionListener interface {
	// BeforeStep is called just before a step execution starts.
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	// AfterStep is called after a step execution completes, successful or not.
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}

// JobExecutionListener receives job lifecycle events.
type JobExecutionListener interface {
	// BeforeJob is called just before a job execution starts.
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	// AfterJob is called after a job execution completes, successful or not.
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

type contextKey string

// StepExecutionKey is the context key under which the running StepExecution is stored.
const StepExecutionKey contextKey = "stepExecution"

// GetContextWithStepExecution stores a StepExecution in the Context.
func GetContextWithStepExecution(ctx context.Context, se *model.StepExecution) context.Context {
	return context.WithValue(ctx, StepExecutionKey, se)
}

// GetStepExecutionFromContext retrieves a StepExecution from the Context. Returns nil if not found.
func GetStepExecutionFromContext(ctx context.Context) *model.StepExecution {
	if se, ok := ctx.Value(StepExecutionKey).(*model.StepExecution); ok {
		return se
	}
	return nil
}
