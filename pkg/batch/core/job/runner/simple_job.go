package runner

import (
	"context"
	"errors"
	"fmt"

	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// SimpleJob runs its steps one after another.
//
// A step that finishes with ExitStatusNoOp ends the job early with the same
// exit status; the remaining steps are not run. A failing step ends the job
// unless stopOnStepFailure is false, in which case the remaining steps still
// run and the job is marked FAILED at the end.
type SimpleJob struct {
	name              string
	steps             []port.Step
	requiredParams    []string
	stopOnStepFailure bool
	jobRepository     repository.JobRepository
	jobListeners      []port.JobExecutionListener
	metricRecorder    metrics.MetricRecorder
	tracer            metrics.Tracer
}

// JobOption configures a SimpleJob.
type JobOption func(*SimpleJob)

// WithJobListeners registers job listeners, called in order.
func WithJobListeners(listeners ...port.JobExecutionListener) JobOption {
	return func(j *SimpleJob) { j.jobListeners = append(j.jobListeners, listeners...) }
}

// WithRequiredParameters makes ValidateParameters reject executions missing any of keys.
func WithRequiredParameters(keys ...string) JobOption {
	return func(j *SimpleJob) { j.requiredParams = append(j.requiredParams, keys...) }
}

// WithStopOnStepFailure controls whether a failed step ends the job immediately.
func WithStopOnStepFailure(stop bool) JobOption {
	return func(j *SimpleJob) { j.stopOnStepFailure = stop }
}

// WithJobMetrics sets the metric recorder and tracer.
func WithJobMetrics(recorder metrics.MetricRecorder, tracer metrics.Tracer) JobOption {
	return func(j *SimpleJob) {
		j.metricRecorder = recorder
		j.tracer = tracer
	}
}

// NewSimpleJob creates a job that runs steps in order.
func NewSimpleJob(name string, jobRepository repository.JobRepository, steps []port.Step, opts ...JobOption) *SimpleJob {
	j := &SimpleJob{
		name:              name,
		steps:             steps,
		stopOnStepFailure: true,
		jobRepository:     jobRepository,
		metricRecorder:    metrics.NewNoOpMetricRecorder(),
		tracer:            metrics.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// JobName returns the job name.
func (j *SimpleJob) JobName() string {
	return j.name
}

// ValidateParameters checks that every required parameter is present.
func (j *SimpleJob) ValidateParameters(params model.JobParameters) error {
	for _, key := range j.requiredParams {
		if _, ok := params[key]; !ok {
			return exception.NewBatchErrorf(j.name, "required job parameter '%s' is missing", key)
		}
	}
	return nil
}

func (j *SimpleJob) notifyBeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.BeforeJob(ctx, jobExecution)
	}
}

func (j *SimpleJob) notifyAfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.AfterJob(ctx, jobExecution)
	}
}

// Run executes the steps and sets the final status of jobExecution.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution) (err error) {
	logger.Infof("Starting Job '%s' (Execution ID: %s).", j.name, jobExecution.ID)

	ctx, finishSpan := j.tracer.StartJobSpan(ctx, jobExecution)
	defer finishSpan()

	j.metricRecorder.RecordJobStart(ctx, jobExecution)
	j.notifyBeforeJob(ctx, jobExecution)

	defer func() {
		j.notifyAfterJob(ctx, jobExecution)
		j.metricRecorder.RecordJobEnd(ctx, jobExecution)
		logger.Infof("Job '%s' (Execution ID: %s) finished. Final Status: %s, Exit Status: %s",
			j.name, jobExecution.ID, jobExecution.Status, jobExecution.ExitStatus)
	}()

	var firstErr error
	for _, step := range j.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warnf("Context cancelled, interrupting execution of Job '%s': %v", j.name, ctxErr)
			jobExecution.AddFailureException(ctxErr)
			jobExecution.MarkAsStopped()
			j.tracer.RecordError(ctx, "job_runner", ctxErr)
			return ctxErr
		}

		stepExecution := model.NewStepExecution(jobExecution, step.StepName())
		if saveErr := j.jobRepository.SaveStepExecution(ctx, stepExecution); saveErr != nil {
			saveErr = exception.NewBatchError(j.name, "Error saving new StepExecution", saveErr, false, false)
			jobExecution.MarkAsFailed(saveErr)
			j.tracer.RecordError(ctx, "job_runner", saveErr)
			return saveErr
		}

		stepErr := step.Execute(ctx, jobExecution, stepExecution)
		if updateErr := j.jobRepository.UpdateJobExecution(ctx, jobExecution); updateErr != nil {
			logger.Errorf("Job '%s': Failed to update JobExecution after step '%s': %v", j.name, step.StepName(), updateErr)
		}

		if stepErr != nil {
			logger.Errorf("Job '%s': Error occurred during execution of step '%s': %v", j.name, step.StepName(), stepErr)
			j.tracer.RecordError(ctx, "job_runner", stepErr)
			if errors.Is(stepErr, context.Canceled) {
				jobExecution.AddFailureException(stepErr)
				jobExecution.MarkAsStopped()
				return stepErr
			}
			if j.stopOnStepFailure {
				jobExecution.MarkAsFailed(stepErr)
				return stepErr
			}
			jobExecution.AddFailureException(stepErr)
			if firstErr == nil {
				firstErr = stepErr
			}
			continue
		}

		if stepExecution.ExitStatus == model.ExitStatusNoOp {
			logger.Infof("Job '%s': Step '%s' reported %s, skipping the remaining steps.", j.name, step.StepName(), model.ExitStatusNoOp)
			jobExecution.MarkAsNoOp()
			return nil
		}
		logger.Infof("Job '%s': Step '%s' completed successfully. ExitStatus: %s", j.name, step.StepName(), stepExecution.ExitStatus)
	}

	if firstErr != nil {
		jobExecution.MarkAsFailed(firstErr)
		return fmt.Errorf("job '%s' finished with failed steps: %w", j.name, firstErr)
	}
	jobExecution.MarkAsCompleted()
	return nil
}

var _ port.Job = (*SimpleJob)(nil)
