// Package tasklet runs a port.Tasklet as a job step.
package tasklet

import (
	"context"
	"time"

	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// TaskletStep is an implementation of port.Step for Tasklet-oriented processing.
type TaskletStep struct {
	id                     string
	tasklet                port.Tasklet
	jobRepository          repository.JobRepository
	stepExecutionListeners []port.StepExecutionListener
	// promotedKeys are copied from the step's ExecutionContext to the job's
	// after a successful run.
	promotedKeys   []string
	metricRecorder metrics.MetricRecorder
	tracer         metrics.Tracer
}

// Option configures a TaskletStep.
type Option func(*TaskletStep)

// WithListeners registers step listeners, called in order.
func WithListeners(listeners ...port.StepExecutionListener) Option {
	return func(s *TaskletStep) { s.stepExecutionListeners = append(s.stepExecutionListeners, listeners...) }
}

// WithPromotedKeys promotes the named ExecutionContext keys to the job on success.
func WithPromotedKeys(keys ...string) Option {
	return func(s *TaskletStep) { s.promotedKeys = append(s.promotedKeys, keys...) }
}

// WithMetricRecorder sets the metric recorder.
func WithMetricRecorder(recorder metrics.MetricRecorder) Option {
	return func(s *TaskletStep) { s.metricRecorder = recorder }
}

// WithTracer sets the tracer.
func WithTracer(tracer metrics.Tracer) Option {
	return func(s *TaskletStep) { s.tracer = tracer }
}

// NewTaskletStep creates a new TaskletStep instance.
func NewTaskletStep(id string, tasklet port.Tasklet, jobRepository repository.JobRepository, opts ...Option) *TaskletStep {
	s := &TaskletStep{
		id:             id,
		tasklet:        tasklet,
		jobRepository:  jobRepository,
		metricRecorder: metrics.NewNoOpMetricRecorder(),
		tracer:         metrics.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StepName returns the step name.
func (s *TaskletStep) StepName() string {
	return s.id
}

func (s *TaskletStep) notifyBeforeStep(ctx context.Context, stepExecution *model.StepExecution) {
	for _, l := range s.stepExecutionListeners {
		l.BeforeStep(ctx, stepExecution)
	}
}

func (s *TaskletStep) notifyAfterStep(ctx context.Context, stepExecution *model.StepExecution) {
	for _, l := range s.stepExecutionListeners {
		l.AfterStep(ctx, stepExecution)
	}
}

// Execute runs the Tasklet and records the outcome on stepExecution.
// The StepExecution must already be saved.
func (s *TaskletStep) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) (err error) {
	logger.Infof("TaskletStep '%s' executing.", s.id)

	ctx, endSpan := s.tracer.StartStepSpan(ctx, stepExecution)
	defer endSpan()
	ctx = port.GetContextWithStepExecution(ctx, stepExecution)

	stepExecution.MarkAsStarted()
	if err := s.jobRepository.UpdateStepExecution(ctx, stepExecution); err != nil {
		return exception.NewBatchError(s.id, "Failed to update StepExecution status to STARTED", err, false, false)
	}
	s.metricRecorder.RecordStepStart(ctx, stepExecution)
	s.notifyBeforeStep(ctx, stepExecution)

	var exitStatus model.ExitStatus
	exitStatus, err = s.tasklet.Execute(ctx, stepExecution)

	if closeErr := s.tasklet.Close(ctx); closeErr != nil {
		logger.Errorf("TaskletStep '%s': Failed to close Tasklet: %v", s.id, closeErr)
		if err == nil {
			err = closeErr
		}
	}

	if err != nil {
		s.tracer.RecordError(ctx, s.id, err)
		stepExecution.MarkAsFailed(err)
	} else {
		stepExecution.Status = model.BatchStatusCompleted
		if exitStatus == "" {
			exitStatus = model.ExitStatusCompleted
		}
		stepExecution.ExitStatus = exitStatus
		now := time.Now()
		stepExecution.EndTime = &now
		stepExecution.LastUpdated = now
		s.promote(jobExecution, stepExecution)
	}

	s.notifyAfterStep(ctx, stepExecution)
	s.metricRecorder.RecordStepEnd(ctx, stepExecution)

	if updateErr := s.jobRepository.UpdateStepExecution(ctx, stepExecution); updateErr != nil {
		logger.Errorf("TaskletStep '%s': Failed to update final StepExecution state: %v", s.id, updateErr)
		if err == nil {
			err = updateErr
		}
	}

	logger.Infof("TaskletStep '%s' finished. ExitStatus: %s", s.id, stepExecution.ExitStatus)
	return err
}

func (s *TaskletStep) promote(jobExecution *model.JobExecution, stepExecution *model.StepExecution) {
	for _, key := range s.promotedKeys {
		if v, ok := stepExecution.ExecutionContext.Get(key); ok {
			jobExecution.ExecutionContext.Put(key, v)
		}
	}
}

var _ port.Step = (*TaskletStep)(nil)
