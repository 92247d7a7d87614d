// Package usecase holds the entry points an application uses to start jobs
// and to look at their history.
package usecase

import (
	"context"
	"errors"

	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// JobLauncher is an interface for launching a Job with JobParameters.
type JobLauncher interface {
	// Launch runs job to completion and returns its JobExecution.
	// The error reports a failure of the launch itself (invalid parameters,
	// repository unavailable); a failed job is reported through the execution's status.
	Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error)
}

// SimpleJobLauncher runs jobs synchronously in the calling goroutine.
type SimpleJobLauncher struct {
	jobRepository  repository.JobRepository
	jobRunner      port.JobRunner
	metricRecorder metrics.MetricRecorder
}

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
func NewSimpleJobLauncher(repo repository.JobRepository, runner port.JobRunner, recorder metrics.MetricRecorder) *SimpleJobLauncher {
	return &SimpleJobLauncher{
		jobRepository:  repo,
		jobRunner:      runner,
		metricRecorder: recorder,
	}
}

// Launch validates params, persists a new JobExecution and runs the job.
func (l *SimpleJobLauncher) Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error) {
	const op = "SimpleJobLauncher.Launch"
	logger.Infof("Launching Job '%s'. Parameters: %s", job.JobName(), params.String())

	if err := job.ValidateParameters(params); err != nil {
		return nil, exception.NewBatchError(op, "invalid job parameters", err, false, false)
	}

	jobExecution := model.NewJobExecution(job.JobName(), params)
	if err := l.jobRepository.SaveJobExecution(ctx, jobExecution); err != nil {
		return nil, exception.NewBatchError(op, "failed to save JobExecution", err, false, false)
	}

	l.jobRunner.Run(ctx, job, jobExecution)

	if err := l.metricRecorder.Flush(); err != nil {
		logger.Warnf("Failed to flush metrics for Job '%s': %v", job.JobName(), err)
	}
	return jobExecution, nil
}

// JobExplorer reads execution history.
type JobExplorer interface {
	// GetJobExecution retrieves a JobExecution by its ID.
	GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error)
	// GetLastJobExecution returns the latest execution of jobName, or nil if it never ran.
	GetLastJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error)
}

// SimpleJobExplorer reads from a JobRepository.
type SimpleJobExplorer struct {
	jobRepository repository.JobRepository
}

// NewSimpleJobExplorer creates a new SimpleJobExplorer.
func NewSimpleJobExplorer(repo repository.JobRepository) *SimpleJobExplorer {
	return &SimpleJobExplorer{jobRepository: repo}
}

// GetJobExecution retrieves a JobExecution by its ID.
func (e *SimpleJobExplorer) GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error) {
	return e.jobRepository.FindJobExecutionByID(ctx, executionID)
}

// GetLastJobExecution returns the latest execution of jobName, or nil if it never ran.
func (e *SimpleJobExplorer) GetLastJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error) {
	je, err := e.jobRepository.FindLatestJobExecution(ctx, jobName)
	if errors.Is(err, repository.ErrJobExecutionNotFound) {
		return nil, nil
	}
	return je, err
}

var (
	_ JobLauncher = (*SimpleJobLauncher)(nil)
	_ JobExplorer = (*SimpleJobExplorer)(nil)
)
