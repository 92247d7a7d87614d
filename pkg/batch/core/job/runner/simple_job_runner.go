// Package runner provides the sequential job implementation and the runner
// that drives a job execution to a persisted final state.
package runner

import (
	"context"

	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// SimpleJobRunner is an implementation of port.JobRunner that executes the flow by calling the Job's Run method.
type SimpleJobRunner struct {
	jobRepository repository.JobRepository
}

// NewSimpleJobRunner creates an instance of SimpleJobRunner.
func NewSimpleJobRunner(repo repository.JobRepository) *SimpleJobRunner {
	return &SimpleJobRunner{jobRepository: repo}
}

// Run executes the job and persists the final JobExecution state.
func (r *SimpleJobRunner) Run(ctx context.Context, job port.Job, jobExecution *model.JobExecution) {
	if jobExecution.Status == model.BatchStatusStarting {
		jobExecution.MarkAsStarted()
		if err := r.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
			logger.Errorf("JobRunner: Failed to update JobExecution (ID: %s) status to STARTED: %v", jobExecution.ID, err)
		}
	}

	err := job.Run(ctx, jobExecution)

	if err != nil {
		if !jobExecution.Status.IsFinished() {
			jobExecution.MarkAsFailed(err)
		}
	} else if !jobExecution.Status.IsFinished() {
		jobExecution.MarkAsCompleted()
	}

	// The caller's context may already be cancelled; the final state is still written.
	if updateErr := r.jobRepository.UpdateJobExecution(context.WithoutCancel(ctx), jobExecution); updateErr != nil {
		logger.Errorf("JobRunner: Failed to update final JobExecution (ID: %s) state: %v", jobExecution.ID, updateErr)
	}
}

var _ port.JobRunner = (*SimpleJobRunner)(nil)
