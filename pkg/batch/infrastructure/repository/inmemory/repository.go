// Package inmemory keeps job execution history in process memory.
// It is the default repository for one-shot runs where history does not need to outlive the process.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
)

// InMemoryJobRepository stores snapshots of executions in maps.
type InMemoryJobRepository struct {
	mu             sync.RWMutex
	jobExecutions  map[string]model.JobExecution
	stepExecutions map[string]model.StepExecution
}

// NewInMemoryJobRepository creates an empty repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobExecutions:  make(map[string]model.JobExecution),
		stepExecutions: make(map[string]model.StepExecution),
	}
}

// snapshot copies the mutable parts so later changes by the caller are not visible.
func snapshotJob(je *model.JobExecution) model.JobExecution {
	c := *je
	c.ExecutionContext = je.ExecutionContext.Copy()
	c.Failures = append(model.FailureList(nil), je.Failures...)
	c.StepExecutions = nil
	return c
}

func snapshotStep(se *model.StepExecution) model.StepExecution {
	c := *se
	c.ExecutionContext = se.ExecutionContext.Copy()
	c.Failures = append(model.FailureList(nil), se.Failures...)
	c.JobExecution = nil
	return c
}

// SaveJobExecution persists a new JobExecution.
func (r *InMemoryJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobExecutions[jobExecution.ID]; exists {
		return fmt.Errorf("JobExecution with ID %s already exists", jobExecution.ID)
	}
	r.jobExecutions[jobExecution.ID] = snapshotJob(jobExecution)
	return nil
}

// UpdateJobExecution updates an existing JobExecution.
func (r *InMemoryJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobExecutions[jobExecution.ID]; !exists {
		return fmt.Errorf("JobExecution with ID %s not found for update: %w", jobExecution.ID, repository.ErrJobExecutionNotFound)
	}
	r.jobExecutions[jobExecution.ID] = snapshotJob(jobExecution)
	return nil
}

// FindJobExecutionByID returns a copy of the execution with its steps ordered by start time.
func (r *InMemoryJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	je, ok := r.jobExecutions[id]
	if !ok {
		return nil, repository.ErrJobExecutionNotFound
	}
	return r.withSteps(je), nil
}

// FindLatestJobExecution returns the most recently created execution of jobName.
func (r *InMemoryJobRepository) FindLatestJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *model.JobExecution
	for _, je := range r.jobExecutions {
		if je.JobName != jobName {
			continue
		}
		if latest == nil || je.CreateTime.After(latest.CreateTime) {
			c := je
			latest = &c
		}
	}
	if latest == nil {
		return nil, repository.ErrJobExecutionNotFound
	}
	return r.withSteps(*latest), nil
}

// withSteps must be called with r.mu held.
func (r *InMemoryJobRepository) withSteps(je model.JobExecution) *model.JobExecution {
	out := je
	out.StepExecutions = make([]*model.StepExecution, 0)
	for _, se := range r.stepExecutions {
		if se.JobExecutionID == out.ID {
			c := se
			c.JobExecution = &out
			out.StepExecutions = append(out.StepExecutions, &c)
		}
	}
	sort.Slice(out.StepExecutions, func(i, j int) bool {
		return out.StepExecutions[i].StartTime.Before(out.StepExecutions[j].StartTime)
	})
	return &out
}

// SaveStepExecution persists a new StepExecution.
func (r *InMemoryJobRepository) SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stepExecutions[stepExecution.ID]; exists {
		return fmt.Errorf("StepExecution with ID %s already exists", stepExecution.ID)
	}
	r.stepExecutions[stepExecution.ID] = snapshotStep(stepExecution)
	return nil
}

// UpdateStepExecution updates an existing StepExecution.
func (r *InMemoryJobRepository) UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stepExecutions[stepExecution.ID]; !exists {
		return fmt.Errorf("StepExecution with ID %s not found for update: %w", stepExecution.ID, repository.ErrStepExecutionNotFound)
	}
	r.stepExecutions[stepExecution.ID] = snapshotStep(stepExecution)
	return nil
}

// FindStepExecutionByID finds a StepExecution by its ID.
func (r *InMemoryJobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	se, ok := r.stepExecutions[id]
	if !ok {
		return nil, repository.ErrStepExecutionNotFound
	}
	return &se, nil
}

// Close releases nothing; the repository holds no external resources.
func (r *InMemoryJobRepository) Close() error {
	return nil
}

var _ repository.JobRepository = (*InMemoryJobRepository)(nil)
