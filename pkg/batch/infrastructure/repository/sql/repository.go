// Package sql persists job and step executions through GORM. The tables are
// created by the embedded migrations, which the migration step applies
// before any execution is saved.
package sql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
)

const moduleName = "SQLJobRepository"

// SQLJobRepository implements the repository.JobRepository interface.
type SQLJobRepository struct {
	db *gorm.DB
}

// NewSQLJobRepository creates a repository over db.
func NewSQLJobRepository(db *gorm.DB) *SQLJobRepository {
	return &SQLJobRepository{db: db}
}

// SaveJobExecution inserts a new job execution row.
func (r *SQLJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	entity := fromDomainJobExecution(jobExecution)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to save JobExecution (ID: %s)", jobExecution.ID), err, false, true)
	}
	return nil
}

// UpdateJobExecution overwrites every column of an existing job execution row.
func (r *SQLJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	entity := fromDomainJobExecution(jobExecution)
	result := r.db.WithContext(ctx).
		Model(&JobExecutionEntity{}).
		Where("id = ?", entity.ID).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to update JobExecution (ID: %s)", jobExecution.ID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update JobExecution (ID: %s): %w", jobExecution.ID, repository.ErrJobExecutionNotFound)
	}
	return nil
}

// FindJobExecutionByID loads a job execution together with its steps.
func (r *SQLJobRepository) FindJobExecutionByID(ctx context.Context, executionID string) (*model.JobExecution, error) {
	var entity JobExecutionEntity
	err := r.db.WithContext(ctx).Where("id = ?", executionID).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobExecutionNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to find JobExecution (ID: %s)", executionID), err, false, true)
	}
	return r.withSteps(ctx, toDomainJobExecution(&entity))
}

// FindLatestJobExecution returns the most recently created execution of jobName.
func (r *SQLJobRepository) FindLatestJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error) {
	var entity JobExecutionEntity
	err := r.db.WithContext(ctx).
		Where("job_name = ?", jobName).
		Order("create_time DESC").
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobExecutionNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to find latest JobExecution for job '%s'", jobName), err, false, true)
	}
	return r.withSteps(ctx, toDomainJobExecution(&entity))
}

func (r *SQLJobRepository) withSteps(ctx context.Context, je *model.JobExecution) (*model.JobExecution, error) {
	var entities []StepExecutionEntity
	err := r.db.WithContext(ctx).
		Where("job_execution_id = ?", je.ID).
		Order("start_time ASC").
		Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to load StepExecutions of JobExecution (ID: %s)", je.ID), err, false, true)
	}
	for i := range entities {
		se := toDomainStepExecution(&entities[i])
		se.JobExecution = je
		je.StepExecutions = append(je.StepExecutions, se)
	}
	return je, nil
}

// SaveStepExecution inserts a new step execution row.
func (r *SQLJobRepository) SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	entity := fromDomainStepExecution(stepExecution)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to save StepExecution (ID: %s)", stepExecution.ID), err, false, true)
	}
	return nil
}

// UpdateStepExecution overwrites every column of an existing step execution row.
func (r *SQLJobRepository) UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	entity := fromDomainStepExecution(stepExecution)
	result := r.db.WithContext(ctx).
		Model(&StepExecutionEntity{}).
		Where("id = ?", entity.ID).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to update StepExecution (ID: %s)", stepExecution.ID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update StepExecution (ID: %s): %w", stepExecution.ID, repository.ErrStepExecutionNotFound)
	}
	return nil
}

// FindStepExecutionByID finds a StepExecution by its ID.
func (r *SQLJobRepository) FindStepExecutionByID(ctx context.Context, executionID string) (*model.StepExecution, error) {
	var entity StepExecutionEntity
	err := r.db.WithContext(ctx).Where("id = ?", executionID).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrStepExecutionNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to find StepExecution (ID: %s)", executionID), err, false, true)
	}
	return toDomainStepExecution(&entity), nil
}

// Close is a no-op; the connection belongs to the resolver.
func (r *SQLJobRepository) Close() error {
	return nil
}

var _ repository.JobRepository = (*SQLJobRepository)(nil)
