package sql

import (
	"embed"
	"time"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
)

// Migrations holds the repository schema, one directory per database type.
//
//go:embed migrations
var Migrations embed.FS

// MigrationPath returns the directory inside Migrations for dbType.
func MigrationPath(dbType string) string {
	return "migrations/" + dbType
}

// JobExecutionEntity is a schema model used for persistence.
type JobExecutionEntity struct {
	ID               string
	JobName          string
	Parameters       model.JobParameters
	StartTime        time.Time
	EndTime          *time.Time
	Status           model.JobStatus
	ExitStatus       model.ExitStatus
	ExitCode         int
	Failures         model.FailureList
	CreateTime       time.Time
	LastUpdated      time.Time
	ExecutionContext model.ExecutionContext
	CurrentStepName  string
}

func (JobExecutionEntity) TableName() string {
	return "batch_job_execution"
}

// StepExecutionEntity is a schema model used for persistence.
type StepExecutionEntity struct {
	ID               string
	StepName         string
	JobExecutionID   string
	StartTime        time.Time
	EndTime          *time.Time
	Status           model.JobStatus
	ExitStatus       model.ExitStatus
	Failures         model.FailureList
	ReadCount        int
	WriteCount       int
	FilterCount      int
	ExecutionContext model.ExecutionContext
	LastUpdated      time.Time
}

func (StepExecutionEntity) TableName() string {
	return "batch_step_execution"
}
