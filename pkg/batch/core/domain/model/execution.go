package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// JobExecution is a single run of a job.
type JobExecution struct {
	ID               string
	JobName          string
	Parameters       JobParameters
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	CreateTime       time.Time
	LastUpdated      time.Time
	StepExecutions   []*StepExecution
	ExecutionContext ExecutionContext
	CurrentStepName  string
}

// StepExecution is a single run of a step within a JobExecution.
type StepExecution struct {
	ID               string
	StepName         string
	JobExecution     *JobExecution
	JobExecutionID   string
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	ReadCount        int
	WriteCount       int
	FilterCount      int
	ExecutionContext ExecutionContext
	LastUpdated      time.Time
}

// NewJobExecution creates a new JobExecution in STARTING state.
func NewJobExecution(jobName string, params JobParameters) *JobExecution {
	now := time.Now()
	if params == nil {
		params = NewJobParameters()
	}
	return &JobExecution{
		ID:               NewID(),
		JobName:          jobName,
		Parameters:       params,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		CreateTime:       now,
		LastUpdated:      now,
		Failures:         make(FailureList, 0),
		StepExecutions:   make([]*StepExecution, 0),
		ExecutionContext: NewExecutionContext(),
	}
}

// NewStepExecution creates a StepExecution attached to jobExecution.
func NewStepExecution(jobExecution *JobExecution, stepName string) *StepExecution {
	now := time.Now()
	se := &StepExecution{
		ID:               NewID(),
		StepName:         stepName,
		JobExecutionID:   jobExecution.ID,
		JobExecution:     jobExecution,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		Failures:         make(FailureList, 0),
		ExecutionContext: NewExecutionContext(),
		LastUpdated:      now,
	}
	jobExecution.StepExecutions = append(jobExecution.StepExecutions, se)
	jobExecution.CurrentStepName = stepName
	return se
}

// TransitionTo changes the status if the transition is allowed.
func (je *JobExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(je.Status, newStatus) {
		return fmt.Errorf("JobExecution (ID: %s): invalid state transition: %s -> %s", je.ID, je.Status, newStatus)
	}
	je.Status = newStatus
	return nil
}

func (je *JobExecution) mark(status JobStatus, exit ExitStatus, finished bool) {
	if err := je.TransitionTo(status); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to %s: %v", je.ID, status, err)
		je.Status = status
	}
	now := time.Now()
	if exit != "" {
		je.ExitStatus = exit
	}
	if finished {
		je.EndTime = &now
	}
	je.LastUpdated = now
}

// MarkAsStarted updates the status to STARTED.
func (je *JobExecution) MarkAsStarted() { je.mark(BatchStatusStarted, "", false) }

// MarkAsCompleted updates the status to COMPLETED.
func (je *JobExecution) MarkAsCompleted() { je.mark(BatchStatusCompleted, ExitStatusCompleted, true) }

// MarkAsNoOp completes the execution with a NO_OP exit status.
func (je *JobExecution) MarkAsNoOp() { je.mark(BatchStatusCompleted, ExitStatusNoOp, true) }

// MarkAsStopped updates the status to STOPPED.
func (je *JobExecution) MarkAsStopped() { je.mark(BatchStatusStopped, ExitStatusStopped, true) }

// MarkAsFailed updates the status to FAILED and records err.
func (je *JobExecution) MarkAsFailed(err error) {
	je.mark(BatchStatusFailed, ExitStatusFailed, true)
	je.AddFailureException(err)
}

// AddFailureException records err once.
func (je *JobExecution) AddFailureException(err error) {
	je.Failures = appendFailure(je.Failures, err)
	je.LastUpdated = time.Now()
}

// Duration returns the elapsed time, or zero while running.
func (je *JobExecution) Duration() time.Duration {
	if je.EndTime == nil {
		return 0
	}
	return je.EndTime.Sub(je.StartTime)
}

// TransitionTo changes the status if the transition is allowed.
func (se *StepExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(se.Status, newStatus) {
		return fmt.Errorf("StepExecution (ID: %s): invalid state transition: %s -> %s", se.ID, se.Status, newStatus)
	}
	se.Status = newStatus
	return nil
}

func (se *StepExecution) mark(status JobStatus, exit ExitStatus, finished bool) {
	if err := se.TransitionTo(status); err != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to %s: %v", se.ID, status, err)
		se.Status = status
	}
	now := time.Now()
	if exit != "" {
		se.ExitStatus = exit
	}
	if finished {
		se.EndTime = &now
	}
	se.LastUpdated = now
}

// MarkAsStarted updates the status to STARTED.
func (se *StepExecution) MarkAsStarted() { se.mark(BatchStatusStarted, "", false) }

// MarkAsCompleted updates the status to COMPLETED.
func (se *StepExecution) MarkAsCompleted() { se.mark(BatchStatusCompleted, ExitStatusCompleted, true) }

// MarkAsStopped updates the status to STOPPED.
func (se *StepExecution) MarkAsStopped() { se.mark(BatchStatusStopped, ExitStatusStopped, true) }

// MarkAsFailed updates the status to FAILED and records err.
func (se *StepExecution) MarkAsFailed(err error) {
	se.mark(BatchStatusFailed, ExitStatusFailed, true)
	se.AddFailureException(err)
}

// AddFailureException records err once.
func (se *StepExecution) AddFailureException(err error) {
	se.Failures = appendFailure(se.Failures, err)
	se.LastUpdated = time.Now()
}

func appendFailure(list FailureList, err error) FailureList {
	if err == nil {
		return list
	}
	msg := exception.ExtractErrorMessage(err)
	for _, existing := range list {
		if existing == msg {
			return list
		}
	}
	return append(list, msg)
}
