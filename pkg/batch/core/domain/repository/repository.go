// Package repository defines how job and step execution history is persisted.
package repository

// JobRepository persists execution metadata for batch runs.
type JobRepository interface {
	JobExecution
	StepExecution

	// Close releases resources (such as database connections) used by the repository.
	Close() error
}

