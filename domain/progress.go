package domain

import "context"

// ProgressManager creates progress tasks for long-running operations
type ProgressManager interface {
	// StartTask creates a new progress task with a description and total count
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress bars are shown
	IsInteractive() bool

	// Close cleans up all tasks
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a unit of work scheduled on the parallel executor
type ExecutableTask interface {
	// Name identifies the task in error aggregation
	Name() string

	// Execute runs the task; the context carries cancellation and timeout
	Execute(ctx context.Context) (any, error)

	// IsEnabled reports whether the task should run at all
	IsEnabled() bool
}
