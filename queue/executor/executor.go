package executor

import (
	"context"
	"fmt"

	"github.com/tidings-app/tidings/db"
)

// JobExecutor dispatches a claimed job to its handler.
type JobExecutor interface {
	Execute(ctx context.Context, job db.Job) error
}

// JobHandler processes a specific type of job
type JobHandler interface {
	Handle(ctx context.Context, payload []byte) error
}

// DefaultExecutor is our concrete implementation of JobExecutor
type DefaultExecutor struct {
	registry map[string]JobHandler // Maps job types to handlers
}

// NewExecutor creates an executor with the given handlers
func NewExecutor(handlers map[string]JobHandler) *DefaultExecutor {
	return &DefaultExecutor{
		registry: handlers,
	}
}

// Execute implements the JobExecutor interface
func (e *DefaultExecutor) Execute(ctx context.Context, job db.Job) error {
	handler, exists := e.registry[job.JobType]
	if !exists {
		return fmt.Errorf("no handler registered for job type: %s", job.JobType)
	}

	return handler.Handle(ctx, []byte(job.Payload))
}
