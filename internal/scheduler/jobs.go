package scheduler

import (
	"context"

	"github.com/mikestefanello/backlite"
)

// Job names.
const (
	JobReindex      = "reindex_content"
	JobAuditCleanup = "cleanup_audit"
)

// Enqueuer is the slice of the task client the jobs need.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// EnqueueJob builds a job that puts task on the queue each time it fires.
func EnqueueJob(name, schedule string, queue Enqueuer, task backlite.Task) Job {
	return Job{
		Name:     name,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, err := queue.Add(task).Ctx(ctx).Save()
			return err
		},
	}
}

// InlineJob builds a job that calls fn directly. Used when the task queue is
// disabled.
func InlineJob(name, schedule string, fn func() error) Job {
	return Job{
		Name:     name,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn()
		},
	}
}
