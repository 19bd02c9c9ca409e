package driving

import (
	"context"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// Scheduler runs background maintenance such as compaction and memtable flushes.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Tasks returns the stored state of every task.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// History returns the most recent results of a task, newest first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
