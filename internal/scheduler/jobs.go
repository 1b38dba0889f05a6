// Package scheduler runs the OS-level background jobs of the sync engine:
// one uniquely-named recurring sync check and a one-off "sync now" path, both
// backed by an asynq queue with exponential backoff on failure.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskSyncCheck is the uniquely-named recurring job: check pending
	// data and connect if warranted.
	TaskSyncCheck = "sync:check"

	// TaskSyncNow is the one-off manual job sharing the same constraints,
	// enqueued from the "Sync Now" surface.
	TaskSyncNow = "sync:now"
)

// queueName keeps the sync jobs on their own queue so a busy default queue
// elsewhere in the process cannot starve them.
const queueName = "sync"

// SyncPayload travels with manual jobs so logs can tell who asked.
type SyncPayload struct {
	Reason string `json:"reason"`
}

// EnqueueSyncNow enqueues a one-off sync job. Duplicate requests within the
// uniqueness window collapse into one.
func EnqueueSyncNow(ctx context.Context, client *asynq.Client, payload SyncPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskSyncNow, data)
	_, err = client.EnqueueContext(ctx, task,
		asynq.Queue(queueName),
		asynq.MaxRetry(5),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue sync now task: %w", err)
	}

	return nil
}
