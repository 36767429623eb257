// Package jobs wires background task processing through Asynq.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReminderDispatch is the task type for dispatching a reminder
	// notification.
	TaskReminderDispatch = "reminder:dispatch"
)

// ReminderDispatchPayload identifies the reminder to dispatch.
type ReminderDispatchPayload struct {
	ReminderID string `json:"reminder_id"`
}

// NewReminderDispatchTask constructs an Asynq task for the reminder.
func NewReminderDispatchTask(reminderID string) (*asynq.Task, error) {
	if reminderID == "" {
		return nil, fmt.Errorf("jobs: reminder id required")
	}
	data, err := json.Marshal(ReminderDispatchPayload{ReminderID: reminderID})
	if err != nil {
		return nil, fmt.Errorf("jobs: marshal payload: %w", err)
	}
	return asynq.NewTask(TaskReminderDispatch, data), nil
}

// Enqueuer submits dispatch work to the queue. The reminder workflow
// depends on this interface so tests can capture enqueues in memory.
type Enqueuer interface {
	EnqueueReminderDispatch(ctx context.Context, reminderID string) error
}

// Client submits jobs to the Asynq queue.
type Client struct {
	client *asynq.Client
}

var _ Enqueuer = (*Client)(nil)

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReminderDispatch enqueues a reminder dispatch task. Dispatch
// failures are not retried automatically: retry is an explicit caller
// action, so the task itself carries no retry budget.
func (c *Client) EnqueueReminderDispatch(ctx context.Context, reminderID string) error {
	task, err := NewReminderDispatchTask(reminderID)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(0))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
