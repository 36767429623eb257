package reminder

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/billbuster/billbuster/internal/jobs"
	"github.com/billbuster/billbuster/internal/models"
)

func TestJobHandle(t *testing.T) {
	workflow, store, _, sender, groupID := setupWorkflow(t)
	job := NewJob(workflow, nil)
	ctx := context.Background()

	created, err := workflow.Create(ctx, CreateRequest{
		GroupID: groupID, RequesterID: "alice", RecipientID: "bob", Amount: dec("15.00"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	task, err := jobs.NewReminderDispatchTask(created.ID)
	if err != nil {
		t.Fatalf("NewReminderDispatchTask() error = %v", err)
	}
	if err := job.Handle(ctx, task); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent %d messages, want 1", len(sender.sent))
	}

	loaded, err := store.GetReminder(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReminder() error = %v", err)
	}
	if loaded.Status != models.ReminderSent {
		t.Errorf("status = %s, want sent", loaded.Status)
	}
}

// Every failure path drops the task instead of requeueing it: the worker
// must never retry a dispatch on its own.
func TestJobHandleNeverRequeues(t *testing.T) {
	workflow, _, _, sender, groupID := setupWorkflow(t)
	job := NewJob(workflow, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		task *asynq.Task
	}{
		{
			name: "malformed payload",
			task: asynq.NewTask(jobs.TaskReminderDispatch, []byte("{")),
		},
		{
			name: "empty reminder id",
			task: asynq.NewTask(jobs.TaskReminderDispatch, []byte(`{"reminder_id":""}`)),
		},
		{
			name: "unknown reminder",
			task: asynq.NewTask(jobs.TaskReminderDispatch, []byte(`{"reminder_id":"missing"}`)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := job.Handle(ctx, tt.task); !errors.Is(err, asynq.SkipRetry) {
				t.Errorf("Handle() error = %v, want SkipRetry", err)
			}
		})
	}

	// A send failure marks the reminder failed and still drops the task.
	created, err := workflow.Create(ctx, CreateRequest{
		GroupID: groupID, RequesterID: "alice", RecipientID: "bob", Amount: dec("15.00"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	sender.err = errors.New("gateway down")

	task, _ := jobs.NewReminderDispatchTask(created.ID)
	if err := job.Handle(ctx, task); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("Handle() error = %v, want SkipRetry", err)
	}
}
