package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/billbuster/billbuster/internal/jobs"
	"github.com/billbuster/billbuster/internal/storage"
)

// Job adapts the workflow's Dispatch to the Asynq handler contract.
type Job struct {
	workflow *Workflow
	logger   *slog.Logger
}

// NewJob constructs the dispatch job handler.
func NewJob(workflow *Workflow, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{workflow: workflow, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract. Dispatch failures mark the
// reminder Failed and are not requeued: retry is an explicit user action,
// so every failure path returns SkipRetry.
func (j *Job) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.ReminderDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ReminderID == "" {
		return asynq.SkipRetry
	}

	if err := j.workflow.Dispatch(ctx, payload.ReminderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return asynq.SkipRetry
		}
		j.logger.Warn("reminder dispatch failed", "reminder_id", payload.ReminderID, "error", err)
		return asynq.SkipRetry
	}
	return nil
}
