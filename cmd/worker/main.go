package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/billbuster/billbuster/internal/app"
	"github.com/billbuster/billbuster/internal/jobs"
	"github.com/billbuster/billbuster/internal/notify"
	"github.com/billbuster/billbuster/internal/observability"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/storage/sqlite"
	"github.com/billbuster/billbuster/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LoggerFormat())

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	metrics := observability.New()

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer queue.Close()

	sender := notify.NewPushClient(cfg.PushServiceURL, cfg.PushAPIKey, &http.Client{Timeout: cfg.PushTimeout})
	workflow := reminder.NewWorkflow(store, queue, sender, logger)
	job := reminder.NewJob(workflow, logger)

	dispatch := func(ctx context.Context, task *asynq.Task) error {
		err := job.Handle(ctx, task)
		outcome := "sent"
		if err != nil {
			outcome = "failed"
		}
		metrics.RemindersDispatched.WithLabelValues(outcome).Inc()
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReminderDispatch, Handler: dispatch},
		},
	})
	if err != nil {
		logger.Error("initialize worker", "error", err)
		os.Exit(1)
	}

	logger.Info("worker starting", "concurrency", cfg.WorkerConcurrency, "env", cfg.AppEnv)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
