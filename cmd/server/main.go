package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/billbuster/billbuster/internal/app"
	"github.com/billbuster/billbuster/internal/auth"
	"github.com/billbuster/billbuster/internal/jobs"
	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/notify"
	"github.com/billbuster/billbuster/internal/observability"
	"github.com/billbuster/billbuster/internal/receipt"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/server"
	"github.com/billbuster/billbuster/internal/service"
	"github.com/billbuster/billbuster/internal/storage/sqlite"
	"github.com/billbuster/billbuster/pkg/logging"

	"github.com/hibiken/asynq"
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
	logger.Info("storage initialized", "database", cfg.DBPath)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Balances fall back to replaying the ledger and reminder dispatch
		// degrades to the retry endpoint, so a missing Redis is survivable.
		logger.Warn("redis ping", "error", err)
	}
	defer redisClient.Close()

	metrics := observability.New()

	cache := ledger.NewCache(redisClient, cfg.BalanceCacheTTL)
	cache.SetObserver(func(result string) {
		metrics.BalanceCacheReads.WithLabelValues(result).Inc()
	})

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer queue.Close()

	recognizer := receipt.NewRecognizerClient(cfg.OCRServiceURL, &http.Client{Timeout: cfg.OCRTimeout})
	sender := notify.NewPushClient(cfg.PushServiceURL, cfg.PushAPIKey, &http.Client{Timeout: cfg.PushTimeout})

	workflow := reminder.NewWorkflow(store, queue, sender, logger)
	bills := service.NewBillService(store, recognizer, cache, logger)
	groups := service.NewGroupService(store, cache, workflow, logger)

	router := server.NewRouter(server.Deps{
		Bills:     bills,
		Groups:    groups,
		Workflow:  workflow,
		Store:     store,
		Verifier:  auth.NewVerifier(cfg.JWTSecret),
		Metrics:   metrics,
		Logger:    logger,
		RateLimit: cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server starting", "address", cfg.AppAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
