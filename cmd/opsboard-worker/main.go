package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"opsboard/internal/amqp"
	"opsboard/internal/config"
	applog "opsboard/internal/log"
	"opsboard/internal/storage"
	"opsboard/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("Starting opsboard-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker only makes sense for the sqlite backend; other backends
	// have nowhere to materialize aggregates.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	refreshWorker := worker.NewRefreshWorker(repo, cfg.RefreshWindowDays)

	// AMQP is optional; without it the periodic sweep still refreshes.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client, continuing with periodic refresh only", "error", err)
		} else {
			defer amqpClient.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeJobCompleted(ctx, func(msg *amqp.JobCompletedMessage) error {
				return refreshWorker.HandleJobCompleted(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
				cancel()
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - no client available")
	}

	// Periodic sweep covers lost messages and delivery ticket changes.
	go func() {
		if err := refreshWorker.Run(ctx, cfg.RefreshInterval); err != nil && err != context.Canceled {
			logger.Error("Refresh loop failed", "error", err)
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight refreshes a moment to finish.
	time.Sleep(5 * time.Second)
	logger.Info("Worker shutdown complete")
}
