package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"catalogapi/internal/cache"
	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/events"
	"catalogapi/internal/logger"
	"catalogapi/internal/repository"
	"catalogapi/internal/worker"
	"catalogapi/internal/worker/processors"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	db, err := database.New(cfg.DatabaseURL, database.Options{LogLevel: cfg.LogLevel})
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	c, err := cache.Connect(context.Background(), cfg.RedisURL, cfg.CacheKeyspace, cfg.CacheTTL)
	if err != nil {
		logger.Warn("Caching disabled: %v", err)
	}

	products := repository.NewProductRepository(db.DB, c)
	subscriber := events.NewSubscriber(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
	processor := processors.NewEventProcessor(logger, c, products)

	// Initialize worker
	w := worker.New(cfg, logger, subscriber, processor, products)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		logger.Info("Starting worker...")
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("Worker failed: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"worker": func(ctx context.Context) error {
				cancel()
				err := w.Stop()
				return errors.Join(err, c.Close(), db.Close())
			},
		},
	)

	exitCode := <-wait
	logger.Info("Worker exited with code %d", exitCode)
	os.Exit(exitCode)
}
