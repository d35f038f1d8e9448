package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"catalogapi/internal/api"
	"catalogapi/internal/cache"
	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/logger"

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

	// Initialize database
	db, err := database.New(cfg.DatabaseURL, database.Options{LogLevel: cfg.LogLevel})
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize cache
	c, err := cache.Connect(context.Background(), cfg.RedisURL, cfg.CacheKeyspace, cfg.CacheTTL)
	if err != nil {
		logger.Warn("Caching disabled: %v", err)
	}

	// Initialize API server
	server := api.New(cfg, logger, db, c, api.Extensions{})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"api": func(ctx context.Context) error {
				err := server.Stop(ctx)
				return errors.Join(err, c.Close(), db.Close())
			},
		},
	)

	exitCode := <-wait
	logger.Info("API server exited with code %d", exitCode)
	os.Exit(exitCode)
}
