package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wikiforum/config"
	"wikiforum/config/database"
	"wikiforum/internal/auth"
	drepo "wikiforum/internal/discussion/repository"
	urepo "wikiforum/internal/user/repository"
	wrepo "wikiforum/internal/wiki/repository"
	"wikiforum/middleware"
	"wikiforum/pkg/logger"
	"wikiforum/router"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init("info")
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.LogLevel != "info" {
		logger.Init(cfg.LogLevel)
	}
	defer logger.Log.Sync()

	stores, db, err := openStores(cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open %s storage: %v", cfg.Storage, err)
	}
	if db != nil {
		defer db.Close()
	}

	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitRPM, time.Minute)
	limiter.TrustProxy = cfg.TrustProxy
	defer limiter.Stop()

	handler, err := router.Setup(stores, auth.NewSigner(cfg.SessionSecret), limiter)
	if err != nil {
		logger.Sugar.Fatalf("Failed to set up routes: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Wiki listening on %s (storage: %s)", server.Addr, cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Sugar.Errorf("Server failed: %v", err)
	case sig := <-quit:
		logger.Sugar.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

// openStores picks the repositories for cfg.Storage. db is nil for memory storage.
func openStores(cfg *config.Config) (router.Stores, *sql.DB, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Sugar.Warn("Using in-memory storage, data is lost on restart")
		return router.Stores{
			Users:         urepo.NewUserMemoryRepository(),
			Pages:         wrepo.NewPageMemoryRepository(),
			Comments:      drepo.NewCommentMemoryRepository(),
			Conversations: drepo.NewConversationMemoryRepository(),
		}, nil, nil
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return router.Stores{}, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return router.Stores{}, nil, err
	}

	return router.Stores{
		Users:         urepo.NewUserPostgresRepository(db),
		Pages:         wrepo.NewPagePostgresRepository(db),
		Comments:      drepo.NewCommentPostgresRepository(db),
		Conversations: drepo.NewConversationPostgresRepository(db),
	}, db, nil
}
