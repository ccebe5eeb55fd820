package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"wikiforum/pkg/logger"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Connect opens the postgres pool and pings it, retrying a few times for slow starts.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := ping(db, connectAttempts, retryDelay); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ping(db *sql.DB, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", delay, err)
		time.Sleep(delay)
	}
	return fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Sugar.Errorf("Failed to apply schema: %v", err)
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
