// Package repo implements the relational Record Store backed by GORM and a
// pure-Go SQLite driver. This file contains database bootstrapping helpers
// (PRAGMAs, pool, tracing) and schema migrations.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// SQLiteOption tunes OpenSQLite.
type SQLiteOption func(*sqliteConfig)

type sqliteConfig struct {
	busyTimeout  time.Duration
	maxOpenConns int
	logLevel     logger.LogLevel
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) SQLiteOption {
	return func(c *sqliteConfig) {
		if d > 0 {
			c.busyTimeout = d
		}
	}
}

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) SQLiteOption {
	return func(c *sqliteConfig) {
		if n > 0 {
			c.maxOpenConns = n
		}
	}
}

// WithQueryLog enables GORM's own warning and slow-query output.
func WithQueryLog() SQLiteOption {
	return func(c *sqliteConfig) { c.logLevel = logger.Warn }
}

// OpenSQLite opens (or creates) the database file at path and applies the
// WAL, foreign-key and busy-timeout PRAGMAs. The parent directory must exist.
func OpenSQLite(path string, opts ...SQLiteOption) (*gorm.DB, error) {
	cfg := sqliteConfig{busyTimeout: 5 * time.Second, maxOpenConns: 10, logLevel: logger.Silent}
	for _, o := range opts {
		o(&cfg)
	}

	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.logLevel),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.busyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			closeQuietly(db)
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.maxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// UseTracing registers the OpenTelemetry GORM plugin so every query emits a
// span under the active trace.
func UseTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the users, messages and counters tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Message{},
		&domain.Counter{},
	)
}

// Ping checks that the database answers. The backend probe calls it at
// startup.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeQuietly(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
