// Package app assembles the chat client from configuration. It probes the
// storage engines in order of preference and falls back transparently, so
// callers always receive a working store.Store.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/thoughts-chat/internal/config"
	"github.com/tbourn/thoughts-chat/internal/docstore"
	"github.com/tbourn/thoughts-chat/internal/repo"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// StoreOptions extend config.StoreConfig for OpenStore.
type StoreOptions struct {
	config.StoreConfig

	// Tracing registers the OpenTelemetry GORM plugin on the SQLite backend.
	Tracing bool
}

// Openers are the backend constructors used by OpenStore. They are
// variables so tests can simulate an unavailable engine.
var (
	openSQLite   = openSQLiteStore
	openDocument = func(dir string) (store.Store, error) {
		st, err := docstore.Open(dir)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	openMemory = func() (store.Store, error) {
		st, err := docstore.OpenMemory()
		if err != nil {
			return nil, err
		}
		return st, nil
	}
)

// OpenStore opens the configured backend. With backend "auto" it tries
// SQLite, then the document store on disk, then the in-memory store, logging
// each fallback at warn level.
func OpenStore(ctx context.Context, opts StoreOptions) (store.Store, error) {
	switch opts.Backend {
	case config.BackendSQLite:
		return openSQLite(ctx, opts.DBPath, opts.Tracing)
	case config.BackendDocument:
		return openDocument(opts.DocPath)
	case config.BackendMemory:
		return openMemory()
	case config.BackendAuto, "":
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}

	st, err := openSQLite(ctx, opts.DBPath, opts.Tracing)
	if err == nil {
		return st, nil
	}
	log.Warn().Err(err).Str("path", opts.DBPath).Msg("sqlite unavailable; falling back to document store")

	st, err = openDocument(opts.DocPath)
	if err == nil {
		return st, nil
	}
	log.Warn().Err(err).Str("path", opts.DocPath).Msg("document store unavailable; falling back to memory")

	return openMemory()
}

// openSQLiteStore opens, migrates and pings the database. Any failure closes
// the handle and is reported so the caller can fall back.
func openSQLiteStore(ctx context.Context, path string, tracing bool) (store.Store, error) {
	db, err := repo.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	fail := func(err error) (store.Store, error) {
		closeDB(db)
		return nil, err
	}

	if tracing {
		if err := repo.UseTracing(db); err != nil {
			return fail(fmt.Errorf("sqlite tracing: %w", err))
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fail(fmt.Errorf("migrate sqlite: %w", err))
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repo.Ping(pctx, db); err != nil {
		return fail(fmt.Errorf("ping sqlite: %w", err))
	}
	return repo.NewSQLStore(db), nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
