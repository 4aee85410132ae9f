// Package repo implements the relational Record Store backed by GORM. This
// file adapts the repository free functions to the store.Store contract.
package repo

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// BackendSQLite is the name reported by SQLStore.Backend.
const BackendSQLite = "sqlite"

// SQLStore is the relational store.Store. Writes are serialized with a mutex
// so id allocation and the matching insert never interleave with another
// writer of this process; SQLite's write lock covers other processes.
type SQLStore struct {
	db *gorm.DB
	mu sync.Mutex

	now func() time.Time
}

var _ store.Store = (*SQLStore)(nil)

// NewSQLStore wraps an opened and migrated database.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle for migrations and diagnostics.
func (s *SQLStore) DB() *gorm.DB { return s.db }

// CreateUser implements store.Store.
func (s *SQLStore) CreateUser(ctx context.Context, name, about, subtitle, profileImage string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := CreateUser(ctx, s.db, name, about, subtitle, profileImage)
	if err != nil {
		return 0, store.WriteError("create user", err)
	}
	return u.ID, nil
}

// GetUser implements store.Store.
func (s *SQLStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := GetUser(ctx, s.db, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.ReadError("get user", err)
	}
	return u, nil
}

// CountUsers implements store.Store.
func (s *SQLStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := CountUsers(ctx, s.db)
	if err != nil {
		return 0, store.ReadError("count users", err)
	}
	return n, nil
}

// UpdateUser implements store.Store.
func (s *SQLStore) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := UpdateUser(ctx, s.db, id, patch, s.now())
	if err != nil {
		return false, store.WriteError("update user", err)
	}
	return ok, nil
}

// InsertMessage implements store.Store.
func (s *SQLStore) InsertMessage(ctx context.Context, text, timestamp string, userID int64, status domain.Status) (int64, error) {
	if err := store.CheckPersistable(status); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := CreateMessage(ctx, s.db, text, timestamp, userID, status)
	if err != nil {
		return 0, store.WriteError("insert message", err)
	}
	return m.ID, nil
}

// UpdateMessageStatus implements store.Store. A missing row is not an error.
func (s *SQLStore) UpdateMessageStatus(ctx context.Context, id int64, status domain.Status) error {
	if err := store.CheckPersistable(status); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := UpdateMessageStatus(ctx, s.db, id, status)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return store.WriteError("update message status", err)
}

// ListMessages implements store.Store.
func (s *SQLStore) ListMessages(ctx context.Context) ([]domain.MessageView, error) {
	out, err := ListMessages(ctx, s.db)
	if err != nil {
		return nil, store.ReadError("list messages", err)
	}
	return out, nil
}

// DeleteMessage implements store.Store.
func (s *SQLStore) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := DeleteMessage(ctx, s.db, id)
	if err != nil {
		return false, store.WriteError("delete message", err)
	}
	return ok, nil
}

// MessageStats implements store.Store.
func (s *SQLStore) MessageStats(ctx context.Context) (domain.Stats, error) {
	n, last, err := MessagesStats(ctx, s.db)
	if err != nil {
		return domain.Stats{}, store.ReadError("message stats", err)
	}
	return domain.Stats{Count: n, LastChanged: last}, nil
}

// Backend implements store.Store.
func (s *SQLStore) Backend() string { return BackendSQLite }

// Close implements store.Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
