// Package store defines the Record Store contract shared by every storage
// backend. The relational backend lives in package repo and the document
// backend in package docstore; both are exercised by the storetest suite.
//
// Error semantics:
//   - Absence is a result, not an error: GetUser returns (nil, nil),
//     UpdateUser and DeleteMessage return false, UpdateMessageStatus is a
//     silent no-op for an unknown id.
//   - Backend failures are wrapped with ErrWrite or ErrRead so callers can
//     branch with errors.Is.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

var (
	// ErrWrite reports that a create, update or delete failed in the backend.
	ErrWrite = errors.New("storage write failed")

	// ErrRead reports that a read failed in the backend.
	ErrRead = errors.New("storage read failed")

	// ErrStatusNotPersistable is returned when a caller tries to store the
	// client-only "sending" status (or an unknown status).
	ErrStatusNotPersistable = errors.New("status cannot be persisted")
)

// Store is the durable mapping from ids to users and messages. Every
// implementation must be safe for concurrent use; id allocation and the
// matching insert happen atomically with respect to other writers.
type Store interface {
	// CreateUser allocates a user id and stores the profile.
	CreateUser(ctx context.Context, name, about, subtitle, profileImage string) (int64, error)

	// GetUser returns the user or nil when absent.
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// CountUsers returns the number of stored users.
	CountUsers(ctx context.Context) (int64, error)

	// UpdateUser merges the set fields of patch and refreshes LastSeen. It
	// returns false when the patch is empty or the user does not exist.
	UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (bool, error)

	// InsertMessage allocates a message id and stores the message with
	// CreatedAt set to the current time.
	InsertMessage(ctx context.Context, text, timestamp string, userID int64, status domain.Status) (int64, error)

	// UpdateMessageStatus overwrites the status of a message. Unknown ids
	// are ignored.
	UpdateMessageStatus(ctx context.Context, id int64, status domain.Status) error

	// ListMessages returns every message joined with its sender, oldest first.
	ListMessages(ctx context.Context) ([]domain.MessageView, error)

	// DeleteMessage removes a message and reports whether it existed.
	DeleteMessage(ctx context.Context, id int64) (bool, error)

	// MessageStats returns the message count and the latest change time.
	MessageStats(ctx context.Context) (domain.Stats, error)

	// Backend names the implementation (e.g. "sqlite", "document", "memory").
	Backend() string

	// Close releases the underlying handles.
	Close() error
}

// WriteError wraps err as an ErrWrite for operation op.
func WriteError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrWrite, err)
}

// ReadError wraps err as an ErrRead for operation op.
func ReadError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRead, err)
}

// CheckPersistable validates a status before it reaches a backend.
func CheckPersistable(status domain.Status) error {
	if !status.Persistable() {
		return fmt.Errorf("%w: %q", ErrStatusNotPersistable, status)
	}
	return nil
}
