// Package docstore implements the document Record Store on top of a Pebble
// key-value database. The state is three JSON documents under fixed keys:
//
//	@users     []domain.User
//	@messages  []domain.Message
//	@counters  {"lastUserId": N, "lastMessageId": M}
//
// Every operation reads the documents it needs as a whole and writes them
// back as a whole. Writes that touch several documents (an insert and its
// counter) are committed in one Pebble batch, so a crash never leaves a
// counter behind the data it issued.
//
// The store is the portable fallback of the relational backend. With an
// in-memory filesystem (OpenMemory) it doubles as the volatile stand-in when
// no durable storage is usable.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/tbourn/thoughts-chat/internal/store"
)

const (
	keyUsers    = "@users"
	keyMessages = "@messages"
	keyCounters = "@counters"
)

// Backend names reported by Store.Backend.
const (
	BackendDocument = "document"
	BackendMemory   = "memory"
)

// counters is the allocator document.
type counters struct {
	LastUserID    int64 `json:"lastUserId"`
	LastMessageID int64 `json:"lastMessageId"`
}

// Option customizes Open.
type Option func(*options)

type options struct {
	fs      vfs.FS
	backend string
	now     func() time.Time
}

// WithFS opens the database on fs instead of the OS filesystem.
func WithFS(fs vfs.FS) Option {
	return func(o *options) { o.fs = fs }
}

// WithClock overrides the time source used for CreatedAt/LastSeen stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Store is the document-backed store.Store. It is safe for concurrent use:
// read-modify-write cycles hold the write lock, reads share the read lock.
type Store struct {
	db      *pebble.DB
	mu      sync.RWMutex
	closed  bool
	backend string
	now     func() time.Time
}

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("docstore: closed")

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the document database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := options{
		backend: BackendDocument,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range opts {
		fn(&o)
	}

	po := &pebble.Options{}
	if o.fs != nil {
		po.FS = o.fs
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	db, err := pebble.Open(dir, po)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, backend: o.backend, now: o.now}, nil
}

// OpenMemory opens a volatile store on a fresh in-memory filesystem.
func OpenMemory(opts ...Option) (*Store, error) {
	opts = append([]Option{WithFS(vfs.NewMem()), func(o *options) { o.backend = BackendMemory }}, opts...)
	return Open("thoughts", opts...)
}

// Backend implements store.Store.
func (s *Store) Backend() string { return s.backend }

// Close implements store.Store. Closing twice is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// load decodes the document at key into v. A missing key leaves v untouched.
func (s *Store) load(key string, v any) error {
	if s.closed {
		return ErrClosed
	}
	data, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer closer.Close()
	return json.Unmarshal(data, v)
}

// save writes every document in docs in one synced batch.
func (s *Store) save(docs map[string]any) error {
	if s.closed {
		return ErrClosed
	}
	b := s.db.NewBatch()
	defer b.Close()
	for key, v := range docs {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := b.Set([]byte(key), data, nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// counters loads the allocator document, defaulting to zeros.
func (s *Store) counters() (counters, error) {
	var c counters
	err := s.load(keyCounters, &c)
	return c, err
}

// alive reports whether ctx is still usable before a storage round-trip.
func alive(ctx context.Context) error {
	return ctx.Err()
}
