package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/thoughts-chat/internal/config"
	"github.com/tbourn/thoughts-chat/internal/docstore"
	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/repo"
	"github.com/tbourn/thoughts-chat/internal/scheduler"
	"github.com/tbourn/thoughts-chat/internal/store"
)

func storeOpts(t *testing.T, backend string) StoreOptions {
	dir := t.TempDir()
	return StoreOptions{StoreConfig: config.StoreConfig{
		Backend: backend,
		DBPath:  filepath.Join(dir, "chat.db"),
		DocPath: filepath.Join(dir, "chat.doc"),
	}}
}

func mustOpen(t *testing.T, opts StoreOptions) store.Store {
	t.Helper()
	st, err := OpenStore(context.Background(), opts)
	if err != nil {
		t.Fatalf("OpenStore(%q): %v", opts.Backend, err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenStore_ExplicitBackends(t *testing.T) {
	cases := map[string]string{
		config.BackendSQLite:   repo.BackendSQLite,
		config.BackendDocument: docstore.BackendDocument,
		config.BackendMemory:   docstore.BackendMemory,
		config.BackendAuto:     repo.BackendSQLite,
	}
	for backend, want := range cases {
		t.Run(backend, func(t *testing.T) {
			st := mustOpen(t, storeOpts(t, backend))
			if st.Backend() != want {
				t.Fatalf("Backend() = %q; want %q", st.Backend(), want)
			}
		})
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	if _, err := OpenStore(context.Background(), storeOpts(t, "mongo")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenStore_SQLiteWithTracing(t *testing.T) {
	opts := storeOpts(t, config.BackendSQLite)
	opts.Tracing = true
	st := mustOpen(t, opts)
	if _, err := st.CreateUser(context.Background(), "You", "", "", ""); err != nil {
		t.Fatalf("CreateUser with tracing: %v", err)
	}
}

func TestOpenStore_AutoFallsBackToDocument(t *testing.T) {
	opts := storeOpts(t, config.BackendAuto)
	opts.DBPath = filepath.Join(t.TempDir(), "missing-dir", "chat.db")

	st := mustOpen(t, opts)
	if st.Backend() != docstore.BackendDocument {
		t.Fatalf("Backend() = %q; want document", st.Backend())
	}
}

func TestOpenStore_AutoFallsBackToMemory(t *testing.T) {
	orig := openDocument
	t.Cleanup(func() { openDocument = orig })
	openDocument = func(string) (store.Store, error) { return nil, errors.New("read-only fs") }

	opts := storeOpts(t, config.BackendAuto)
	opts.DBPath = filepath.Join(t.TempDir(), "missing-dir", "chat.db")

	st := mustOpen(t, opts)
	if st.Backend() != docstore.BackendMemory {
		t.Fatalf("Backend() = %q; want memory", st.Backend())
	}
}

// The fallback chain must not change what callers observe.
func TestOpenStore_FallbackIsTransparent(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{config.BackendSQLite, config.BackendDocument, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			st := mustOpen(t, storeOpts(t, backend))
			uid, err := st.CreateUser(ctx, "You", "", "", "")
			if err != nil {
				t.Fatalf("CreateUser: %v", err)
			}
			if _, err := st.InsertMessage(ctx, "hi", "ts", uid, domain.StatusSent); err != nil {
				t.Fatalf("InsertMessage: %v", err)
			}
			if err := st.UpdateMessageStatus(ctx, 999, domain.StatusRead); err != nil {
				t.Fatalf("missing-id update must be a no-op: %v", err)
			}
			all, err := st.ListMessages(ctx)
			if err != nil || len(all) != 1 || *all[0].SenderName != "You" {
				t.Fatalf("ListMessages = %+v, %v", all, err)
			}
		})
	}
}

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Store: config.StoreConfig{
			Backend: backend,
			DBPath:  filepath.Join(dir, "chat.db"),
			DocPath: filepath.Join(dir, "chat.doc"),
		},
		Pipeline: config.PipelineConfig{DeliveredAfter: time.Second, ReadAfter: 3 * time.Second},
		Chat: config.ChatConfig{
			MaxMessageRunes:  100,
			DefaultUserName:  "You",
			DefaultUserAbout: "Hey there! I am using Thoughts.",
			EventBuffer:      4,
		},
	}
}

func TestNewClient_SeedsDefaultUserAndRunsPipeline(t *testing.T) {
	ctx := context.Background()
	clk := scheduler.NewManualClock(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))
	nop := zerolog.Nop()

	c, err := NewClient(ctx, testConfig(t, config.BackendSQLite), Options{Clock: clk, Logger: &nop})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	u, err := c.GetUser(ctx, 1)
	if err != nil || u == nil || u.Name != "You" || u.About != "Hey there! I am using Thoughts." {
		t.Fatalf("default user = %+v, %v", u, err)
	}

	m, err := c.SendMessage(ctx, "hi", u.ID)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	clk.Advance(3 * time.Second)
	all, _ := c.GetAllMessages(ctx)
	if len(all) != 1 || all[0].ID != m.ID || all[0].Status != domain.StatusRead {
		t.Fatalf("after pipeline: %+v", all)
	}
}

func TestNewClient_ReopenKeepsCountersAndUser(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendDocument)
	nop := zerolog.Nop()

	c1, err := NewClient(ctx, cfg, Options{Logger: &nop})
	if err != nil {
		t.Fatalf("NewClient #1: %v", err)
	}
	m1, err := c1.SendMessage(ctx, "one", 1)
	if err != nil {
		t.Fatalf("SendMessage #1: %v", err)
	}
	if _, err := c1.DeleteMessage(ctx, m1.ID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close #1: %v", err)
	}

	c2, err := NewClient(ctx, cfg, Options{Logger: &nop})
	if err != nil {
		t.Fatalf("NewClient #2: %v", err)
	}
	defer c2.Close()

	if n, _ := c2.Users.Store.CountUsers(ctx); n != 1 {
		t.Fatalf("default user re-created: %d users", n)
	}
	m2, err := c2.SendMessage(ctx, "two", 1)
	if err != nil {
		t.Fatalf("SendMessage #2: %v", err)
	}
	if m2.ID <= m1.ID {
		t.Fatalf("id reused after restart: %d <= %d", m2.ID, m1.ID)
	}
}

func TestNewClient_OpenError(t *testing.T) {
	cfg := testConfig(t, "bogus")
	if _, err := NewClient(context.Background(), cfg, Options{}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
