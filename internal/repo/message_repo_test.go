package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// test DB helper
func newMsgRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("msg_repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateMessage_AllocatesAndStores(t *testing.T) {
	db := newMsgRepoDB(t, &domain.Message{}, &domain.Counter{})
	ctx := context.Background()

	msg, err := CreateMessage(ctx, db, "hello", "2025-07-01T10:00:00Z", 1, domain.StatusSent)
	if err != nil {
		t.Fatalf("CreateMessage error: %v", err)
	}
	if msg.ID != 1 || msg.Text != "hello" || msg.Status != domain.StatusSent || msg.UserID != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.CreatedAt.IsZero() || time.Since(msg.CreatedAt) > time.Minute {
		t.Fatalf("CreatedAt not set reasonably: %v", msg.CreatedAt)
	}

	got, err := GetMessage(ctx, db, msg.ID)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if got.Timestamp != "2025-07-01T10:00:00Z" || got.Status != domain.StatusSent {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	next, err := CreateMessage(ctx, db, "again", "2025-07-01T10:00:01Z", 1, domain.StatusSent)
	if err != nil {
		t.Fatalf("CreateMessage #2: %v", err)
	}
	if next.ID != 2 {
		t.Fatalf("expected id 2, got %d", next.ID)
	}
}

func TestCreateMessage_Error_NoCounterTable(t *testing.T) {
	db := newMsgRepoDB(t, &domain.Message{})
	if _, err := CreateMessage(context.Background(), db, "x", "ts", 1, domain.StatusSent); err == nil {
		t.Fatalf("expected error due to missing counters table")
	}
}

func TestUpdateMessageStatus_FoundAndMissing(t *testing.T) {
	db := newMsgRepoDB(t, &domain.Message{}, &domain.Counter{})
	ctx := context.Background()

	m, err := CreateMessage(ctx, db, "x", "ts", 1, domain.StatusSent)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateMessageStatus(ctx, db, m.ID, domain.StatusDelivered); err != nil {
		t.Fatalf("UpdateMessageStatus: %v", err)
	}
	got, _ := GetMessage(ctx, db, m.ID)
	if got.Status != domain.StatusDelivered {
		t.Fatalf("status not updated: %+v", got)
	}
	if !got.UpdatedAt.After(m.UpdatedAt) && !got.UpdatedAt.Equal(m.UpdatedAt) {
		t.Fatalf("UpdatedAt went backwards: %v < %v", got.UpdatedAt, m.UpdatedAt)
	}

	if err := UpdateMessageStatus(ctx, db, 999, domain.StatusRead); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestListMessages_OrderAndJoin(t *testing.T) {
	db := newMsgRepoDB(t, &domain.User{}, &domain.Message{})
	ctx := context.Background()

	t0 := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Second)

	if err := db.Create(&domain.User{ID: 1, Name: "You", ProfileImage: "file:///me.png", CreatedAt: t0, UpdatedAt: t0, LastSeen: t0}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	// same CreatedAt for the first two; id 2 must come before id 3
	m3 := domain.Message{ID: 3, Text: "b", Timestamp: "ts", Status: domain.StatusSent, UserID: 1, CreatedAt: t0}
	m2 := domain.Message{ID: 2, Text: "a", Timestamp: "ts", Status: domain.StatusSent, UserID: 1, CreatedAt: t0}
	m1 := domain.Message{ID: 1, Text: "z", Timestamp: "ts", Status: domain.StatusRead, UserID: 7, CreatedAt: t1}
	for _, m := range []*domain.Message{&m1, &m3, &m2} { // insert out of order on purpose
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed message %d: %v", m.ID, err)
		}
	}

	all, err := ListMessages(ctx, db)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(all) != 3 || all[0].ID != 2 || all[1].ID != 3 || all[2].ID != 1 {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].SenderName == nil || *all[0].SenderName != "You" {
		t.Fatalf("expected sender name on joined row: %+v", all[0])
	}
	if all[0].SenderProfileImage == nil || *all[0].SenderProfileImage != "file:///me.png" {
		t.Fatalf("expected sender image on joined row: %+v", all[0])
	}
	if all[2].SenderName != nil || all[2].SenderProfileImage != nil {
		t.Fatalf("expected nil sender for orphan message: %+v", all[2])
	}
}

func TestListMessages_EmptyIsNonNil(t *testing.T) {
	db := newMsgRepoDB(t, &domain.User{}, &domain.Message{})
	out, err := ListMessages(context.Background(), db)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestDeleteMessage_ExistingAndMissing(t *testing.T) {
	db := newMsgRepoDB(t, &domain.Message{}, &domain.Counter{})
	ctx := context.Background()

	m, err := CreateMessage(ctx, db, "x", "ts", 1, domain.StatusSent)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ok, err := DeleteMessage(ctx, db, m.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteMessage existing = %v, %v", ok, err)
	}
	ok, err = DeleteMessage(ctx, db, m.ID)
	if err != nil || ok {
		t.Fatalf("DeleteMessage missing = %v, %v", ok, err)
	}
}

func TestCountMessages_Error_NoTable(t *testing.T) {
	db := newMsgRepoDB(t /* no migration */)
	if _, err := CountMessages(context.Background(), db); err == nil {
		t.Fatalf("expected error due to missing messages table")
	}
}

func TestCountMessages_Success(t *testing.T) {
	db := newMsgRepoDB(t, &domain.Message{}, &domain.Counter{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := CreateMessage(ctx, db, "x", "ts", 1, domain.StatusSent); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	n, err := CountMessages(ctx, db)
	if err != nil || n != 3 {
		t.Fatalf("CountMessages = %d, %v; want 3", n, err)
	}
}
