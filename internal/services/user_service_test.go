package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/thoughts-chat/internal/docstore"
	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// ----- Store helpers -----

func newMemStore(t *testing.T) store.Store {
	t.Helper()
	st, err := docstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// failingStore wraps a store and fails selected calls.
type failingStore struct {
	store.Store
	countErr  error
	createErr error
	getErr    error
	insertErr error
	listErr   error
}

func (f *failingStore) ListMessages(ctx context.Context) ([]domain.MessageView, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListMessages(ctx)
}

func (f *failingStore) CountUsers(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.Store.CountUsers(ctx)
}

func (f *failingStore) CreateUser(ctx context.Context, name, about, subtitle, img string) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	return f.Store.CreateUser(ctx, name, about, subtitle, img)
}

func (f *failingStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.GetUser(ctx, id)
}

func (f *failingStore) InsertMessage(ctx context.Context, text, ts string, userID int64, st domain.Status) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return f.Store.InsertMessage(ctx, text, ts, userID, st)
}

func strp(s string) *string { return &s }

// ----- Tests -----

func TestUserService_Create_NormalizesAndReturnsPersisted(t *testing.T) {
	svc := NewUserService(newMemStore(t))

	u, err := svc.Create(context.Background(), "  Ada \t Lovelace  ", "about", "sub", "file:///a.png")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != 1 || u.Name != "Ada Lovelace" || u.About != "about" || u.ProfileImage != "file:///a.png" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserService_Create_EmptyNameAndClip(t *testing.T) {
	svc := NewUserService(newMemStore(t))
	ctx := context.Background()

	if _, err := svc.Create(ctx, "   ", "", "", ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	svc.NameMaxLen = 5
	u, err := svc.Create(ctx, strings.Repeat("é", 9), "", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Name != "ééééé" {
		t.Fatalf("expected clipped name, got %q", u.Name)
	}
}

func TestUserService_Create_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewUserService(&failingStore{Store: newMemStore(t), createErr: boom})
	if _, err := svc.Create(context.Background(), "You", "", "", ""); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestUserService_GetAbsentIsNil(t *testing.T) {
	svc := NewUserService(newMemStore(t))
	u, err := svc.Get(context.Background(), 42)
	if err != nil || u != nil {
		t.Fatalf("Get(absent) = %v, %v; want nil, nil", u, err)
	}
}

func TestUserService_Update_PartialAndValidation(t *testing.T) {
	svc := NewUserService(newMemStore(t))
	ctx := context.Background()

	u, err := svc.Create(ctx, "You", "old", "sub", "img")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := svc.Update(ctx, u.ID, domain.UserPatch{About: strp("x")})
	if err != nil || !ok {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	got, _ := svc.Get(ctx, u.ID)
	if got.About != "x" || got.Name != "You" || got.Subtitle != "sub" || got.ProfileImage != "img" {
		t.Fatalf("partial update touched other fields: %+v", got)
	}
	if got.LastSeen.Before(u.LastSeen) {
		t.Fatalf("LastSeen moved backwards")
	}

	if _, err := svc.Update(ctx, u.ID, domain.UserPatch{Name: strp("  ")}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if ok, err := svc.Update(ctx, u.ID, domain.UserPatch{}); err != nil || ok {
		t.Fatalf("empty patch = %v, %v; want false, nil", ok, err)
	}
	if ok, err := svc.Update(ctx, 99, domain.UserPatch{About: strp("y")}); err != nil || ok {
		t.Fatalf("missing user = %v, %v; want false, nil", ok, err)
	}
}

func TestUserService_EnsureDefault(t *testing.T) {
	svc := NewUserService(newMemStore(t))
	ctx := context.Background()

	u, err := svc.EnsureDefault(ctx)
	if err != nil {
		t.Fatalf("EnsureDefault: %v", err)
	}
	if u == nil || u.ID != 1 || u.Name != DefaultUserName || u.About != DefaultUserAbout {
		t.Fatalf("unexpected default user: %+v", u)
	}

	again, err := svc.EnsureDefault(ctx)
	if err != nil || again != nil {
		t.Fatalf("second EnsureDefault = %v, %v; want nil, nil", again, err)
	}
}

func TestUserService_EnsureDefault_CountError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewUserService(&failingStore{Store: newMemStore(t), countErr: boom})
	if _, err := svc.EnsureDefault(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected count error, got %v", err)
	}
}
