// Package services – UserService
//
// This file implements UserService, which manages the local profile. It
// normalizes names, delegates persistence to the configured store.Store and
// seeds the default profile on first run.
//
// Absence is a result: Get returns (nil, nil) for an unknown id and Update
// returns false, matching the store contract.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/store"
)

// Default profile created when the store holds no user yet.
const (
	DefaultUserName  = "You"
	DefaultUserAbout = "Hey there! I am using Thoughts."
)

// UserService provides profile operations.
type UserService struct {
	Store store.Store

	// NameMaxLen caps stored names by rune length (0 disables).
	NameMaxLen int

	// DefaultName/DefaultAbout seed the first profile.
	DefaultName  string
	DefaultAbout string
}

// NewUserService constructs a UserService with the stock defaults.
func NewUserService(st store.Store) *UserService {
	return &UserService{
		Store:        st,
		NameMaxLen:   80,
		DefaultName:  DefaultUserName,
		DefaultAbout: DefaultUserAbout,
	}
}

// Create stores a new profile and returns it as persisted.
func (s *UserService) Create(ctx context.Context, name, about, subtitle, profileImage string) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	name = s.normalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	id, err := s.Store.CreateUser(ctx, name, about, subtitle, profileImage)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	return s.Store.GetUser(ctx, id)
}

// Get returns the user or nil when absent.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	return s.Store.GetUser(ctx, id)
}

// Update merges the set fields of patch. It reports false when the patch is
// empty or the user does not exist.
func (s *UserService) Update(ctx context.Context, id int64, patch domain.UserPatch) (bool, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	if patch.Name != nil {
		n := s.normalizeName(*patch.Name)
		if n == "" {
			return false, ErrEmptyName
		}
		patch.Name = &n
	}
	return s.Store.UpdateUser(ctx, id, patch)
}

// EnsureDefault creates the default profile when the store holds no user.
// It returns the created user, or nil when users already exist.
func (s *UserService) EnsureDefault(ctx context.Context) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "EnsureDefault")
	defer span.End()

	n, err := s.Store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}

	name := s.DefaultName
	if strings.TrimSpace(name) == "" {
		name = DefaultUserName
	}
	return s.Create(ctx, name, s.DefaultAbout, "", "")
}

// normalizeName applies NFC, trims, collapses inner whitespace and clips.
func (s *UserService) normalizeName(name string) string {
	name = strings.Join(strings.Fields(norm.NFC.String(name)), " ")
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		name = string([]rune(name)[:s.NameMaxLen])
	}
	return name
}
