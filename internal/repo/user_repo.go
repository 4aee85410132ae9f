// Package repo implements the relational Record Store backed by GORM. This
// file provides repository functions for the User model.
//
// All functions accept a *gorm.DB handle, making them safe for use within
// transactions. They follow the "thin repository" approach: no business
// logic, only persistence and query composition.
//
// Error semantics:
//   - When a user is not found, GetUser returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser allocates a user id and inserts the profile in one transaction.
// LastSeen, CreatedAt and UpdatedAt are set to now (UTC).
func CreateUser(ctx context.Context, db *gorm.DB, name, about, subtitle, profileImage string) (*domain.User, error) {
	var u *domain.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := NextID(ctx, tx, domain.KindUser)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		u = &domain.User{
			ID:           id,
			Name:         name,
			About:        about,
			Subtitle:     subtitle,
			ProfileImage: profileImage,
			LastSeen:     now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(u).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by id, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the number of stored users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

// UpdateUser writes the set fields of patch plus last_seen/updated_at.
// It returns false without touching the database when the patch is empty,
// and false when no row matched id.
func UpdateUser(ctx context.Context, db *gorm.DB, id int64, patch domain.UserPatch, now time.Time) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	cols := map[string]any{
		"last_seen":  now,
		"updated_at": now,
	}
	if patch.Name != nil {
		cols["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.About != nil {
		cols["about"] = *patch.About
	}
	if patch.Subtitle != nil {
		cols["subtitle"] = *patch.Subtitle
	}
	if patch.ProfileImage != nil {
		cols["profile_image"] = *patch.ProfileImage
	}

	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
