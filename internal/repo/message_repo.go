// Package repo implements the relational Record Store backed by GORM. This
// file provides repository functions for the Message model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// CreateMessage allocates a message id and inserts the row in one transaction.
func CreateMessage(ctx context.Context, db *gorm.DB, text, timestamp string, userID int64, status domain.Status) (*domain.Message, error) {
	var m *domain.Message
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := NextID(ctx, tx, domain.KindMessage)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		m = &domain.Message{
			ID:        id,
			Text:      text,
			Timestamp: timestamp,
			Status:    status,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessage fetches a message by id.
func GetMessage(ctx context.Context, db *gorm.DB, id int64) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageStatus sets the status of a message. If no row matched id it
// returns ErrNotFound; on DB error the raw error is returned.
func UpdateMessageStatus(ctx context.Context, db *gorm.DB, id int64, status domain.Status) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMessages returns all messages left-joined with their sender, ordered
// deterministically (created_at ASC, id ASC).
func ListMessages(ctx context.Context, db *gorm.DB) ([]domain.MessageView, error) {
	out := []domain.MessageView{}
	err := db.WithContext(ctx).
		Table("messages AS m").
		Select("m.*, u.name AS sender_name, u.profile_image AS sender_profile_image").
		Joins("LEFT JOIN users AS u ON u.id = m.user_id").
		Order("m.created_at ASC, m.id ASC").
		Scan(&out).Error
	return out, err
}

// DeleteMessage removes a message and reports whether a row was deleted.
func DeleteMessage(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Message{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM messages").Scan(&total).Error
	return total, err
}
