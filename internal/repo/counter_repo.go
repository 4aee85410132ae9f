// Package repo implements the relational Record Store backed by GORM. This
// file provides the durable id allocator.
//
// Ids come from the counters table rather than SQLite's rowid so the
// last-issued value is explicit data: it survives restarts, it is only ever
// incremented, and it is advanced in the same transaction as the insert that
// consumes it.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// tableFor maps an id sequence to the table whose ids it issues.
func tableFor(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindUser:
		return domain.User{}.TableName(), nil
	case domain.KindMessage:
		return domain.Message{}.TableName(), nil
	default:
		return "", fmt.Errorf("unknown id kind %q", kind)
	}
}

// NextID increments and returns the counter for kind. Call it inside the
// transaction that inserts the row using the id.
//
// The UPDATE runs first so SQLite takes the write lock immediately; two
// allocators can never read the same last_id. A missing counter row is
// seeded from MAX(id) of the target table so ids already in use are skipped.
func NextID(ctx context.Context, tx *gorm.DB, kind domain.Kind) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	res := tx.WithContext(ctx).
		Model(&domain.Counter{}).
		Where("kind = ?", kind).
		UpdateColumn("last_id", gorm.Expr("last_id + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		var maxID int64
		if err := tx.WithContext(ctx).
			Raw("SELECT COALESCE(MAX(id), 0) FROM " + table).
			Scan(&maxID).Error; err != nil {
			return 0, err
		}
		c := domain.Counter{Kind: kind, LastID: maxID + 1}
		if err := tx.WithContext(ctx).Create(&c).Error; err != nil {
			return 0, err
		}
		return c.LastID, nil
	}

	return LastID(ctx, tx, kind)
}

// LastID returns the last id issued for kind, or 0 if none was issued yet.
func LastID(ctx context.Context, db *gorm.DB, kind domain.Kind) (int64, error) {
	var cs []domain.Counter
	if err := db.WithContext(ctx).Where("kind = ?", kind).Limit(1).Find(&cs).Error; err != nil {
		return 0, err
	}
	if len(cs) == 0 {
		return 0, nil
	}
	return cs[0].LastID, nil
}
