// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for coach
// notifications and weekly coach notes.
//
// The dedup primitive here is CountRecentNotifications: the notifier calls
// it before inserting, so the at-most-one-per-window invariant is a
// read-then-write check, not a database constraint. Two overlapping runs of
// the same job can both pass the check; that race is accepted given the
// daily/weekly invocation cadence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// CreateNotification inserts a new proactive notification with status
// "pending" and read=false. Delivery is owned by an external subsystem.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.CoachNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Status == "" {
		n.Status = "pending"
	}
	return db.WithContext(ctx).Create(n).Error
}

// CountRecentNotifications returns how many notifications of the given type
// exist for userID with CreatedAt >= since. A result > 0 means the dedup
// window is still occupied.
func CountRecentNotifications(ctx context.Context, db *gorm.DB, userID, notifType string, since time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CoachNotification{}).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, notifType, since).
		Count(&total).Error
	return total, err
}

// ListNotifications returns a page of a user's notifications, newest first.
func ListNotifications(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.CoachNotification, error) {
	var out []domain.CoachNotification
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountNotifications returns the total number of notifications for a user.
func CountNotifications(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CoachNotification{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// MarkNotificationRead flips the read flag on a notification owned by
// userID. Returns ErrNotFound when no matching row exists.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Model(&domain.CoachNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateNote inserts one coach note. The weekly digest performs no dedup
// before calling this: re-running the job for the same week accumulates
// notes, which is the documented behavior.
func CreateNote(ctx context.Context, db *gorm.DB, userID, note, noteType string) (*domain.CoachNote, error) {
	rec := &domain.CoachNote{
		ID:        uuid.NewString(),
		UserID:    userID,
		Note:      note,
		Type:      noteType,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// ListNotesByUser returns all coach notes for one user, oldest first.
// Used by the GDPR export.
func ListNotesByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.CoachNote, error) {
	var out []domain.CoachNote
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
