// Package services – NotificationService (user-facing notification reads)
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/repo"
)

// NotificationService exposes a user's notification feed and read-marking.
// The scheduled jobs write notifications; this service only reads and flags.
type NotificationService struct {
	DB *gorm.DB
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// List returns a page of the user's notifications, newest first, plus the total.
func (s *NotificationService) List(ctx context.Context, userID string, offset, limit int) ([]domain.CoachNotification, int64, error) {
	total, err := repo.CountNotifications(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListNotifications(ctx, s.DB, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead flips the read flag on one of the user's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := repo.MarkNotificationRead(ctx, s.DB, notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// Notes returns the user's coach notes, oldest first.
func (s *NotificationService) Notes(ctx context.Context, userID string) ([]domain.CoachNote, error) {
	return repo.ListNotesByUser(ctx, s.DB, userID)
}
