// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for user
// profiles and the GDPR hard-delete that purges a user across every table.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// CreateProfile inserts a new profile for userID. The unique index on
// user_id rejects a second profile for the same user.
func CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(p).Error
}

// GetProfile fetches the profile owned by userID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies the given column updates to the user's profile.
// Returns ErrNotFound when the user has no profile.
func UpdateProfile(ctx context.Context, db *gorm.DB, userID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListProfileUserIDs returns the user IDs of every registered profile, in
// creation order. The weekly digest iterates this set so that users with no
// activity in the window still receive their "no activity" note.
func ListProfileUserIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Order("created_at asc").
		Pluck("user_id", &ids).Error
	return ids, err
}

// PurgeUserData hard-deletes every row belonging to userID across all
// tables, in one transaction. Soft-delete markers are bypassed
// (Unscoped): GDPR erasure must not leave tombstones behind.
func PurgeUserData(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&domain.InteractionLog{},
			&domain.MealLog{},
			&domain.WorkoutLog{},
			&domain.SleepLog{},
			&domain.MoodLog{},
			&domain.CoachNotification{},
			&domain.CoachNote{},
			&domain.ConsentRecord{},
			&domain.Profile{},
		} {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
