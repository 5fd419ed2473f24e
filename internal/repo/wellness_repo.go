// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the four
// wellness log tables (meals, workouts, sleep, moods). The handlers treat
// these as plain table-mapped inserts and paginated reads.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// CreateMealLog inserts one meal row, stamping ID and LoggedAt when unset.
func CreateMealLog(ctx context.Context, db *gorm.DB, m *domain.MealLog) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.LoggedAt.IsZero() {
		m.LoggedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(m).Error
}

// ListMealLogs returns a page of a user's meals, newest first, plus the total.
func ListMealLogs(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.MealLog, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.MealLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.MealLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

// CreateWorkoutLog inserts one workout row.
func CreateWorkoutLog(ctx context.Context, db *gorm.DB, w *domain.WorkoutLog) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.LoggedAt.IsZero() {
		w.LoggedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(w).Error
}

// ListWorkoutLogs returns a page of a user's workouts, newest first, plus the total.
func ListWorkoutLogs(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.WorkoutLog, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.WorkoutLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.WorkoutLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

// CreateSleepLog inserts one sleep row.
func CreateSleepLog(ctx context.Context, db *gorm.DB, s *domain.SleepLog) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.LoggedAt.IsZero() {
		s.LoggedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// ListSleepLogs returns a page of a user's sleep entries, newest first, plus the total.
func ListSleepLogs(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.SleepLog, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.SleepLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.SleepLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

// CreateMoodLog inserts one mood row.
func CreateMoodLog(ctx context.Context, db *gorm.DB, m *domain.MoodLog) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.LoggedAt.IsZero() {
		m.LoggedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(m).Error
}

// ListMoodLogs returns a page of a user's mood check-ins, newest first, plus the total.
func ListMoodLogs(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.MoodLog, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.MoodLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.MoodLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

// ListMealLogsByUser returns all of a user's meal rows for the GDPR export.
func ListMealLogsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.MealLog, error) {
	var out []domain.MealLog
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("logged_at asc").Find(&out).Error
	return out, err
}

// ListWorkoutLogsByUser returns all of a user's workout rows for the GDPR export.
func ListWorkoutLogsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.WorkoutLog, error) {
	var out []domain.WorkoutLog
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("logged_at asc").Find(&out).Error
	return out, err
}

// ListSleepLogsByUser returns all of a user's sleep rows for the GDPR export.
func ListSleepLogsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.SleepLog, error) {
	var out []domain.SleepLog
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("logged_at asc").Find(&out).Error
	return out, err
}

// ListMoodLogsByUser returns all of a user's mood rows for the GDPR export.
func ListMoodLogsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.MoodLog, error) {
	var out []domain.MoodLog
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("logged_at asc").Find(&out).Error
	return out, err
}
