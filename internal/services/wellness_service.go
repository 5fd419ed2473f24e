// Package services – WellnessService (meal, workout, sleep, mood logs)
//
// Thin pass-through over the wellness repositories; validation beyond
// binding lives in the handlers. Exists so the transport layer depends on
// a service interface like everywhere else.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/repo"
)

// WellnessService persists and pages the four wellness log types.
type WellnessService struct {
	DB *gorm.DB
}

// NewWellnessService constructs a WellnessService.
func NewWellnessService(db *gorm.DB) *WellnessService {
	return &WellnessService{DB: db}
}

// AddMeal inserts one meal log.
func (s *WellnessService) AddMeal(ctx context.Context, m *domain.MealLog) error {
	return repo.CreateMealLog(ctx, s.DB, m)
}

// Meals returns a page of the user's meals, newest first, plus the total.
func (s *WellnessService) Meals(ctx context.Context, userID string, offset, limit int) ([]domain.MealLog, int64, error) {
	return repo.ListMealLogs(ctx, s.DB, userID, offset, limit)
}

// AddWorkout inserts one workout log.
func (s *WellnessService) AddWorkout(ctx context.Context, w *domain.WorkoutLog) error {
	return repo.CreateWorkoutLog(ctx, s.DB, w)
}

// Workouts returns a page of the user's workouts, newest first, plus the total.
func (s *WellnessService) Workouts(ctx context.Context, userID string, offset, limit int) ([]domain.WorkoutLog, int64, error) {
	return repo.ListWorkoutLogs(ctx, s.DB, userID, offset, limit)
}

// AddSleep inserts one sleep log.
func (s *WellnessService) AddSleep(ctx context.Context, sl *domain.SleepLog) error {
	return repo.CreateSleepLog(ctx, s.DB, sl)
}

// Sleep returns a page of the user's sleep entries, newest first, plus the total.
func (s *WellnessService) Sleep(ctx context.Context, userID string, offset, limit int) ([]domain.SleepLog, int64, error) {
	return repo.ListSleepLogs(ctx, s.DB, userID, offset, limit)
}

// AddMood inserts one mood check-in.
func (s *WellnessService) AddMood(ctx context.Context, m *domain.MoodLog) error {
	return repo.CreateMoodLog(ctx, s.DB, m)
}

// Moods returns a page of the user's mood check-ins, newest first, plus the total.
func (s *WellnessService) Moods(ctx context.Context, userID string, offset, limit int) ([]domain.MoodLog, int64, error) {
	return repo.ListMoodLogs(ctx, s.DB, userID, offset, limit)
}
