// Package services – GDPRService (data export and erasure)
//
// Export assembles a point-in-time bundle of every row the system holds
// about a user. Deletion is a hard purge across all tables in a single
// transaction; there is no soft-delete grace period on this path.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/repo"
)

// GDPRExport is the full data bundle returned to the user.
type GDPRExport struct {
	UserID        string                     `json:"user_id"`
	ExportedAt    time.Time                  `json:"exported_at"`
	Profile       *domain.Profile            `json:"profile,omitempty"`
	Interactions  []domain.InteractionLog    `json:"interactions"`
	Meals         []domain.MealLog           `json:"meals"`
	Workouts      []domain.WorkoutLog        `json:"workouts"`
	Sleep         []domain.SleepLog          `json:"sleep"`
	Moods         []domain.MoodLog           `json:"moods"`
	Notifications []domain.CoachNotification `json:"notifications"`
	Notes         []domain.CoachNote         `json:"notes"`
	Consents      []domain.ConsentRecord     `json:"consents"`
}

// GDPRService implements the data-subject rights surface.
type GDPRService struct {
	DB *gorm.DB
}

// NewGDPRService constructs a GDPRService.
func NewGDPRService(db *gorm.DB) *GDPRService {
	return &GDPRService{DB: db}
}

// Export collects everything stored for userID. A missing profile is not an
// error: the bundle is still assembled from whatever rows exist.
func (s *GDPRService) Export(ctx context.Context, userID string) (*GDPRExport, error) {
	out := &GDPRExport{
		UserID:     userID,
		ExportedAt: time.Now().UTC(),
	}

	p, err := repo.GetProfile(ctx, s.DB, userID)
	switch {
	case err == nil:
		out.Profile = p
	case err == repo.ErrNotFound:
	default:
		return nil, err
	}

	if out.Interactions, err = repo.ListInteractionsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Meals, err = repo.ListMealLogsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Workouts, err = repo.ListWorkoutLogsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Sleep, err = repo.ListSleepLogsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Moods, err = repo.ListMoodLogsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Notifications, err = repo.ListNotifications(ctx, s.DB, userID, 0, -1); err != nil {
		return nil, err
	}
	if out.Notes, err = repo.ListNotesByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Consents, err = repo.ListConsentsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete hard-deletes every row belonging to userID.
func (s *GDPRService) Delete(ctx context.Context, userID string) error {
	return repo.PurgeUserData(ctx, s.DB, userID)
}
