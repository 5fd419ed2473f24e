// Package services – ProfileService (profiles and consent management)
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// ProfileRepo defines the repository contract required by ProfileService.
type ProfileRepo interface {
	CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, updates map[string]any) error
	UpsertConsent(ctx context.Context, db *gorm.DB, userID, consentType string, granted bool, policyVersion string) (*domain.ConsentRecord, error)
	GetConsent(ctx context.Context, db *gorm.DB, userID, consentType string) (*domain.ConsentRecord, error)
	ListConsentsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.ConsentRecord, error)
}

// ProfileService manages coaching profiles and consent records.
type ProfileService struct {
	DB   *gorm.DB
	Repo ProfileRepo
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB, r ProfileRepo) *ProfileService {
	return &ProfileService{DB: db, Repo: r}
}

// Create registers a profile for userID. A duplicate maps to
// ErrProfileExists via the unique index on user_id.
func (s *ProfileService) Create(ctx context.Context, p *domain.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.Repo.CreateProfile(ctx, s.DB, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrProfileExists
		}
		return err
	}
	return nil
}

// Get fetches the profile owned by userID, or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update applies a partial update to the user's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	if err := s.Repo.UpdateProfile(ctx, s.DB, userID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}

// SetConsent grants or withdraws one consent type for a user.
func (s *ProfileService) SetConsent(ctx context.Context, userID, consentType string, granted bool, policyVersion string) (*domain.ConsentRecord, error) {
	return s.Repo.UpsertConsent(ctx, s.DB, userID, consentType, granted, policyVersion)
}

// Consents lists every consent record a user holds.
func (s *ProfileService) Consents(ctx context.Context, userID string) ([]domain.ConsentRecord, error) {
	return s.Repo.ListConsentsByUser(ctx, s.DB, userID)
}
