// Package services – ConsentService
//
// The consent gate answers exactly one question: may this user's data be
// processed for a given consent category right now? It is deliberately
// fail-closed: a missing record, a withdrawn grant, or a storage error all
// degrade to "no consent". The gate never raises to its callers. Note the
// opposite policy from the rate limiter, which fails open.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// ConsentRepo defines the repository contract required by ConsentService.
type ConsentRepo interface {
	// GetConsent fetches the single record for (userID, consentType),
	// returning gorm.ErrRecordNotFound when none exists.
	GetConsent(ctx context.Context, db *gorm.DB, userID, consentType string) (*domain.ConsentRecord, error)
}

// ConsentGate is the read-only view consumed by the jobs and the chat path.
type ConsentGate interface {
	HasConsent(ctx context.Context, userID, consentType string) bool
}

// ConsentService implements ConsentGate over the consent_records table.
type ConsentService struct {
	DB   *gorm.DB
	Repo ConsentRepo
}

// NewConsentService constructs a ConsentService.
func NewConsentService(db *gorm.DB, r ConsentRepo) *ConsentService {
	return &ConsentService{DB: db, Repo: r}
}

// HasConsent reports whether processing of the user's data under
// consentType is currently authorized: the record must exist, be granted,
// and not be withdrawn. Lookup failures are logged and return false.
func (s *ConsentService) HasConsent(ctx context.Context, userID, consentType string) bool {
	rec, err := s.Repo.GetConsent(ctx, s.DB, userID, consentType)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("consent_type", consentType).
				Msg("consent lookup failed, failing closed")
		}
		return false
	}
	return rec.Granted && rec.WithdrawnAt == nil
}
