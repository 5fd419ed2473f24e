// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for consent
// records. Only the profile/consent surface writes these rows; the
// scheduled jobs read them through the consent gate.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// GetConsent fetches the single consent record for (userID, consentType).
// Returns ErrNotFound when no record exists; absence is interpreted
// upstream as "no consent", never as implicit consent.
func GetConsent(ctx context.Context, db *gorm.DB, userID, consentType string) (*domain.ConsentRecord, error) {
	var rec domain.ConsentRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND consent_type = ?", userID, consentType).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertConsent grants or withdraws a consent type for a user. Granting
// stamps GrantedAt and clears WithdrawnAt; withdrawing stamps WithdrawnAt
// and leaves the original grant time in place for audit.
func UpsertConsent(ctx context.Context, db *gorm.DB, userID, consentType string, granted bool, policyVersion string) (*domain.ConsentRecord, error) {
	now := time.Now().UTC()

	var rec domain.ConsentRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND consent_type = ?", userID, consentType).
		First(&rec).Error
	switch {
	case err == nil:
		rec.Granted = granted
		rec.PrivacyPolicyVersion = policyVersion
		if granted {
			rec.GrantedAt = now
			rec.WithdrawnAt = nil
		} else {
			rec.WithdrawnAt = &now
		}
		if err := db.WithContext(ctx).Save(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	case err == gorm.ErrRecordNotFound:
		rec = domain.ConsentRecord{
			ID:                   uuid.NewString(),
			UserID:               userID,
			ConsentType:          consentType,
			Granted:              granted,
			GrantedAt:            now,
			PrivacyPolicyVersion: policyVersion,
		}
		if !granted {
			rec.WithdrawnAt = &now
		}
		if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	default:
		return nil, err
	}
}

// ListConsentsByUser returns every consent record a user holds. Used by the
// GDPR export.
func ListConsentsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.ConsentRecord, error) {
	var out []domain.ConsentRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error
	return out, err
}
