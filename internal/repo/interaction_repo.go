// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for interaction
// logs, the per-exchange chat records consumed by the scheduled jobs.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateInteraction inserts one chat exchange for userID. The row ID is a
// randomly generated UUID and CreatedAt is set to UTC. Rows are immutable
// after insertion.
func CreateInteraction(ctx context.Context, db *gorm.DB, userID, userMessage, aiResponse string, success bool) (*domain.InteractionLog, error) {
	rec := &domain.InteractionLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		Success:     success,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// ListInteractionsSince returns every interaction log with CreatedAt >= since,
// across all users, ordered ascending by timestamp. The proactive notifier
// relies on this ordering to group per-user sequences chronologically.
func ListInteractionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.InteractionLog, error) {
	var out []domain.InteractionLog
	err := db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// ListSuccessfulInteractionsSince is ListInteractionsSince restricted to
// exchanges whose LLM call succeeded. Used by the weekly digest so failed
// exchanges never leak into summaries.
func ListSuccessfulInteractionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.InteractionLog, error) {
	var out []domain.InteractionLog
	err := db.WithContext(ctx).
		Where("created_at >= ? AND success = ?", since, true).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// ListInteractionsByUser returns all interaction logs for one user, oldest
// first. Used by the GDPR export.
func ListInteractionsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.InteractionLog, error) {
	var out []domain.InteractionLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
