// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for cron run
// audit rows. Rows are append-only: written once per job invocation and
// never mutated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// CreateCronRun appends one audit row for a completed job invocation.
// Callers invoke this on both the success and the error path; a failure to
// write the audit row is logged by the caller but never escalated, so an
// unhealthy audit table cannot mask a job result.
func CreateCronRun(ctx context.Context, db *gorm.DB, run *domain.CronRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RunTime.IsZero() {
		run.RunTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(run).Error
}

// ListCronRuns returns the most recent audit rows for a job name, newest
// first, capped at limit. Exposed for operational inspection.
func ListCronRuns(ctx context.Context, db *gorm.DB, functionName string, limit int) ([]domain.CronRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.CronRun
	err := db.WithContext(ctx).
		Where("function_name = ?", functionName).
		Order("run_time desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
