// Handler wiring for the public wellness API.
//
// This file declares the service contracts the transport layer consumes,
// the Handlers aggregate bound to them, and the shared request helpers
// (user identity, pagination). Handlers stay transport-thin: validate
// input, call a service, translate the result.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/services"
	"github.com/nourish-labs/go-coach-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProfileService defines profile and consent operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type ProfileService interface {
	Create(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error)
	SetConsent(ctx context.Context, userID, consentType string, granted bool, policyVersion string) (*domain.ConsentRecord, error)
	Consents(ctx context.Context, userID string) ([]domain.ConsentRecord, error)
}

// CoachService defines the AI chat and photo-analysis operations.
type CoachService interface {
	Chat(ctx context.Context, userID, message string) (*services.ChatResult, error)
	AnalyzeMealPhoto(ctx context.Context, userID, imageURL string) (*domain.MealLog, error)
}

// WellnessService defines insert and paginated read operations for the four
// wellness log types.
type WellnessService interface {
	AddMeal(ctx context.Context, m *domain.MealLog) error
	Meals(ctx context.Context, userID string, offset, limit int) ([]domain.MealLog, int64, error)
	AddWorkout(ctx context.Context, w *domain.WorkoutLog) error
	Workouts(ctx context.Context, userID string, offset, limit int) ([]domain.WorkoutLog, int64, error)
	AddSleep(ctx context.Context, s *domain.SleepLog) error
	Sleep(ctx context.Context, userID string, offset, limit int) ([]domain.SleepLog, int64, error)
	AddMood(ctx context.Context, m *domain.MoodLog) error
	Moods(ctx context.Context, userID string, offset, limit int) ([]domain.MoodLog, int64, error)
}

// NotificationService defines the user-facing notification feed operations.
type NotificationService interface {
	List(ctx context.Context, userID string, offset, limit int) ([]domain.CoachNotification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	Notes(ctx context.Context, userID string) ([]domain.CoachNote, error)
}

// GDPRService defines the data-subject rights operations.
type GDPRService interface {
	Export(ctx context.Context, userID string) (*services.GDPRExport, error)
	Delete(ctx context.Context, userID string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the public API. Cron trigger
// endpoints live in CronHandlers.
type Handlers struct {
	profileSvc  ProfileService
	coachSvc    CoachService
	wellnessSvc WellnessService
	notifSvc    NotificationService
	gdprSvc     GDPRService
}

// New constructs a Handlers instance bound to the given services.
func New(p ProfileService, c CoachService, w WellnessService, n NotificationService, g GDPRService) *Handlers {
	return &Handlers{profileSvc: p, coachSvc: c, wellnessSvc: w, notifSvc: n, gdprSvc: g}
}

// userID extracts the authenticated user id from the Gin context (set by
// upstream auth middleware), falling back to the X-User-ID header used by
// tests and demo deployments.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Pagination
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params,
// returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginate computes the derived pagination block for a list response.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
