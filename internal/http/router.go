// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Fail-closed consent and cron authentication before any job work
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/config"
	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/http/handlers"
	"github.com/nourish-labs/go-coach-backend/internal/http/middleware"
	"github.com/nourish-labs/go-coach-backend/internal/ratelimit"
	"github.com/nourish-labs/go-coach-backend/internal/repo"
	"github.com/nourish-labs/go-coach-backend/internal/services"
)

// notifierRepoShim adapts the repository free functions to the
// services.NotifierRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type notifierRepoShim struct{}

func (notifierRepoShim) ListInteractionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.InteractionLog, error) {
	return repo.ListInteractionsSince(ctx, db, since)
}

func (notifierRepoShim) CountRecentNotifications(ctx context.Context, db *gorm.DB, userID, notifType string, since time.Time) (int64, error) {
	return repo.CountRecentNotifications(ctx, db, userID, notifType, since)
}

func (notifierRepoShim) CreateNotification(ctx context.Context, db *gorm.DB, n *domain.CoachNotification) error {
	return repo.CreateNotification(ctx, db, n)
}

func (notifierRepoShim) CreateCronRun(ctx context.Context, db *gorm.DB, run *domain.CronRun) error {
	return repo.CreateCronRun(ctx, db, run)
}

// digestRepoShim adapts the repository free functions to services.DigestRepo.
type digestRepoShim struct{}

func (digestRepoShim) ListSuccessfulInteractionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.InteractionLog, error) {
	return repo.ListSuccessfulInteractionsSince(ctx, db, since)
}

func (digestRepoShim) ListProfileUserIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	return repo.ListProfileUserIDs(ctx, db)
}

func (digestRepoShim) CreateNote(ctx context.Context, db *gorm.DB, userID, note, noteType string) (*domain.CoachNote, error) {
	return repo.CreateNote(ctx, db, userID, note, noteType)
}

func (digestRepoShim) CreateCronRun(ctx context.Context, db *gorm.DB, run *domain.CronRun) error {
	return repo.CreateCronRun(ctx, db, run)
}

// cronRunShim adapts repo.ListCronRuns to handlers.CronRunLister, binding
// the database handle so the handler stays transport-only.
type cronRunShim struct{ db *gorm.DB }

func (s cronRunShim) ListCronRuns(ctx context.Context, functionName string, limit int) ([]domain.CronRun, error) {
	return repo.ListCronRuns(ctx, s.db, functionName, limit)
}

// consentRepoShim adapts repo.GetConsent to services.ConsentRepo.
type consentRepoShim struct{}

func (consentRepoShim) GetConsent(ctx context.Context, db *gorm.DB, userID, consentType string) (*domain.ConsentRecord, error) {
	return repo.GetConsent(ctx, db, userID, consentType)
}

// coachRepoShim adapts the repository free functions to services.CoachRepo.
type coachRepoShim struct{}

func (coachRepoShim) CreateInteraction(ctx context.Context, db *gorm.DB, userID, userMessage, aiResponse string, success bool) (*domain.InteractionLog, error) {
	return repo.CreateInteraction(ctx, db, userID, userMessage, aiResponse, success)
}

func (coachRepoShim) CreateMealLog(ctx context.Context, db *gorm.DB, m *domain.MealLog) error {
	return repo.CreateMealLog(ctx, db, m)
}

// profileRepoShim adapts the repository free functions to services.ProfileRepo.
type profileRepoShim struct{}

func (profileRepoShim) CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return repo.CreateProfile(ctx, db, p)
}

func (profileRepoShim) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	return repo.GetProfile(ctx, db, userID)
}

func (profileRepoShim) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, updates map[string]any) error {
	return repo.UpdateProfile(ctx, db, userID, updates)
}

func (profileRepoShim) UpsertConsent(ctx context.Context, db *gorm.DB, userID, consentType string, granted bool, policyVersion string) (*domain.ConsentRecord, error) {
	return repo.UpsertConsent(ctx, db, userID, consentType, granted, policyVersion)
}

func (profileRepoShim) GetConsent(ctx context.Context, db *gorm.DB, userID, consentType string) (*domain.ConsentRecord, error) {
	return repo.GetConsent(ctx, db, userID, consentType)
}

func (profileRepoShim) ListConsentsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.ConsentRecord, error) {
	return repo.ListConsentsByUser(ctx, db, userID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability, logging with redaction, rate limiting, CORS and
// security headers, the versioned public API, and the cron trigger group.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip compression
//  8. Token-bucket rate limiter (per user/IP; public API abuse control)
//  9. CORS and security headers
//
// Cron endpoints additionally pass CronAuth and the Redis fixed-window
// limiter (checked inside the handler so a 401 never consumes a slot).
func RegisterRoutes(r *gin.Engine, db *gorm.DB, llmClient services.CoachLLM, rlStore ratelimit.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (wellness data is PII-adjacent)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-User-ID"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB; photo analysis passes URLs, not bytes)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compress JSON responses (exports and long lists benefit most)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers; responses carry health data, so never cache them.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (off unless explicitly enabled)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/llm
	consentGate := &services.ConsentService{DB: db, Repo: consentRepoShim{}}
	notifier, digest := NewJobServices(db, llmClient, cfg)

	coachSvc := services.NewCoachService(db, coachRepoShim{}, consentGate, llmClient)
	coachSvc.RequestTimeout = cfg.LLM.RequestLimit

	profileSvc := services.NewProfileService(db, profileRepoShim{})
	wellnessSvc := services.NewWellnessService(db)
	notifSvc := services.NewNotificationService(db)
	gdprSvc := services.NewGDPRService(db)

	h := handlers.New(profileSvc, coachSvc, wellnessSvc, notifSvc, gdprSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Profile & consent
		api.POST("/profile", h.CreateProfile)
		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.UpdateProfile)
		api.PUT("/consent", h.SetConsent)
		api.GET("/consent", h.ListConsents)

		// Wellness logs
		api.POST("/logs/meals", h.LogMeal)
		api.GET("/logs/meals", h.ListMeals)
		api.POST("/logs/workouts", h.LogWorkout)
		api.GET("/logs/workouts", h.ListWorkouts)
		api.POST("/logs/sleep", h.LogSleep)
		api.GET("/logs/sleep", h.ListSleep)
		api.POST("/logs/moods", h.LogMood)
		api.GET("/logs/moods", h.ListMoods)

		// AI coach
		api.POST("/chat", h.Chat)
		api.POST("/photo-analysis", h.AnalyzePhoto)

		// Notifications & notes
		api.GET("/notifications", h.ListNotifications)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)
		api.GET("/notes", h.ListNotes)

		// GDPR
		api.GET("/gdpr/export", h.Export)
		api.DELETE("/gdpr/data", h.DeleteData)
	}

	// Cron triggers: shared-secret auth, then the Redis fixed-window limiter
	// inside the handler. Rejections at either gate leave no audit row.
	limiter := &ratelimit.FixedWindow{
		Store:  rlStore,
		Limit:  cfg.Cron.RateLimit,
		Window: cfg.Cron.RateTTL,
		Prefix: "cron:rate:",
	}
	ch := handlers.NewCron(notifier, digest, limiter, cronRunShim{db: db})

	cron := r.Group("/cron", middleware.CronAuth(cfg.Cron.Secret))
	{
		cron.POST("/check-user-status", ch.CheckUserStatus)
		cron.POST("/weekly-digest", ch.WeeklyDigest)
		cron.GET("/runs", ch.Runs)
	}
}

// NewJobServices builds the two scheduled-job services with their windows
// taken from configuration. Shared by RegisterRoutes (HTTP triggers) and
// the optional in-process scheduler, so both paths run identical jobs.
func NewJobServices(db *gorm.DB, llmClient services.CoachLLM, cfg config.Config) (*services.NotifierService, *services.DigestService) {
	consentGate := &services.ConsentService{DB: db, Repo: consentRepoShim{}}

	notifier := services.NewNotifierService(db, notifierRepoShim{}, consentGate)
	notifier.LookbackDays = cfg.Cron.LookbackDays
	notifier.StressDayThreshold = cfg.Cron.StressDayThreshold

	digest := services.NewDigestService(db, digestRepoShim{}, &services.LLMSummarizer{LLM: llmClient})
	digest.LookbackDays = cfg.Cron.DigestDays
	digest.EntryRunes = cfg.Cron.DigestEntryRunes
	digest.MaxWordHint = cfg.Cron.DigestMaxWordHint

	return notifier, digest
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on downstream reads.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
