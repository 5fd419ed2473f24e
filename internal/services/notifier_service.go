// Package services – NotifierService (checkUserStatus)
//
// The proactive notifier is the first of the two scheduled jobs. Per
// invocation it pulls the trailing window of interaction logs, groups them
// by user in first-seen order, and for each user runs the pipeline
// DETECT → CONSENT → DEDUP → INSERT. Users are processed strictly
// sequentially; one user's failure never aborts the batch. Exactly one
// cron run audit row is written per invocation, on both the success and
// the error path.
//
// Authentication and rate limiting are preconditions enforced in the HTTP
// layer before this service runs, so a rejected request leaves no audit row.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// JobCheckUserStatus is the audit/rate-limit name of the proactive notifier job.
const JobCheckUserStatus = "checkUserStatus"

// proactiveMessage is the fixed supportive outreach text. Content is
// deliberately generic: the notifier knows a pattern was detected, not why.
const proactiveMessage = "Hey, I noticed the last few days might have felt heavy. " +
	"I'm here whenever you want to talk. Even a short check-in can help."

// TriggeredNotification identifies one notification created during a run.
type TriggeredNotification struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
}

// UserFailure attributes one per-user operation failure inside a batch run.
type UserFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// CheckUserStatusResult is the operational summary returned to the caller
// and folded into the cron run audit row.
type CheckUserStatusResult struct {
	UsersConsidered  int
	Notifications    []TriggeredNotification
	Failures         []UserFailure
	SkippedNoConsent []string
	SkippedRecent    []string
	RunStatus        string
	WindowStart      time.Time
	WindowEnd        time.Time
}

// NotifierRepo defines the repository contract required by NotifierService.
type NotifierRepo interface {
	// ListInteractionsSince returns all logs with timestamp >= since,
	// ascending, across users.
	ListInteractionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.InteractionLog, error)

	// CountRecentNotifications counts notifications of a type for a user
	// created at or after since (the dedup existence check).
	CountRecentNotifications(ctx context.Context, db *gorm.DB, userID, notifType string, since time.Time) (int64, error)

	// CreateNotification inserts one pending notification.
	CreateNotification(ctx context.Context, db *gorm.DB, n *domain.CoachNotification) error

	// CreateCronRun appends the per-invocation audit row.
	CreateCronRun(ctx context.Context, db *gorm.DB, run *domain.CronRun) error
}

// NotifierService runs the proactive stress-detection job.
type NotifierService struct {
	DB      *gorm.DB
	Repo    NotifierRepo
	Consent ConsentGate

	// LookbackDays is both the log window and the dedup window; <= 0 means 3.
	LookbackDays int
	// StressDayThreshold is the distinct-day trigger count; <= 0 means 2.
	StressDayThreshold int

	// Now and Sleep are test seams; nil means time.Now / time.Sleep.
	Now   func() time.Time
	Sleep SleepFunc
}

// NewNotifierService constructs a NotifierService with the default 3-day
// window and 2-day threshold.
func NewNotifierService(db *gorm.DB, r NotifierRepo, gate ConsentGate) *NotifierService {
	return &NotifierService{DB: db, Repo: r, Consent: gate, LookbackDays: 3, StressDayThreshold: 2}
}

// CheckUserStatus executes one run of the proactive notifier.
//
// The initial bulk log fetch is retried; if it still fails, the run aborts
// with an error-status audit row and the error is returned. Everything
// after that point is per-user: detection misses are silent, consent
// denials and dedup hits are counted as skips, and insert failures (after
// their own retries) are recorded without stopping the batch.
func (s *NotifierService) CheckUserStatus(ctx context.Context) (*CheckUserStatusResult, error) {
	tr := otel.Tracer("services/NotifierService")
	ctx, span := tr.Start(ctx, "CheckUserStatus")
	defer span.End()

	start := s.now()
	since := start.AddDate(0, 0, -s.lookbackDays())

	res := &CheckUserStatusResult{
		Notifications:    []TriggeredNotification{},
		Failures:         []UserFailure{},
		SkippedNoConsent: []string{},
		SkippedRecent:    []string{},
		WindowStart:      since,
		WindowEnd:        start,
	}

	fetchAttempts := 0
	logs, err := Retry(ctx, DefaultRetryAttempts, DefaultRetryDelays, s.Sleep, func(ctx context.Context) ([]domain.InteractionLog, error) {
		fetchAttempts++
		return s.Repo.ListInteractionsSince(ctx, s.DB, since)
	})
	if err != nil {
		// Top-level fetch exhaustion aborts the whole run.
		s.recordRun(ctx, domain.RunStatusError, start, fetchAttempts, res, err.Error())
		return nil, err
	}

	order, groups := groupByUser(logs)
	res.UsersConsidered = len(order)
	span.SetAttributes(attribute.Int("users.considered", len(order)))

	threshold := s.StressDayThreshold
	if threshold <= 0 {
		threshold = stressDayThreshold
	}

	for _, userID := range order {
		if CountStressDays(groups[userID]) < threshold {
			continue
		}

		if !s.Consent.HasConsent(ctx, userID, domain.ConsentOpenAIProcessing) {
			res.SkippedNoConsent = append(res.SkippedNoConsent, userID)
			log.Info().Str("job", JobCheckUserStatus).Str("user_id", userID).
				Msg("stress pattern detected, skipped: no consent")
			continue
		}

		// Dedup: one proactive notification per user per window. This is a
		// read-then-write check; overlapping runs of the job can race it.
		existing, derr := s.Repo.CountRecentNotifications(ctx, s.DB, userID, domain.NotificationTypeProactive, since)
		if derr != nil {
			res.Failures = append(res.Failures, UserFailure{UserID: userID, Error: derr.Error()})
			continue
		}
		if existing > 0 {
			res.SkippedRecent = append(res.SkippedRecent, userID)
			log.Info().Str("job", JobCheckUserStatus).Str("user_id", userID).
				Msg("stress pattern detected, skipped: recent notification")
			continue
		}

		n, ierr := Retry(ctx, DefaultRetryAttempts, DefaultRetryDelays, s.Sleep, func(ctx context.Context) (*domain.CoachNotification, error) {
			notif := &domain.CoachNotification{
				UserID:          userID,
				Message:         proactiveMessage,
				Type:            domain.NotificationTypeProactive,
				Priority:        "normal",
				DeliveryChannel: "in_app",
				Status:          "pending",
			}
			if err := s.Repo.CreateNotification(ctx, s.DB, notif); err != nil {
				return nil, err
			}
			return notif, nil
		})
		if ierr != nil {
			res.Failures = append(res.Failures, UserFailure{UserID: userID, Error: ierr.Error()})
			continue
		}

		notificationsCreated.Inc()
		res.Notifications = append(res.Notifications, TriggeredNotification{
			UserID:         userID,
			NotificationID: n.ID,
		})
	}

	res.RunStatus = classifyRun(len(res.Notifications), len(res.Failures))
	span.SetAttributes(
		attribute.Int("notifications.created", len(res.Notifications)),
		attribute.Int("failures", len(res.Failures)),
		attribute.String("run.status", res.RunStatus),
	)

	s.recordRun(ctx, res.RunStatus, start, fetchAttempts, res, "")
	return res, nil
}

// recordRun writes the single audit row for this invocation. A failed
// audit write is logged, never escalated.
func (s *NotifierService) recordRun(ctx context.Context, status string, start time.Time, attempts int, res *CheckUserStatusResult, errMsg string) {
	cronRuns.WithLabelValues(JobCheckUserStatus, status).Inc()

	details, _ := json.Marshal(map[string]any{
		"users_considered":        res.UsersConsidered,
		"triggered_notifications": len(res.Notifications),
		"failures":                len(res.Failures),
		"skipped_no_consent":      len(res.SkippedNoConsent),
		"skipped_recent":          len(res.SkippedRecent),
		"window_start":            res.WindowStart,
		"window_end":              res.WindowEnd,
	})
	run := &domain.CronRun{
		FunctionName: JobCheckUserStatus,
		RunStatus:    status,
		RunTime:      start,
		Details:      string(details),
		DurationMS:   s.now().Sub(start).Milliseconds(),
		Attempts:     attempts,
		ErrorMessage: errMsg,
	}
	if err := s.Repo.CreateCronRun(ctx, s.DB, run); err != nil {
		log.Error().Err(err).Str("job", JobCheckUserStatus).Msg("failed to write cron run record")
	}
}

func (s *NotifierService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *NotifierService) lookbackDays() int {
	if s.LookbackDays > 0 {
		return s.LookbackDays
	}
	return 3
}

// groupByUser partitions logs into per-user sequences, preserving the
// fetch order inside each group and first-seen order across groups. Both
// jobs depend on that iteration order being deterministic.
func groupByUser(logs []domain.InteractionLog) ([]string, map[string][]domain.InteractionLog) {
	order := make([]string, 0)
	groups := make(map[string][]domain.InteractionLog)
	for _, l := range logs {
		if _, seen := groups[l.UserID]; !seen {
			order = append(order, l.UserID)
		}
		groups[l.UserID] = append(groups[l.UserID], l)
	}
	return order, groups
}

// classifyRun maps per-user outcomes onto the three-tier run status:
// all failed → error, mixed → partial_success, otherwise success.
func classifyRun(successes, failures int) string {
	switch {
	case failures > 0 && successes == 0:
		return domain.RunStatusError
	case failures > 0:
		return domain.RunStatusPartialSuccess
	default:
		return domain.RunStatusSuccess
	}
}
