// Package services – DigestService (generateWeeklyDigest)
//
// The weekly digest is the second scheduled job. It pulls a week of
// successful chat exchanges, groups them by user, asks the external
// summarizer for a short supportive recap per user, and persists one coach
// note each. Users registered in the system but silent during the window
// get a fixed "no activity" note without a summarizer call.
//
// Unlike the notifier, only the summarization call is retried; the note
// insert is attempted once and a failure is attributed to the user. There
// is also no dedup against prior runs; replaying the schedule for the
// same week accumulates notes. Both behaviors are preserved deliberately.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// JobWeeklyDigest is the audit/rate-limit name of the weekly digest job.
const JobWeeklyDigest = "generateWeeklyDigest"

// noActivityNote is the fixed note for users with zero logs in the window.
const noActivityNote = "No activity recorded this week."

// Summarizer is the external text-generation dependency of the digest.
type Summarizer interface {
	// Summarize turns a per-user transcript into a short supportive recap.
	// maxWords is a hint passed through to the model prompt.
	Summarize(ctx context.Context, transcript string, maxWords int) (string, error)
}

// DigestUserResult reports the outcome for one user in a digest run.
type DigestUserResult struct {
	UserID     string `json:"user_id"`
	NoteID     string `json:"note_id"`
	Summarized bool   `json:"summarized"` // false for the fixed no-activity note
}

// WeeklyDigestResult is the operational summary of one digest run.
type WeeklyDigestResult struct {
	UsersConsidered int
	Results         []DigestUserResult
	Failures        []UserFailure
	RunStatus       string
	WindowStart     time.Time
	WindowEnd       time.Time
}

// DigestRepo defines the repository contract required by DigestService.
type DigestRepo interface {
	// ListSuccessfulInteractionsSince returns the week's successful
	// exchanges, ascending by timestamp.
	ListSuccessfulInteractionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.InteractionLog, error)

	// ListProfileUserIDs returns every registered user, so silent users
	// still receive a no-activity note.
	ListProfileUserIDs(ctx context.Context, db *gorm.DB) ([]string, error)

	// CreateNote inserts one coach note (no dedup).
	CreateNote(ctx context.Context, db *gorm.DB, userID, note, noteType string) (*domain.CoachNote, error)

	// CreateCronRun appends the per-invocation audit row.
	CreateCronRun(ctx context.Context, db *gorm.DB, run *domain.CronRun) error
}

// DigestService runs the weekly digest job.
type DigestService struct {
	DB         *gorm.DB
	Repo       DigestRepo
	Summarizer Summarizer

	// LookbackDays is the log window; <= 0 means 7.
	LookbackDays int
	// EntryRunes caps each message/response in the transcript; <= 0 means 200.
	EntryRunes int
	// MaxWordHint is the recap length requested from the summarizer; <= 0 means 200.
	MaxWordHint int

	// Now and Sleep are test seams; nil means time.Now / time.Sleep.
	Now   func() time.Time
	Sleep SleepFunc
}

// NewDigestService constructs a DigestService with the default 7-day
// window and 200-rune transcript entries.
func NewDigestService(db *gorm.DB, r DigestRepo, sum Summarizer) *DigestService {
	return &DigestService{DB: db, Repo: r, Summarizer: sum, LookbackDays: 7, EntryRunes: 200, MaxWordHint: 200}
}

// GenerateWeeklyDigest executes one run of the weekly digest.
//
// The bulk log fetch is retried and its exhaustion aborts the run with an
// error-status audit row. Per user, a summarization failure (after its own
// retries) or a note-insert failure is recorded and the batch continues.
func (s *DigestService) GenerateWeeklyDigest(ctx context.Context) (*WeeklyDigestResult, error) {
	tr := otel.Tracer("services/DigestService")
	ctx, span := tr.Start(ctx, "GenerateWeeklyDigest",
		trace.WithAttributes(attribute.Int("lookback_days", s.lookbackDays())),
	)
	defer span.End()

	start := s.now()
	since := start.AddDate(0, 0, -s.lookbackDays())

	res := &WeeklyDigestResult{
		Results:     []DigestUserResult{},
		Failures:    []UserFailure{},
		WindowStart: since,
		WindowEnd:   start,
	}

	fetchAttempts := 0
	logs, err := Retry(ctx, DefaultRetryAttempts, DefaultRetryDelays, s.Sleep, func(ctx context.Context) ([]domain.InteractionLog, error) {
		fetchAttempts++
		return s.Repo.ListSuccessfulInteractionsSince(ctx, s.DB, since)
	})
	if err != nil {
		s.recordRun(ctx, domain.RunStatusError, start, fetchAttempts, res, err.Error())
		return nil, err
	}

	users, err := s.Repo.ListProfileUserIDs(ctx, s.DB)
	if err != nil {
		s.recordRun(ctx, domain.RunStatusError, start, fetchAttempts, res, err.Error())
		return nil, err
	}

	_, groups := groupByUser(logs)
	res.UsersConsidered = len(users)
	span.SetAttributes(attribute.Int("users.considered", len(users)))

	for _, userID := range users {
		userLogs := groups[userID]

		note := noActivityNote
		summarized := false
		if len(userLogs) > 0 {
			transcript := s.buildTranscript(userLogs)
			summary, serr := Retry(ctx, DefaultRetryAttempts, DefaultRetryDelays, s.Sleep, func(ctx context.Context) (string, error) {
				return s.Summarizer.Summarize(ctx, transcript, s.maxWordHint())
			})
			if serr != nil {
				res.Failures = append(res.Failures, UserFailure{UserID: userID, Error: serr.Error()})
				continue
			}
			note = summary
			summarized = true
		}

		// Note inserts are deliberately not retried; a transient storage
		// blip surfaces as a per-user failure.
		rec, ierr := s.Repo.CreateNote(ctx, s.DB, userID, note, domain.NoteTypeWeeklySummary)
		if ierr != nil {
			res.Failures = append(res.Failures, UserFailure{UserID: userID, Error: ierr.Error()})
			continue
		}

		notesCreated.Inc()
		res.Results = append(res.Results, DigestUserResult{
			UserID:     userID,
			NoteID:     rec.ID,
			Summarized: summarized,
		})
	}

	res.RunStatus = classifyRun(len(res.Results), len(res.Failures))
	span.SetAttributes(
		attribute.Int("notes.created", len(res.Results)),
		attribute.Int("failures", len(res.Failures)),
		attribute.String("run.status", res.RunStatus),
	)

	s.recordRun(ctx, res.RunStatus, start, fetchAttempts, res, "")
	return res, nil
}

// buildTranscript flattens a user's week of exchanges into a bounded
// plain-text transcript, clipping each side of an exchange to EntryRunes.
func (s *DigestService) buildTranscript(logs []domain.InteractionLog) string {
	limit := s.EntryRunes
	if limit <= 0 {
		limit = 200
	}
	var b strings.Builder
	for _, l := range logs {
		fmt.Fprintf(&b, "[%s] User: %s\n", l.CreatedAt.UTC().Format("2006-01-02"), clipRunes(l.UserMessage, limit))
		if l.AIResponse != "" {
			fmt.Fprintf(&b, "Coach: %s\n", clipRunes(l.AIResponse, limit))
		}
	}
	return b.String()
}

// clipRunes truncates s to at most max runes.
func clipRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// recordRun writes the single audit row for this invocation. A failed
// audit write is logged, never escalated.
func (s *DigestService) recordRun(ctx context.Context, status string, start time.Time, attempts int, res *WeeklyDigestResult, errMsg string) {
	cronRuns.WithLabelValues(JobWeeklyDigest, status).Inc()

	details, _ := json.Marshal(map[string]any{
		"users_considered": res.UsersConsidered,
		"notes_created":    len(res.Results),
		"failures":         len(res.Failures),
		"window_start":     res.WindowStart,
		"window_end":       res.WindowEnd,
	})
	run := &domain.CronRun{
		FunctionName: JobWeeklyDigest,
		RunStatus:    status,
		RunTime:      start,
		Details:      string(details),
		DurationMS:   s.now().Sub(start).Milliseconds(),
		Attempts:     attempts,
		ErrorMessage: errMsg,
	}
	if err := s.Repo.CreateCronRun(ctx, s.DB, run); err != nil {
		log.Error().Err(err).Str("job", JobWeeklyDigest).Msg("failed to write cron run record")
	}
}

func (s *DigestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DigestService) lookbackDays() int {
	if s.LookbackDays > 0 {
		return s.LookbackDays
	}
	return 7
}

func (s *DigestService) maxWordHint() int {
	if s.MaxWordHint > 0 {
		return s.MaxWordHint
	}
	return 200
}
