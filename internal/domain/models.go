// Package domain defines the persistence models for the coaching backend:
// user profiles, wellness logs, chat interaction logs, proactive coach
// notifications, weekly coach notes, consent records, and cron run audit
// rows. These types are mapped with GORM and form the core data layer
// of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Notification and note type discriminators written by the scheduled jobs.
const (
	NotificationTypeProactive = "ai_coach_proactive"
	NoteTypeWeeklySummary     = "weekly_summary"
)

// ConsentOpenAIProcessing is the consent category gating any processing of
// user content by the external LLM provider (chat, digest, photo analysis).
const ConsentOpenAIProcessing = "openai_processing"

// Cron run statuses. A run is "partial_success" when some, but not all,
// per-user operations failed.
const (
	RunStatusSuccess        = "success"
	RunStatusPartialSuccess = "partial_success"
	RunStatusError          = "error"
)

// Profile holds the user-editable coaching profile.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: external identity of the owner; unique, one profile per user.
//   - DeletedAt: soft deletion marker (GDPR deletion uses hard deletes instead).
type Profile struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string         `json:"user_id"        gorm:"type:varchar(64);not null;uniqueIndex:ux_profile_user"`
	Name          string         `json:"name"           gorm:"type:varchar(128);not null"`
	GoalWeightKG  float64        `json:"goal_weight_kg"`
	HeightCM      float64        `json:"height_cm"`
	ActivityLevel string         `json:"activity_level" gorm:"type:varchar(32)"`
	Timezone      string         `json:"timezone"       gorm:"type:varchar(64)"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// InteractionLog is one record per chat exchange between a user and the AI
// coach. Rows are written by the chat handler on every exchange and are
// immutable afterwards; the scheduled jobs only ever read them.
//
// CreatedAt carries the wall-clock send time of the exchange. There is no
// ordering guarantee across users.
type InteractionLog struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_interactions_user_time,priority:1"`
	UserMessage string    `json:"user_message" gorm:"type:text;not null"`
	AIResponse  string    `json:"ai_response"  gorm:"type:text"`
	Success     bool      `json:"success"      gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_interactions_user_time,priority:2;index"`
}

// TableName returns the database table name for InteractionLog.
func (InteractionLog) TableName() string { return "interaction_logs" }

// CoachNotification is one proactive outreach event queued for a user.
// Rows are created exclusively by the proactive notifier with status
// "pending"; delivery and the read flag belong to an external delivery
// subsystem.
//
// Invariant: at most one notification of type "ai_coach_proactive" per user
// per rolling 3-day window, enforced by a pre-insert existence check in the
// notifier (not a database constraint, so concurrent runs can race).
type CoachNotification struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	UserID          string    `json:"user_id"          gorm:"type:varchar(64);not null;index:idx_notifications_user_type,priority:1"`
	Message         string    `json:"message"          gorm:"type:text;not null"`
	Type            string    `json:"type"             gorm:"type:varchar(64);not null;index:idx_notifications_user_type,priority:2"`
	Priority        string    `json:"priority"         gorm:"type:varchar(16);not null;default:'normal'"`
	DeliveryChannel string    `json:"delivery_channel" gorm:"type:varchar(32);not null;default:'in_app'"`
	Status          string    `json:"status"           gorm:"type:varchar(16);not null;default:'pending'"`
	Read            bool      `json:"read"             gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at"       gorm:"index"`
}

// TableName returns the database table name for CoachNotification.
func (CoachNotification) TableName() string { return "coach_notifications" }

// CoachNote is one generated note per user, written by the weekly digest
// job with type "weekly_summary". There is intentionally no dedup against
// prior runs: replaying the schedule for the same week accumulates notes.
type CoachNote struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index"`
	Note      string    `json:"note"       gorm:"type:text;not null"`
	Type      string    `json:"type"       gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for CoachNote.
func (CoachNote) TableName() string { return "coach_notes" }

// ConsentRecord tracks a user's grant or withdrawal of one consent type.
// Consent is active iff Granted is true AND WithdrawnAt is null. Absence of
// a record is never implicit consent.
type ConsentRecord struct {
	ID                   string     `json:"id"                     gorm:"type:char(36);primaryKey"`
	UserID               string     `json:"user_id"                gorm:"type:varchar(64);not null;uniqueIndex:ux_consent_user_type,priority:1"`
	ConsentType          string     `json:"consent_type"           gorm:"type:varchar(64);not null;uniqueIndex:ux_consent_user_type,priority:2"`
	Granted              bool       `json:"granted"                gorm:"not null"`
	GrantedAt            time.Time  `json:"granted_at"`
	WithdrawnAt          *time.Time `json:"withdrawn_at,omitempty"`
	PrivacyPolicyVersion string     `json:"privacy_policy_version" gorm:"type:varchar(16)"`
}

// TableName returns the database table name for ConsentRecord.
func (ConsentRecord) TableName() string { return "consent_records" }

// CronRun is an append-only audit row capturing the outcome of one
// scheduled-job invocation. Written exactly once at the end of a run,
// on both the success and the error path.
type CronRun struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	FunctionName string    `json:"function_name" gorm:"type:varchar(64);not null;index"`
	RunStatus    string    `json:"run_status"    gorm:"type:varchar(24);not null"`
	RunTime      time.Time `json:"run_time"`
	Details      string    `json:"details"       gorm:"type:text"`
	DurationMS   int64     `json:"duration_ms"`
	Attempts     int       `json:"attempts"`
	ErrorMessage string    `json:"error_message" gorm:"type:text"`
}

// TableName returns the database table name for CronRun.
func (CronRun) TableName() string { return "cron_runs" }

// MealLog records one meal, either typed in by the user or extracted from a
// photo by the vision model.
type MealLog struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"     gorm:"type:varchar(64);not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	LoggedAt    time.Time `json:"logged_at"   gorm:"index"`
}

// TableName returns the database table name for MealLog.
func (MealLog) TableName() string { return "meal_logs" }

// WorkoutLog records one workout session.
type WorkoutLog struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);not null;index"`
	Activity    string    `json:"activity"     gorm:"type:varchar(128);not null"`
	DurationMin int       `json:"duration_min"`
	Intensity   string    `json:"intensity"    gorm:"type:varchar(16)"`
	LoggedAt    time.Time `json:"logged_at"    gorm:"index"`
}

// TableName returns the database table name for WorkoutLog.
func (WorkoutLog) TableName() string { return "workout_logs" }

// SleepLog records one night of sleep.
type SleepLog struct {
	ID       string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID   string    `json:"user_id"   gorm:"type:varchar(64);not null;index"`
	Hours    float64   `json:"hours"`
	Quality  string    `json:"quality"   gorm:"type:varchar(16)"`
	LoggedAt time.Time `json:"logged_at" gorm:"index"`
}

// TableName returns the database table name for SleepLog.
func (SleepLog) TableName() string { return "sleep_logs" }

// MoodLog records one mood check-in.
type MoodLog struct {
	ID       string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID   string    `json:"user_id"   gorm:"type:varchar(64);not null;index"`
	Mood     string    `json:"mood"      gorm:"type:varchar(32);not null"`
	Energy   int       `json:"energy"`
	Note     string    `json:"note"      gorm:"type:text"`
	LoggedAt time.Time `json:"logged_at" gorm:"index"`
}

// TableName returns the database table name for MoodLog.
func (MoodLog) TableName() string { return "mood_logs" }
