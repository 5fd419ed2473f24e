// Package services – CoachService (chat and meal-photo analysis)
//
// Every exchange on the chat path is persisted as an interaction log,
// including failed ones: the stress detector reads both sides of the
// conversation, so a user venting at a broken coach still counts. The
// consent gate runs before any content leaves the process.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// coachSystemPrompt frames the model as a supportive wellness coach. Kept
// short; per-user context is not injected here.
const coachSystemPrompt = "You are a supportive fitness and wellness coach. " +
	"Be encouraging, concrete, and brief. Never give medical diagnoses; " +
	"suggest professional help when a message hints at serious distress."

// visionMealPrompt asks the vision model for machine-readable output. The
// reply is parsed as JSON; prose around the JSON object is tolerated.
const visionMealPrompt = "Identify the meal in this photo and estimate its nutrition. " +
	"Reply with a single JSON object with keys: description (string), " +
	"calories (integer), protein_g (number), carbs_g (number), fat_g (number)."

// DefaultMaxMessageRunes bounds a single chat message.
const DefaultMaxMessageRunes = 4000

// CoachLLM is the slice of the text-generation client the coach needs.
type CoachLLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteVision(ctx context.Context, prompt, imageURL string) (string, error)
}

// CoachRepo defines the repository contract required by CoachService.
type CoachRepo interface {
	// CreateInteraction persists one chat exchange, failed or not.
	CreateInteraction(ctx context.Context, db *gorm.DB, userID, userMessage, aiResponse string, success bool) (*domain.InteractionLog, error)

	// CreateMealLog persists one meal extracted from a photo.
	CreateMealLog(ctx context.Context, db *gorm.DB, m *domain.MealLog) error
}

// ChatResult is the outcome of one chat exchange.
type ChatResult struct {
	InteractionID string `json:"interaction_id"`
	Reply         string `json:"reply"`
}

// CoachService implements the AI chat and photo-analysis operations.
type CoachService struct {
	DB      *gorm.DB
	Repo    CoachRepo
	Consent ConsentGate
	LLM     CoachLLM

	// MaxMessageRunes caps a chat message; <= 0 means DefaultMaxMessageRunes.
	MaxMessageRunes int
	// RequestTimeout bounds each LLM call; <= 0 means no extra deadline.
	RequestTimeout time.Duration
}

// NewCoachService constructs a CoachService with the default message cap.
func NewCoachService(db *gorm.DB, r CoachRepo, gate ConsentGate, llm CoachLLM) *CoachService {
	return &CoachService{DB: db, Repo: r, Consent: gate, LLM: llm, MaxMessageRunes: DefaultMaxMessageRunes}
}

// Chat validates the message, checks LLM-processing consent, asks the coach
// model for a reply, and persists the exchange.
//
// On an LLM failure the exchange is still logged with success=false (best
// effort) and ErrCoachUnavailable is returned; the caller never sees the
// provider error text.
func (s *CoachService) Chat(ctx context.Context, userID, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	max := s.MaxMessageRunes
	if max <= 0 {
		max = DefaultMaxMessageRunes
	}
	if utf8.RuneCountInString(message) > max {
		return nil, ErrMessageTooLong
	}

	if !s.Consent.HasConsent(ctx, userID, domain.ConsentOpenAIProcessing) {
		return nil, ErrConsentRequired
	}

	reply, err := s.complete(ctx, coachSystemPrompt, message)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("coach completion failed")
		if _, lerr := s.Repo.CreateInteraction(ctx, s.DB, userID, message, "", false); lerr != nil {
			log.Error().Err(lerr).Str("user_id", userID).Msg("failed to log failed exchange")
		}
		return nil, ErrCoachUnavailable
	}

	rec, err := s.Repo.CreateInteraction(ctx, s.DB, userID, message, reply, true)
	if err != nil {
		return nil, err
	}
	return &ChatResult{InteractionID: rec.ID, Reply: reply}, nil
}

// mealEstimate mirrors the JSON shape requested from the vision model.
type mealEstimate struct {
	Description string  `json:"description"`
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
}

// AnalyzeMealPhoto checks consent, sends the image to the vision model, and
// persists the parsed estimate as a meal log.
func (s *CoachService) AnalyzeMealPhoto(ctx context.Context, userID, imageURL string) (*domain.MealLog, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrEmptyMessage
	}

	if !s.Consent.HasConsent(ctx, userID, domain.ConsentOpenAIProcessing) {
		return nil, ErrConsentRequired
	}

	raw, err := s.completeVision(ctx, visionMealPrompt, imageURL)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("vision completion failed")
		return nil, ErrCoachUnavailable
	}

	est, err := parseMealEstimate(raw)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("unparseable vision reply")
		return nil, ErrCoachUnavailable
	}

	meal := &domain.MealLog{
		UserID:      userID,
		Description: est.Description,
		Calories:    est.Calories,
		ProteinG:    est.ProteinG,
		CarbsG:      est.CarbsG,
		FatG:        est.FatG,
	}
	if err := s.Repo.CreateMealLog(ctx, s.DB, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// parseMealEstimate extracts the JSON object from a model reply, tolerating
// code fences or prose around it.
func parseMealEstimate(raw string) (*mealEstimate, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	var est mealEstimate
	if err := json.Unmarshal([]byte(raw[start:end+1]), &est); err != nil {
		return nil, err
	}
	if strings.TrimSpace(est.Description) == "" {
		return nil, fmt.Errorf("missing description")
	}
	return &est, nil
}

func (s *CoachService) complete(ctx context.Context, system, user string) (string, error) {
	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}
	return s.LLM.Complete(ctx, system, user)
}

func (s *CoachService) completeVision(ctx context.Context, prompt, imageURL string) (string, error) {
	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}
	return s.LLM.CompleteVision(ctx, prompt, imageURL)
}

// LLMSummarizer adapts a CoachLLM into the digest's Summarizer.
type LLMSummarizer struct {
	LLM CoachLLM
}

// Summarize implements Summarizer.
func (a *LLMSummarizer) Summarize(ctx context.Context, transcript string, maxWords int) (string, error) {
	system := fmt.Sprintf(
		"You are a supportive wellness coach writing a weekly recap. "+
			"Summarize the user's week from the transcript below in a warm, "+
			"encouraging tone. Keep it under %d words.", maxWords)
	return a.LLM.Complete(ctx, system, transcript)
}
