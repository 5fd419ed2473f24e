package services

import (
	"testing"
	"time"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// logAt builds one interaction log with the given UTC timestamp and texts.
func logAt(ts time.Time, userMsg, aiResp string) domain.InteractionLog {
	return domain.InteractionLog{UserID: "u1", UserMessage: userMsg, AIResponse: aiResp, CreatedAt: ts}
}

func day(d int, hour int) time.Time {
	return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
}

func TestDetectStressPattern_TwoDistinctDays(t *testing.T) {
	logs := []domain.InteractionLog{
		logAt(day(1, 9), "feeling stressed about work", ""),
		logAt(day(2, 21), "still so anxious", ""),
	}
	if !DetectStressPattern(logs) {
		t.Fatal("expected pattern for two distinct stressful days")
	}
}

func TestDetectStressPattern_SameDayManyHits(t *testing.T) {
	// Three stressful messages, all on the same calendar day: below threshold.
	logs := []domain.InteractionLog{
		logAt(day(1, 8), "so stressed", ""),
		logAt(day(1, 12), "overwhelmed by everything", ""),
		logAt(day(1, 23), "exhausted and sad", ""),
	}
	if DetectStressPattern(logs) {
		t.Fatal("one calendar day must not trigger the pattern")
	}
}

func TestDetectStressPattern_CaseInsensitive(t *testing.T) {
	logs := []domain.InteractionLog{
		logAt(day(3, 10), "I am SO STRESSED", ""),
		logAt(day(4, 10), "Feeling Anxious again", ""),
	}
	if !DetectStressPattern(logs) {
		t.Fatal("keyword matching must be case-insensitive")
	}
}

func TestDetectStressPattern_AIResponseCounts(t *testing.T) {
	// Keyword appearing only in the coach's reply still marks the day.
	logs := []domain.InteractionLog{
		logAt(day(5, 9), "how was my week?", "it sounds like you had a hard time"),
		logAt(day(6, 9), "ok", "you seem overwhelmed lately"),
	}
	if !DetectStressPattern(logs) {
		t.Fatal("keywords in the AI response must count")
	}
}

func TestDetectStressPattern_SubstringMatch(t *testing.T) {
	// "down" matches inside "download"; substring semantics are intentional.
	logs := []domain.InteractionLog{
		logAt(day(7, 9), "the download failed", ""),
		logAt(day(8, 9), "downtown was busy", ""),
	}
	if !DetectStressPattern(logs) {
		t.Fatal("substring matching is the contract, even with false positives")
	}
}

func TestDetectStressPattern_UTCBoundary(t *testing.T) {
	// 23:59 and 00:01 around a UTC midnight are two distinct days.
	logs := []domain.InteractionLog{
		logAt(time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC), "tired of this", ""),
		logAt(time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC), "still tired", ""),
	}
	if !DetectStressPattern(logs) {
		t.Fatal("UTC calendar days on either side of midnight must both count")
	}
}

func TestDetectStressPattern_NoKeywords(t *testing.T) {
	logs := []domain.InteractionLog{
		logAt(day(1, 9), "great run today", "well done!"),
		logAt(day(2, 9), "hit my protein goal", "nice"),
	}
	if DetectStressPattern(logs) {
		t.Fatal("no keywords must mean no pattern")
	}
}

func TestDetectStressPattern_Empty(t *testing.T) {
	if DetectStressPattern(nil) {
		t.Fatal("empty input must not trigger")
	}
	if got := CountStressDays(nil); got != 0 {
		t.Fatalf("CountStressDays(nil) = %d, want 0", got)
	}
}

func TestCountStressDays(t *testing.T) {
	logs := []domain.InteractionLog{
		logAt(day(1, 9), "stressed", ""),
		logAt(day(1, 15), "anxious", ""), // same day, counted once
		logAt(day(2, 9), "fine", ""),
		logAt(day(3, 9), "frustrated", ""),
	}
	if got := CountStressDays(logs); got != 2 {
		t.Fatalf("CountStressDays = %d, want 2", got)
	}
}
