// Package services – stress pattern detector
//
// DetectStressPattern is the pure classification kernel of the proactive
// notifier: it inspects a user's recent chat exchanges and reports whether
// the conversation shows a sustained stress signal. Detection is day-based
// on purpose: a single venting message never triggers outreach, the
// keyword has to recur across distinct days.
package services

import (
	"strings"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// stressKeywords is the fixed indicator list matched case-insensitively as
// substrings against both sides of an exchange.
var stressKeywords = []string{
	"stress", "stressed", "anxious", "anxiety", "overwhelmed",
	"tired", "exhausted", "difficult", "tough", "hard time",
	"struggling", "down", "sad", "depressed", "frustrated",
	"angry", "upset",
}

// stressDayThreshold is the number of distinct flagged days required for a
// positive classification over the lookback window.
const stressDayThreshold = 2

// DetectStressPattern reports whether the given interaction logs show a
// stress pattern: at least two distinct calendar days each containing at
// least one keyword hit. Empty input returns false.
func DetectStressPattern(logs []domain.InteractionLog) bool {
	return CountStressDays(logs) >= stressDayThreshold
}

// CountStressDays returns the number of distinct calendar days on which at
// least one log contains a stress keyword. Days are bucketed by the UTC
// date of the timestamp; no normalization to the user's local timezone is
// applied, so late-night activity can land on the following day.
func CountStressDays(logs []domain.InteractionLog) int {
	days := make(map[string]struct{})
	for _, l := range logs {
		day := l.CreatedAt.UTC().Format("2006-01-02")
		if _, seen := days[day]; seen {
			continue
		}
		if containsStressKeyword(l.UserMessage) || containsStressKeyword(l.AIResponse) {
			days[day] = struct{}{}
		}
	}
	return len(days)
}

// containsStressKeyword reports whether s contains any indicator keyword,
// case-insensitively.
func containsStressKeyword(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, kw := range stressKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
