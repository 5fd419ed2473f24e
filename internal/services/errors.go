// Package services defines the business logic for the coaching backend:
// the consent gate, the stress-pattern detector, the two scheduled jobs,
// chat coaching, photo analysis, and GDPR export/deletion. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrProfileNotFound indicates the user has no coaching profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists is returned when creating a profile for a user who
	// already has one.
	ErrProfileExists = errors.New("profile already exists")

	// ErrEmptyMessage is returned when a chat request contains an empty message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a chat message exceeds the
	// configured rune limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrConsentRequired is returned when an operation needs LLM processing
	// consent and the user has not granted it. Absence of a consent record
	// maps here as well: the gate fails closed.
	ErrConsentRequired = errors.New("openai_processing consent required")

	// ErrCoachUnavailable wraps LLM provider failures on the chat path.
	ErrCoachUnavailable = errors.New("coach is temporarily unavailable")

	// ErrNotificationNotFound indicates the notification does not exist or
	// is not owned by the caller.
	ErrNotificationNotFound = errors.New("notification not found")
)
