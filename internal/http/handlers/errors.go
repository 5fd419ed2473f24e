// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These are stable, machine-readable codes carried in the error envelope
// alongside the HTTP status. Generic codes mirror status semantics; the
// domain-specific ones cover business outcomes a status alone cannot convey
// (consent refusals, coach availability, cron misconfiguration).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAuthConfig       = "auth_config_error"
	ErrCodeConsentRequired  = "consent_required"
	ErrCodeChatFailed       = "chat_failed"
	ErrCodeAnalysisFailed   = "analysis_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeExportFailed     = "export_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
