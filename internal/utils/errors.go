package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken         = errors.New("INVALID_TOKEN")
	ErrSessionNotFound      = errors.New("SESSION_NOT_FOUND")
	ErrUnknownField         = errors.New("UNKNOWN_FIELD")
	ErrInvalidFieldValue    = errors.New("INVALID_FIELD_VALUE")
	ErrInvalidSite          = errors.New("INVALID_SITE")
	ErrSubmissionInProgress = errors.New("SUBMISSION_IN_PROGRESS")
	ErrSubmissionNotFound   = errors.New("SUBMISSION_NOT_FOUND")
	ErrAuditUnavailable     = errors.New("AUDIT_UNAVAILABLE")
)
