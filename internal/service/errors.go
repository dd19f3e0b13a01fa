package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDebtNotFound        = errors.New("debt not found")
	ErrDebtAlreadySettled  = errors.New("debt already settled")
	ErrAccountLimit        = errors.New("account limit reached")
	ErrAccountTypeTaken    = errors.New("an account of this type already exists")
	ErrDuplicateTitle      = errors.New("an account with this title already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user already exists")

	// ErrNoValidTransactions is returned when every item in an extraction
	// batch is filtered out before writing.
	ErrNoValidTransactions = errors.New("no valid transactions found")

	// ErrConfirmationRequired gates large-amount intents until the caller
	// resubmits with the confirmation flag set.
	ErrConfirmationRequired = errors.New("large amount requires confirmation")
)

// ValidationError reports malformed input. It is never retried and surfaces
// immediately to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// DuplicateError reports that the duplicate guard suppressed a write because
// a matching transaction already exists within the detection window. It is
// informational, not a failure.
type DuplicateError struct {
	ExistingID string
}

func (e *DuplicateError) Error() string {
	return "this transaction may already exist"
}

// RetryExhaustedError reports a transient persistence failure that survived
// the bounded retry policy. The core performs no further automatic retries.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// ServiceErrorKind classifies failures of the external extraction/chat
// service.
type ServiceErrorKind string

const (
	KindServiceUnavailable ServiceErrorKind = "service_unavailable"
	KindRateLimit          ServiceErrorKind = "rate_limit"
	KindNetworkError       ServiceErrorKind = "network_error"
	KindAuthError          ServiceErrorKind = "auth_error"
	KindParseError         ServiceErrorKind = "parse_error"
	KindUnknownError       ServiceErrorKind = "unknown_error"
)

// ExternalServiceError wraps an AI/extraction failure with its classification.
// Retryable controls whether the caller may offer a retry action; auth and
// parse errors are never retryable.
type ExternalServiceError struct {
	Kind      ServiceErrorKind
	Retryable bool
	Err       error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("extraction service error (%s): %v", e.Kind, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// CleanupError wraps a failure of the best-effort category cleanup sweep.
// It is always logged and swallowed, never propagated to the operation that
// triggered the sweep.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("category cleanup failed: %v", e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
