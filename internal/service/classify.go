package service

import (
	"encoding/json"
	"errors"
	"net"
	"strings"
)

// ClassifyExtractionError maps a whole-call extraction failure onto the
// service error taxonomy. Auth and parse failures are never retryable, so
// callers must not offer a retry action for them.
func ClassifyExtractionError(err error) *ExternalServiceError {
	if err == nil {
		return nil
	}

	var already *ExternalServiceError
	if errors.As(err, &already) {
		return already
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ExternalServiceError{Kind: KindParseError, Retryable: false, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ExternalServiceError{Kind: KindNetworkError, Retryable: true, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "status 401", "status 403", "unauthorized", "forbidden", "invalid api key", "access token"):
		return &ExternalServiceError{Kind: KindAuthError, Retryable: false, Err: err}
	case containsAny(msg, "status 429", "rate limit", "too many requests", "quota"):
		return &ExternalServiceError{Kind: KindRateLimit, Retryable: true, Err: err}
	case containsAny(msg, "status 500", "status 502", "status 503", "status 504", "unavailable", "overloaded"):
		return &ExternalServiceError{Kind: KindServiceUnavailable, Retryable: true, Err: err}
	case containsAny(msg, "connection refused", "connection reset", "no such host", "timeout", "network"):
		return &ExternalServiceError{Kind: KindNetworkError, Retryable: true, Err: err}
	case containsAny(msg, "invalid response format", "failed to parse", "unmarshal", "invalid json"):
		return &ExternalServiceError{Kind: KindParseError, Retryable: false, Err: err}
	}

	return &ExternalServiceError{Kind: KindUnknownError, Retryable: true, Err: err}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
