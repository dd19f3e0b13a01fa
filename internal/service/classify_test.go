package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyExtractionError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      ServiceErrorKind
		retryable bool
	}{
		{"unauthorized", errors.New("request failed with status 401: unauthorized"), KindAuthError, false},
		{"forbidden", errors.New("status 403 forbidden"), KindAuthError, false},
		{"rate limited", errors.New("status 429: too many requests"), KindRateLimit, true},
		{"quota", errors.New("monthly quota exceeded"), KindRateLimit, true},
		{"server error", errors.New("status 503 service unavailable"), KindServiceUnavailable, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9443: connection refused"), KindNetworkError, true},
		{"net.Error", timeoutErr{}, KindNetworkError, true},
		{"bad json", &json.SyntaxError{}, KindParseError, false},
		{"unmarshal text", errors.New("failed to parse model output: invalid json"), KindParseError, false},
		{"unknown", errors.New("something odd"), KindUnknownError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyExtractionError(tt.err)
			if got.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.kind)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestClassifyPassesThroughExisting(t *testing.T) {
	orig := &ExternalServiceError{Kind: KindAuthError, Retryable: false, Err: errors.New("token expired")}
	wrapped := fmt.Errorf("extract: %w", orig)

	got := ClassifyExtractionError(wrapped)
	if got != orig {
		t.Error("already classified errors should be returned as-is")
	}
}

func TestClassifyNil(t *testing.T) {
	if got := ClassifyExtractionError(nil); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
