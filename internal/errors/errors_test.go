package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("nyt", "slow down")

	if err.Error() != "nyt: slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "nyt: slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("fetch overview: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry_VariousDurations(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		expectedMessage string
	}{
		{
			name:            "zero",
			duration:        0,
			expectedMessage: "openlibrary: rate limited",
		},
		{
			name:            "30 seconds",
			duration:        30 * time.Second,
			expectedMessage: "openlibrary: rate limited (retry after 30s)",
		},
		{
			name:            "1 hour",
			duration:        1 * time.Hour,
			expectedMessage: "openlibrary: rate limited (retry after 1h0m0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("openlibrary", "rate limited", tt.duration)
			if err.Error() != tt.expectedMessage {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expectedMessage)
			}
		})
	}
}

func TestSkipErrorUnwrap(t *testing.T) {
	cause := stdErrors.New("status 404")
	err := fmt.Errorf("enrich: %w", NewSkipError(StageEditionLookup, "9780000000001", cause))

	skipErr, ok := AsSkipError(err)
	if !ok {
		t.Fatalf("AsSkipError returned false for wrapped SkipError")
	}
	if skipErr.Stage != StageEditionLookup {
		t.Fatalf("Stage = %q, want %q", skipErr.Stage, StageEditionLookup)
	}
	if !stdErrors.Is(err, cause) {
		t.Fatalf("errors.Is did not reach the cause through SkipError")
	}

	want := "skipped 9780000000001 at edition_lookup: status 404"
	if skipErr.Error() != want {
		t.Fatalf("Error message = %q, want %q", skipErr.Error(), want)
	}
}

func TestIsSkipErrorFalseForPlainErrors(t *testing.T) {
	if IsSkipError(stdErrors.New("boom")) {
		t.Fatalf("IsSkipError returned true for a plain error")
	}
	if IsSkipError(nil) {
		t.Fatalf("IsSkipError returned true for nil")
	}
}

func TestPolicyString(t *testing.T) {
	if SkipAndContinue.String() != "skip-and-continue" {
		t.Fatalf("SkipAndContinue.String() = %q", SkipAndContinue.String())
	}
	if Policy(7).String() != "policy(7)" {
		t.Fatalf("unknown policy String() = %q", Policy(7).String())
	}
}
