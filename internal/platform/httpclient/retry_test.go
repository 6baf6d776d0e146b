package httpclient

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestBackoff_GrowsPerAttempt(t *testing.T) {
	t.Parallel()

	cfg := retryConfig{
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Minute,
		multiplier:      2.0,
	}

	// Sample each attempt repeatedly so jitter cannot hide a bad exponent.
	for attempt := 1; attempt <= 4; attempt++ {
		base := float64(cfg.initialInterval) * math.Pow(cfg.multiplier, float64(attempt-1))
		lo := time.Duration(base * (1 - jitterFraction))
		hi := time.Duration(base * (1 + jitterFraction))

		for range 200 {
			if d := backoff(attempt, cfg); d < lo || d > hi {
				t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, d, lo, hi)
			}
		}
	}
}

func TestBackoff_NeverExceedsMaxInterval(t *testing.T) {
	t.Parallel()

	cfg := retryConfig{
		initialInterval: 50 * time.Millisecond,
		maxInterval:     200 * time.Millisecond,
		multiplier:      2.0,
	}

	// A late attempt would be far past the cap without clamping.
	hi := time.Duration(float64(cfg.maxInterval) * (1 + jitterFraction))
	for range 200 {
		if d := backoff(12, cfg); d > hi {
			t.Fatalf("delay %v exceeds capped interval %v", d, hi)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "net error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "generic error", err: errors.New("something failed"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		want       bool
	}{
		{name: "200 OK", statusCode: http.StatusOK, want: false},
		{name: "400 Bad Request", statusCode: http.StatusBadRequest, want: false},
		{name: "404 Not Found", statusCode: http.StatusNotFound, want: false},
		{name: "422 Unprocessable Entity", statusCode: http.StatusUnprocessableEntity, want: false},
		{name: "429 Too Many Requests", statusCode: http.StatusTooManyRequests, want: true},
		{name: "500 Internal Server Error", statusCode: http.StatusInternalServerError, want: true},
		{name: "502 Bad Gateway", statusCode: http.StatusBadGateway, want: true},
		{name: "503 Service Unavailable", statusCode: http.StatusServiceUnavailable, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isRetryableStatus(tt.statusCode); got != tt.want {
				t.Errorf("isRetryableStatus(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}

func TestSecureRandFloat64_InRange(t *testing.T) {
	t.Parallel()

	for range 1000 {
		if v := secureRandFloat64(); v < 0 || v >= 1 {
			t.Fatalf("secureRandFloat64() = %v, want [0, 1)", v)
		}
	}
}
