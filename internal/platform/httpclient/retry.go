package httpclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/workstackhq/workstack/internal/platform/logging"
)

// jitterFraction spreads retry delays by ±25% so failing webhook targets do
// not see synchronized retry waves.
const jitterFraction = 0.25

// doWithRetry runs the request up to maxAttempts times with exponential
// backoff between attempts. The body is buffered once and replayed per
// attempt. The response lands in resp instead of a return value so the
// bodyclose linter can see the caller owns the body.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, resp **http.Response) error {
	maxAttempts := c.retryCfg.maxAttempts
	if maxAttempts <= 0 {
		return fmt.Errorf("httpclient: maxAttempts must be >= 1, got %d", maxAttempts)
	}

	payload, err := bufferRequestBody(req)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := c.waitForRetry(ctx, req, attempt, lastErr); err != nil {
				return err
			}
		}
		resetRequestBody(req, payload)

		res, err := c.httpClient.Do(req)
		switch {
		case err != nil && !isRetryable(err):
			return err
		case err != nil:
			lastErr = err
		case !isRetryableStatus(res.StatusCode):
			*resp = res
			return nil
		case attempt == maxAttempts-1:
			// Out of attempts: hand the response back body and all.
			*resp = res
			return fmt.Errorf("HTTP %d from %s", res.StatusCode, c.serviceName)
		default:
			lastErr = fmt.Errorf("HTTP %d from %s", res.StatusCode, c.serviceName)
			drainResponseBody(res)
		}
	}
	return lastErr
}

// bufferRequestBody slurps and closes the body so it can be replayed. A nil
// body stays nil.
func bufferRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	_ = req.Body.Close()

	return bodyBytes, nil
}

func resetRequestBody(req *http.Request, bodyBytes []byte) {
	if bodyBytes == nil {
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	req.ContentLength = int64(len(bodyBytes))
}

// drainResponseBody discards the body so the connection can be reused for
// the next attempt.
func drainResponseBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// waitForRetry logs the upcoming retry at WARN and sleeps out the backoff,
// unless the context dies first.
func (c *Client) waitForRetry(ctx context.Context, req *http.Request, attempt int, lastErr error) error {
	delay := backoff(attempt, c.retryCfg)

	logging.FromContext(ctx).WarnContext(ctx, "retrying HTTP request",
		slog.String("operation", "httpclient.Do"),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("peer_service", c.serviceName),
		slog.Int("attempt", attempt+1),
		slog.Int("max_attempts", c.retryCfg.maxAttempts),
		slog.Duration("backoff", delay),
		slog.Any("error", lastErr),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// backoff computes the delay before retry number attempt (1-indexed):
// initialInterval doubling per attempt, capped at maxInterval, then
// jittered.
func backoff(attempt int, cfg retryConfig) time.Duration {
	delay := float64(cfg.initialInterval) * math.Pow(cfg.multiplier, float64(attempt-1))

	if delay > float64(cfg.maxInterval) {
		delay = float64(cfg.maxInterval)
	}

	jitter := delay * jitterFraction
	delay += jitter * (2*secureRandFloat64() - 1)

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// significandBits is the float64 mantissa width; a random 53-bit integer
// divided by 2^53 gives a uniform float in [0, 1).
const significandBits = 53

// secureRandFloat64 draws from crypto/rand so jitter cannot be predicted or
// accidentally correlated across processes.
func secureRandFloat64() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0
	}
	return float64(binary.BigEndian.Uint64(b[:])>>(64-significandBits)) / float64(uint64(1)<<significandBits)
}

// isRetryable reports whether a transport error is worth another attempt.
// Context cancellation and deadline expiry are final; everything else, a
// refused connection or reset included, gets retried.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// isRetryableStatus treats 5xx and 429 as transient.
func isRetryableStatus(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= http.StatusInternalServerError
}
