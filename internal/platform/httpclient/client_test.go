package httpclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/workstackhq/workstack/internal/platform/config"
	"github.com/workstackhq/workstack/internal/platform/httpclient"
)

func testConfig(baseURL string) *config.ClientConfig {
	return &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       1 * time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestClient spins up an httptest server around handler and builds a
// client pointed at it. tweak, when non-nil, adjusts the config first.
func newTestClient(t *testing.T, handler http.HandlerFunc, tweak func(*config.ClientConfig)) (*httpclient.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	if tweak != nil {
		tweak(cfg)
	}
	return httpclient.New(cfg, "webhooks", nil, testLogger()), srv
}

func get(t *testing.T, client *httpclient.Client, url string) (*http.Response, error) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	return client.Do(context.Background(), req)
}

func TestDo_Success(t *testing.T) {
	t.Parallel()

	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("delivered"))
	}, nil)

	resp, err := get(t, client, srv.URL+"/hooks")
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if body, _ := io.ReadAll(resp.Body); string(body) != "delivered" {
		t.Errorf("body = %q, want %q", body, "delivered")
	}
}

func TestDo_RetriesTransientStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		failStatus   int
		failures     int
		wantAttempts int32
	}{
		{"server error then success", http.StatusInternalServerError, 2, 3},
		{"rate limited then success", http.StatusTooManyRequests, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				if int(attempts.Add(1)) <= tt.failures {
					w.WriteHeader(tt.failStatus)
					return
				}
				w.WriteHeader(http.StatusOK)
			}, nil)

			resp, err := get(t, client, srv.URL+"/hooks")
			if err != nil {
				t.Fatalf("Do() error: %v", err)
			}
			_ = resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
		})
	}
}

func TestDo_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, nil)

	resp, err := get(t, client, srv.URL+"/hooks")
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1; a 400 is the caller's problem, not transient", got)
	}
}

func TestDo_AttemptsExhausted(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
	}, nil)

	resp, err := get(t, client, srv.URL+"/hooks")
	if err == nil {
		t.Fatal("Do() error = nil, want failure after retries ran out")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}

	// The final attempt's response comes back with a readable body.
	if resp == nil {
		t.Fatal("resp = nil, want the last response")
	}
	defer func() { _ = resp.Body.Close() }()
	if body, _ := io.ReadAll(resp.Body); string(body) != "unavailable" {
		t.Errorf("body = %q, want %q", body, "unavailable")
	}
}

func TestDo_ReplaysBodyOnRetry(t *testing.T) {
	t.Parallel()

	var (
		attempts atomic.Int32
		bodies   []string
	)
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/hooks", strings.NewReader(`{"event":"task.created"}`))
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	_ = resp.Body.Close()

	if len(bodies) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(bodies))
	}
	for i, b := range bodies {
		if b != `{"event":"task.created"}` {
			t.Errorf("attempt %d body = %q, want the original payload", i+1, b)
		}
	}
}

func TestDo_IdentityHeaderPropagation(t *testing.T) {
	t.Parallel()

	var gotReqID, gotCorrID string
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
		gotCorrID = r.Header.Get("X-Correlation-ID")
		w.WriteHeader(http.StatusOK)
	}, nil)

	// Without IDs in the context no headers go out.
	resp, err := get(t, client, srv.URL+"/hooks")
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	_ = resp.Body.Close()
	if gotReqID != "" || gotCorrID != "" {
		t.Errorf("headers sent without context IDs: request=%q correlation=%q", gotReqID, gotCorrID)
	}

	// With IDs in the context both headers go out.
	ctx := httpclient.WithRequestID(context.Background(), "req-123")
	ctx = httpclient.WithCorrelationID(ctx, "corr-456")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/hooks", http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err = client.Do(ctx, req)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	_ = resp.Body.Close()

	if gotReqID != "req-123" {
		t.Errorf("X-Request-ID = %q, want %q", gotReqID, "req-123")
	}
	if gotCorrID != "corr-456" {
		t.Errorf("X-Correlation-ID = %q, want %q", gotCorrID, "corr-456")
	}
}

// failOnce tightens the breaker so a single failure opens it and disables
// retries so each Do maps to one upstream request.
func failOnce(cfg *config.ClientConfig) {
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.CircuitBreaker.Timeout = 100 * time.Millisecond
	cfg.Retry.MaxAttempts = 1
}

func TestDo_BreakerOpensAndShortCircuits(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, failOnce)

	if resp, _ := get(t, client, srv.URL+"/hooks"); resp != nil {
		_ = resp.Body.Close()
	}
	before := hits.Load()

	resp, err := get(t, client, srv.URL+"/hooks")
	if resp != nil {
		_ = resp.Body.Close()
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Do() error = %v, want gobreaker.ErrOpenState", err)
	}
	if hits.Load() != before {
		t.Error("open breaker still let a request through to the server")
	}
}

func TestDo_BreakerRecovers(t *testing.T) {
	t.Parallel()

	var failing atomic.Bool
	failing.Store(true)
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, failOnce)

	// Trip the breaker and confirm it is open.
	if resp, _ := get(t, client, srv.URL+"/hooks"); resp != nil {
		_ = resp.Body.Close()
	}
	resp, err := get(t, client, srv.URL+"/hooks")
	if resp != nil {
		_ = resp.Body.Close()
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("breaker not open after failure: %v", err)
	}

	// After the breaker timeout a half-open probe against a healthy
	// upstream closes the circuit again.
	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err = client.Do(context.Background(), mustRequest(t, srv.URL+"/hooks"))
	if err != nil {
		t.Fatalf("Do() after recovery: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d after recovery", resp.StatusCode, http.StatusOK)
	}
}

func mustRequest(t *testing.T, url string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	return req
}

func TestDo_CanceledContext(t *testing.T) {
	t.Parallel()

	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/hooks", http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err := client.Do(ctx, req)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err == nil {
		t.Fatal("Do() error = nil, want a context error")
	}
}

func TestClient_Name(t *testing.T) {
	t.Parallel()

	client := httpclient.New(testConfig("http://localhost"), "webhooks", nil, testLogger())

	if got := client.Name(); got != "webhooks" {
		t.Errorf("Name() = %q, want %q", got, "webhooks")
	}
}

func TestClient_HealthCheck(t *testing.T) {
	t.Parallel()

	t.Run("closed breaker is healthy", func(t *testing.T) {
		t.Parallel()

		client := httpclient.New(testConfig("http://localhost"), "webhooks", nil, testLogger())
		if err := client.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck() = %v, want nil", err)
		}
	})

	t.Run("open breaker reports failing", func(t *testing.T) {
		t.Parallel()

		client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, failOnce)
		if resp, _ := get(t, client, srv.URL+"/hooks"); resp != nil {
			_ = resp.Body.Close()
		}

		err := client.HealthCheck(context.Background())
		if err == nil || !strings.Contains(err.Error(), "failing") {
			t.Errorf("HealthCheck() = %v, want a failing report", err)
		}
	})

	t.Run("half-open breaker reports degraded", func(t *testing.T) {
		t.Parallel()

		client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, failOnce)
		if resp, _ := get(t, client, srv.URL+"/hooks"); resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(150 * time.Millisecond)

		err := client.HealthCheck(context.Background())
		if err == nil || !strings.Contains(err.Error(), "degraded") {
			t.Errorf("HealthCheck() = %v, want a degraded report", err)
		}
	})
}
