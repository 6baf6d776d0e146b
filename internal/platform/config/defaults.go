package config

const (
	defaultServerPort = 8080

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"store.path": "workstack.db",

		"cache.enabled": false,
		"cache.addr":    "localhost:6379",
		"cache.db":      0,
		"cache.ttl":     "5m",

		"pipeline.slow_threshold": "500ms",

		"webhook.enabled":                                false,
		"webhook.path":                                   "/events",
		"webhook.client.base_url":                        "http://localhost:8081",
		"webhook.client.timeout":                         "30s",
		"webhook.client.retry.max_attempts":              defaultRetryMaxAttempts,
		"webhook.client.retry.initial_interval":          "100ms",
		"webhook.client.retry.max_interval":              "10s",
		"webhook.client.retry.multiplier":                defaultRetryMultiplier,
		"webhook.client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"webhook.client.circuit_breaker.timeout":         "30s",
		"webhook.client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"webhook.client.rate_limit.requests_per_second":  0,
		"webhook.client.rate_limit.burst_size":           1,

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
