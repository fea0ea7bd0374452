package ratelimit

import "time"

// Config holds rate limiting and retry configuration
type Config struct {
	RequestsPerSecond float64       `json:"requestsPerSecond"`
	Burst             int           `json:"burst"`
	MaxRetries        int           `json:"maxRetries"`
	InitialBackoff    time.Duration `json:"initialBackoff"`
	MaxBackoff        time.Duration `json:"maxBackoff"`
}

// DefaultConfig returns the default rate limit configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             10,
		MaxRetries:        2,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
	}
}

// SingleAttempt returns a config that never retries. Callers that own
// their fallback use it so a failure surfaces after one request.
func SingleAttempt(requestsPerSecond float64) Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	if requestsPerSecond > 0 {
		cfg.RequestsPerSecond = requestsPerSecond
		cfg.Burst = int(requestsPerSecond)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	return cfg
}
