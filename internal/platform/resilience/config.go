package resilience

import "time"

// CircuitBreakerConfig tunes a CircuitBreaker. Values arrive from env
// config, so run them through NormalizeCircuitBreakerConfig before use.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// NormalizeCircuitBreakerConfig replaces missing or nonsensical fields with
// working values so a misconfigured breaker can still trip and recover.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 15 * time.Second
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = 2
	}
	return cfg
}
