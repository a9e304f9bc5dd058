package resilience

import (
	"time"

	"github.com/richxcame/seatshare/pkg/config"
)

// BuildSettings produces breaker Settings from the cache tuning knobs,
// substituting defaults for unset values
func BuildSettings(name string, cfg config.CacheConfig) Settings {
	interval := time.Duration(cfg.BreakerIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	timeout := time.Duration(cfg.BreakerTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	failureThreshold := cfg.BreakerFailureThreshold
	if failureThreshold <= 0 {
		failureThreshold = 5
	}

	successThreshold := cfg.BreakerSuccessThreshold
	if successThreshold <= 0 {
		successThreshold = 1
	}

	return Settings{
		Name:             name,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: uint32(failureThreshold),
		SuccessThreshold: uint32(successThreshold),
	}
}
