package config

import (
	"strings"
	"time"
)

// RateLimitConfig configures the Redis-backed request limiter
type RateLimitConfig struct {
	Enabled           bool
	WindowSeconds     int
	DefaultLimit      int
	DefaultBurst      int
	AnonymousLimit    int
	AnonymousBurst    int
	RedisPrefix       string
	EndpointOverrides map[string]EndpointRateLimitConfig
}

// EndpointRateLimitConfig overrides the defaults for a single endpoint.
// Zero limits fall back to the defaults; bursts >= 0 are taken as-is.
type EndpointRateLimitConfig struct {
	AuthenticatedLimit int
	AuthenticatedBurst int
	AnonymousLimit     int
	AnonymousBurst     int
	WindowSeconds      int
}

// Window returns the default window duration
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

func loadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
		WindowSeconds:  getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		DefaultLimit:   getEnvAsInt("RATE_LIMIT_DEFAULT_LIMIT", 60),
		DefaultBurst:   getEnvAsInt("RATE_LIMIT_DEFAULT_BURST", 10),
		AnonymousLimit: getEnvAsInt("RATE_LIMIT_ANON_LIMIT", 20),
		AnonymousBurst: getEnvAsInt("RATE_LIMIT_ANON_BURST", 5),
		RedisPrefix:    getEnv("RATE_LIMIT_PREFIX", "rl"),
		EndpointOverrides: map[string]EndpointRateLimitConfig{
			// login and register are the usual brute-force targets
			"/api/v1/auth/login":    {AnonymousLimit: 10, AnonymousBurst: 0, WindowSeconds: 60},
			"/api/v1/auth/register": {AnonymousLimit: 5, AnonymousBurst: 0, WindowSeconds: 60},
		},
	}

	// RATE_LIMIT_BOOKING_LIMIT tightens the booking mutation endpoints
	if limit := getEnvAsInt("RATE_LIMIT_BOOKING_LIMIT", 0); limit > 0 {
		for _, endpoint := range strings.Split(getEnv("RATE_LIMIT_BOOKING_ENDPOINTS", "/api/v1/bookings"), ",") {
			cfg.EndpointOverrides[strings.TrimSpace(endpoint)] = EndpointRateLimitConfig{AuthenticatedLimit: limit}
		}
	}

	return cfg
}
