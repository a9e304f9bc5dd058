package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/seatshare/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		WindowSeconds:  60,
		DefaultLimit:   100,
		DefaultBurst:   10,
		AnonymousLimit: 30,
		AnonymousBurst: 5,
		RedisPrefix:    "rl",
	}
}

func TestNewLimiter(t *testing.T) {
	client, _ := redismock.NewClientMock()
	cfg := testConfig()

	limiter := NewLimiter(client, cfg)

	assert.NotNil(t, limiter.client)
	assert.NotNil(t, limiter.script)
	assert.NotEmpty(t, limiter.script.Hash())
	assert.True(t, limiter.Enabled())
	assert.Equal(t, cfg.RedisPrefix, limiter.cfg.RedisPrefix)
}

func TestWithNow(t *testing.T) {
	client, _ := redismock.NewClientMock()
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	limiter := NewLimiter(client, testConfig()).WithNow(func() time.Time { return fixed })

	assert.Equal(t, fixed, limiter.now())
}

func TestRuleFor_Defaults(t *testing.T) {
	client, _ := redismock.NewClientMock()
	cfg := testConfig()
	limiter := NewLimiter(client, cfg)

	auth := limiter.RuleFor("/api/v1/rides", IdentityAuthenticated)
	assert.Equal(t, Rule{Limit: 100, Burst: 10, Window: time.Minute}, auth)

	anon := limiter.RuleFor("/api/v1/rides", IdentityAnonymous)
	assert.Equal(t, Rule{Limit: 30, Burst: 5, Window: time.Minute}, anon)
}

func TestRuleFor_EndpointOverrides(t *testing.T) {
	tests := []struct {
		name     string
		identity IdentityType
		override config.EndpointRateLimitConfig
		want     Rule
	}{
		{
			name:     "authenticated override",
			identity: IdentityAuthenticated,
			override: config.EndpointRateLimitConfig{AuthenticatedLimit: 200, AuthenticatedBurst: 20, WindowSeconds: 120},
			want:     Rule{Limit: 200, Burst: 20, Window: 120 * time.Second},
		},
		{
			name:     "anonymous override",
			identity: IdentityAnonymous,
			override: config.EndpointRateLimitConfig{AnonymousLimit: 10, AnonymousBurst: 2, WindowSeconds: 30},
			want:     Rule{Limit: 10, Burst: 2, Window: 30 * time.Second},
		},
		{
			name:     "window only keeps default limit and zeroes burst",
			identity: IdentityAuthenticated,
			override: config.EndpointRateLimitConfig{WindowSeconds: 300},
			want:     Rule{Limit: 100, Burst: 0, Window: 300 * time.Second},
		},
		{
			name:     "zero window keeps default window",
			identity: IdentityAuthenticated,
			override: config.EndpointRateLimitConfig{AuthenticatedLimit: 50},
			want:     Rule{Limit: 50, Burst: 0, Window: time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := redismock.NewClientMock()
			cfg := testConfig()
			cfg.EndpointOverrides = map[string]config.EndpointRateLimitConfig{"/api/v1/auth/login": tt.override}

			rule := NewLimiter(client, cfg).RuleFor("/api/v1/auth/login", tt.identity)

			assert.Equal(t, tt.want, rule)
		})
	}
}

func TestRuleFor_OverrideOnlyAppliesToItsEndpoint(t *testing.T) {
	client, _ := redismock.NewClientMock()
	cfg := testConfig()
	cfg.EndpointOverrides = map[string]config.EndpointRateLimitConfig{"/api/v1/bookings": {AuthenticatedLimit: 5}}

	rule := NewLimiter(client, cfg).RuleFor("/api/v1/rides", IdentityAuthenticated)

	assert.Equal(t, cfg.DefaultLimit, rule.Limit)
}

func TestRuleFor_NegativeBurstClampedToZero(t *testing.T) {
	client, _ := redismock.NewClientMock()
	cfg := testConfig()
	cfg.DefaultBurst = -5

	rule := NewLimiter(client, cfg).RuleFor("/api/v1/rides", IdentityAuthenticated)

	assert.Equal(t, 0, rule.Burst)
}

func TestAllow_Bypass(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		rule    Rule
	}{
		{name: "disabled limiter", enabled: false, rule: Rule{Limit: 100, Burst: 10, Window: time.Minute}},
		{name: "zero limit", enabled: true, rule: Rule{Limit: 0, Window: time.Minute}},
		{name: "negative limit", enabled: true, rule: Rule{Limit: -1, Window: time.Minute}},
		{name: "disabled with zero window", enabled: false, rule: Rule{Limit: 30, Burst: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no expectations: any Redis call would fail the Allow
			client, _ := redismock.NewClientMock()
			cfg := testConfig()
			cfg.Enabled = tt.enabled

			result, err := NewLimiter(client, cfg).Allow(context.Background(), "/api/v1/bookings", "user-1", tt.rule, IdentityAuthenticated)

			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, tt.rule.Limit, result.Remaining)
			assert.Equal(t, tt.rule.Limit, result.Limit)
			assert.Equal(t, "user-1", result.IdentityKey)
			assert.Equal(t, "/api/v1/bookings", result.EndpointKey)
			assert.Equal(t, IdentityAuthenticated, result.IdentityType)
			assert.Zero(t, result.RetryAfter)
		})
	}
}

func TestAllow_RedisErrorReturned(t *testing.T) {
	client, _ := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())

	rule := Rule{Limit: 10, Window: time.Minute}
	result, err := limiter.Allow(context.Background(), "/api/v1/bookings", "user-1", rule, IdentityAuthenticated)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit script")
	assert.True(t, result.Allowed)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.0000000000", formatFloat(0))
	assert.Equal(t, "1.5000000000", formatFloat(1.5))
	assert.Equal(t, "12345.6789000000", formatFloat(12345.6789))
}

func TestToInt(t *testing.T) {
	tests := []struct {
		input  interface{}
		expect int
	}{
		{int64(42), 42},
		{99, 99},
		{"123", 123},
		{"abc", 0},
		{float64(7.9), 7},
		{nil, 0},
		{true, 0},
		{int64(-5), -5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, toInt(tt.input), "input %v", tt.input)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		input  interface{}
		expect float64
	}{
		{float64(3.14), 3.14},
		{int64(10), 10},
		{20, 20},
		{"2.718", 2.718},
		{"xyz", 0},
		{nil, 0},
		{false, 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expect, toFloat(tt.input), 0.0001, "input %v", tt.input)
	}
}
