package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/seatshare/pkg/config"
)

// IdentityType distinguishes callers with a verified token from anonymous ones
type IdentityType int

const (
	IdentityAnonymous IdentityType = iota
	IdentityAuthenticated
)

// Rule is the effective limit for one endpoint and identity type.
// Limit requests are refilled evenly over Window; Burst adds headroom on top.
type Rule struct {
	Limit  int
	Burst  int
	Window time.Duration
}

// Result reports the outcome of a single Allow call
type Result struct {
	Allowed      bool
	Remaining    int
	RetryAfter   time.Duration
	Limit        int
	Window       time.Duration
	ResetAfter   time.Duration
	IdentityKey  string
	EndpointKey  string
	IdentityType IdentityType
}

// token bucket kept in a hash: tokens and last refill timestamp
const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

tokens = math.min(capacity, tokens + math.max(0, now - ts) * rate)

local allowed = 0
local retry_after = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after = (1 - tokens) / rate
end

redis.call("HSET", key, "tokens", tostring(tokens), "ts", tostring(now))
redis.call("EXPIRE", key, ttl)

return {allowed, tostring(tokens), tostring(retry_after), tostring((capacity - tokens) / rate)}
`

// Limiter enforces per-identity request rates in Redis
type Limiter struct {
	client redis.UniversalClient
	cfg    config.RateLimitConfig
	script *redis.Script
	now    func() time.Time
}

// NewLimiter creates a limiter backed by client
func NewLimiter(client redis.UniversalClient, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(tokenBucketScript),
		now:    time.Now,
	}
}

// WithNow overrides the clock, for tests
func (l *Limiter) WithNow(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Enabled reports whether limiting is switched on
func (l *Limiter) Enabled() bool {
	return l.cfg.Enabled
}

// RuleFor resolves the rule for endpoint, applying any configured override
func (l *Limiter) RuleFor(endpoint string, identity IdentityType) Rule {
	rule := Rule{Window: l.cfg.Window()}
	if identity == IdentityAuthenticated {
		rule.Limit = l.cfg.DefaultLimit
		rule.Burst = l.cfg.DefaultBurst
	} else {
		rule.Limit = l.cfg.AnonymousLimit
		rule.Burst = l.cfg.AnonymousBurst
	}

	if override, ok := l.cfg.EndpointOverrides[endpoint]; ok {
		limit, burst := override.AnonymousLimit, override.AnonymousBurst
		if identity == IdentityAuthenticated {
			limit, burst = override.AuthenticatedLimit, override.AuthenticatedBurst
		}
		if limit > 0 {
			rule.Limit = limit
		}
		if burst >= 0 {
			rule.Burst = burst
		}
		if override.WindowSeconds > 0 {
			rule.Window = time.Duration(override.WindowSeconds) * time.Second
		}
	}

	if rule.Burst < 0 {
		rule.Burst = 0
	}
	return rule
}

// Allow consumes one token for identity on endpoint
func (l *Limiter) Allow(ctx context.Context, endpoint, identity string, rule Rule, identityType IdentityType) (Result, error) {
	result := Result{
		Allowed:      true,
		Remaining:    rule.Limit,
		Limit:        rule.Limit,
		Window:       rule.Window,
		IdentityKey:  identity,
		EndpointKey:  endpoint,
		IdentityType: identityType,
	}
	if !l.cfg.Enabled || rule.Limit <= 0 {
		return result, nil
	}

	window := rule.Window
	if window <= 0 {
		window = l.cfg.Window()
	}
	result.Window = window

	rate := float64(rule.Limit) / window.Seconds()
	capacity := rule.Limit + rule.Burst
	now := float64(l.now().UnixNano()) / float64(time.Second)
	ttl := int(math.Ceil(window.Seconds())) * 2

	key := fmt.Sprintf("%s:%s:%s", l.cfg.RedisPrefix, endpoint, identity)
	raw, err := l.script.Run(ctx, l.client, []string{key},
		formatFloat(rate), capacity, formatFloat(now), ttl).Slice()
	if err != nil {
		return result, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) < 4 {
		return result, fmt.Errorf("rate limit script returned %d values", len(raw))
	}

	result.Allowed = toInt(raw[0]) == 1
	result.Remaining = int(math.Floor(toFloat(raw[1])))
	result.RetryAfter = seconds(toFloat(raw[2]))
	result.ResetAfter = seconds(toFloat(raw[3]))
	return result, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
