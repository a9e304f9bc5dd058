package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckerConfig holds health probe settings
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default probe settings
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker returns a health check function for the PostgreSQL pool
func DatabaseChecker(db Pinger) func() error {
	return DatabaseCheckerWithConfig(db, DefaultCheckerConfig())
}

// DatabaseCheckerWithConfig is DatabaseChecker with an explicit timeout
func DatabaseCheckerWithConfig(db Pinger, cfg CheckerConfig) func() error {
	return func() error {
		if db == nil {
			return errors.New("database connection is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return db.Ping(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client redis.UniversalClient) func() error {
	return func() error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), DefaultCheckerConfig().Timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// CompositeChecker runs every check and joins the failures
func CompositeChecker(checks map[string]func() error) func() error {
	return func() error {
		var failures []string
		for name, check := range checks {
			if err := check(); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			}
		}
		if len(failures) == 0 {
			return nil
		}
		return errors.New(strings.Join(failures, "; "))
	}
}

// CachedChecker memoizes a check result for ttl so probes don't hammer dependencies
type CachedChecker struct {
	check     func() error
	ttl       time.Duration
	mu        sync.Mutex
	lastErr   error
	lastCheck time.Time
	now       func() time.Time
}

// NewCachedChecker wraps check with a result cache
func NewCachedChecker(check func() error, ttl time.Duration) *CachedChecker {
	return &CachedChecker{check: check, ttl: ttl, now: time.Now}
}

// Check returns the cached result or runs the check
func (c *CachedChecker) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastCheck.IsZero() && c.now().Sub(c.lastCheck) < c.ttl {
		return c.lastErr
	}
	c.lastErr = c.check()
	c.lastCheck = c.now()
	return c.lastErr
}
