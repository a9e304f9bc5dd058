package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/config"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/redis"
	"github.com/richxcame/seatshare/pkg/resilience"
	"go.uber.org/zap"
)

const keyPrefix = "agg"

// Cache keeps computed aggregates in Redis behind a circuit breaker.
// A nil *Cache or a nil client disables caching; every read then recomputes.
type Cache struct {
	client  redis.ClientInterface
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
}

// NewCache creates the aggregate cache
func NewCache(client redis.ClientInterface, cfg config.CacheConfig) *Cache {
	settings := resilience.BuildSettings("aggregate-cache", cfg)
	// misses are normal traffic, not a sign Redis is failing
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.ErrCacheMiss)
	}

	ttl := cfg.AggregateTTL()
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Cache{
		client:  client,
		breaker: resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation("redis")),
		ttl:     ttl,
	}
}

func driverKey(driverID uuid.UUID, name string) string {
	return fmt.Sprintf("%s:driver:%s:%s", keyPrefix, driverID, name)
}

func passengerKey(passengerID uuid.UUID, name string) string {
	return fmt.Sprintf("%s:passenger:%s:%s", keyPrefix, passengerID, name)
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// get reports whether key was found and decoded into dest
func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	_, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.GetJSON(ctx, key, dest)
	})
	if err != nil && !errors.Is(err, redis.ErrCacheMiss) && !errors.Is(err, resilience.ErrCircuitOpen) {
		logger.WithContext(ctx).Warn("aggregate cache read failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}
	_, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.SetJSON(ctx, key, value, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		logger.WithContext(ctx).Warn("aggregate cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) delete(ctx context.Context, keys ...string) {
	if !c.enabled() {
		return
	}
	_, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Delete(ctx, keys...)
	})
	if err != nil {
		logger.WithContext(ctx).Warn("aggregate cache invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

// InvalidateDriver drops every cached aggregate for the driver
func (c *Cache) InvalidateDriver(ctx context.Context, driverID uuid.UUID) {
	c.delete(ctx,
		driverKey(driverID, "earnings"),
		driverKey(driverID, "rating"),
		driverKey(driverID, "rides"),
		driverKey(driverID, "counts"),
	)
}

// InvalidatePassenger drops the passenger's cached rating
func (c *Cache) InvalidatePassenger(ctx context.Context, passengerID uuid.UUID) {
	c.delete(ctx, passengerKey(passengerID, "rating"))
}
