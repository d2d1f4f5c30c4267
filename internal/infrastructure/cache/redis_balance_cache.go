// Package cache provides Redis-backed caches shared across instances.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisBalanceCache caches computed account balances in Redis so that
// repeated balance reads do not refold the posted entries. Entries
// expire after a TTL; posting paths invalidate eagerly.
type RedisBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisBalanceCache creates a new Redis-backed balance cache
func NewRedisBalanceCache(cfg RedisConfig) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBalanceCacheWithClient(client, cfg.TTL), nil
}

// NewRedisBalanceCacheWithClient creates a cache with an existing Redis
// client. This is useful for testing or when sharing a client.
func NewRedisBalanceCacheWithClient(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: "ledger:balance:",
		ttl:       ttl,
	}
}

func (c *RedisBalanceCache) key(tenantID, accountID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + accountID.String()
}

// GetBalance returns the cached balance and whether it was present.
// A missing key is not an error.
func (c *RedisBalanceCache) GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(tenantID, accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read cached balance: %w", err)
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		// Corrupt entry: drop it and report a miss
		_ = c.client.Del(ctx, c.key(tenantID, accountID)).Err()
		return decimal.Zero, false, nil
	}

	return balance, true, nil
}

// SetBalance stores the balance with the configured TTL
func (c *RedisBalanceCache) SetBalance(ctx context.Context, tenantID, accountID uuid.UUID, balance decimal.Decimal) error {
	if err := c.client.Set(ctx, c.key(tenantID, accountID), balance.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// InvalidateBalance removes the cached balance for an account
func (c *RedisBalanceCache) InvalidateBalance(ctx context.Context, tenantID, accountID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID, accountID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}

// Close releases the underlying Redis client
func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}
