package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// BalanceCache implements ports.BalanceCache using Redis.
// Balances are stored as plain int64 strings under short TTLs; the
// database remains the source of truth and every miss falls through to it.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance. The second return value reports whether
// the key was present.
func (c *BalanceCache) Get(ctx context.Context, vendorID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+vendorID.String()).Result()
	if err != nil {
		if err == goredis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis balance get: %w", err)
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Corrupt entry; treat as a miss so the caller re-reads the database.
		return 0, false, nil
	}
	return balance, true, nil
}

// Set stores a balance with TTL.
func (c *BalanceCache) Set(ctx context.Context, vendorID uuid.UUID, balance int64, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+vendorID.String(), strconv.FormatInt(balance, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate removes a cached balance after a debit or credit.
func (c *BalanceCache) Invalidate(ctx context.Context, vendorID uuid.UUID) error {
	if err := c.client.Del(ctx, c.prefix+vendorID.String()).Err(); err != nil {
		return fmt.Errorf("redis balance del: %w", err)
	}
	return nil
}
