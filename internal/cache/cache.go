// Package cache provides a Redis-backed cache for generated bills.
// A nil *BillCache is valid and behaves as a no-op, so callers do not
// branch on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hydrospark/core/rates"
)

// DefaultTTL bounds how long a generated bill stays cached.
const DefaultTTL = 24 * time.Hour

// BillCache caches bill breakdowns keyed by customer and billing period
type BillCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a bill cache over an existing Redis client
func New(rdb *redis.Client) *BillCache {
	return &BillCache{rdb: rdb, ttl: DefaultTTL}
}

func billKey(customerID int64, year int, month time.Month) string {
	return fmt.Sprintf("bill:%d:%04d-%02d", customerID, year, int(month))
}

// Get returns the cached bill for a customer's period, or (nil, nil) on
// a miss.
func (c *BillCache) Get(ctx context.Context, customerID int64, year int, month time.Month) (*rates.Bill, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, billKey(customerID, year, month)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bill cache get: %w", err)
	}
	var bill rates.Bill
	if err := json.Unmarshal(data, &bill); err != nil {
		return nil, fmt.Errorf("bill cache decode: %w", err)
	}
	return &bill, nil
}

// Put stores a generated bill for a customer's period.
func (c *BillCache) Put(ctx context.Context, customerID int64, year int, month time.Month, bill *rates.Bill) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("bill cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, billKey(customerID, year, month), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("bill cache set: %w", err)
	}
	return nil
}
