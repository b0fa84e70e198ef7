package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

type sentValue struct {
	ProviderMessageID string    `json:"providerMessageId"`
	Status            string    `json:"status"`
	SentAt            time.Time `json:"sentAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func key(messageID int64) string {
	return fmt.Sprintf("sms:%d", messageID)
}

func (c *RedisCache) StoreSent(ctx context.Context, messageID int64, providerMessageID, status string, sentAt time.Time) error {
	val := sentValue{
		ProviderMessageID: providerMessageID,
		Status:            status,
		SentAt:            sentAt.UTC(),
		UpdatedAt:         sentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key(messageID), b, c.ttl).Err()
}

// StoreStatus updates the status of a cached entry and keeps its expiry.
// Entries that already expired are not recreated.
func (c *RedisCache) StoreStatus(ctx context.Context, messageID int64, status string) error {
	raw, err := c.rdb.Get(ctx, key(messageID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	var val sentValue
	if err := json.Unmarshal(raw, &val); err != nil {
		return fmt.Errorf("decode cached message %d: %w", messageID, err)
	}
	val.Status = status
	val.UpdatedAt = time.Now().UTC()

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(messageID), b, redis.KeepTTL).Err()
}
