// internal/notify/history.go
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"vascomart-client/internal/common/errors"
	"vascomart-client/internal/models"
)

// RedisHistory is an optional sink that mirrors stored notifications
// into a bounded Redis list so they survive client restarts. Failures
// are surfaced as retryable errors; the in-memory pipeline never
// depends on the sink succeeding.
type RedisHistory struct {
	client   *redis.Client
	key      string
	capacity int
}

func NewRedisHistory(client *redis.Client, key string, capacity int) *RedisHistory {
	if capacity < 1 {
		capacity = 50
	}
	return &RedisHistory{client: client, key: key, capacity: capacity}
}

// Append records n at the head of the history list and trims to
// capacity.
func (h *RedisHistory) Append(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return errors.NewHistorySinkError(err)
	}

	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, h.key, data)
	pipe.LTrim(ctx, h.key, 0, int64(h.capacity-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewHistorySinkError(err)
	}
	return nil
}

// Recent returns up to limit notifications, newest first.
func (h *RedisHistory) Recent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > h.capacity {
		limit = h.capacity
	}
	raw, err := h.client.LRange(ctx, h.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.NewHistorySinkError(err)
	}

	out := make([]models.Notification, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Clear drops the persisted history.
func (h *RedisHistory) Clear(ctx context.Context) error {
	if err := h.client.Del(ctx, h.key).Err(); err != nil {
		return errors.NewHistorySinkError(err)
	}
	return nil
}
