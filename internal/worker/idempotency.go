package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which orders the worker already handled.
type IdempotencyStore interface {
	Seen(ctx context.Context, orderID string) (bool, error)
	Mark(ctx context.Context, orderID string) error
}

type RedisIdempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotency(client *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{client: client, ttl: idempotencyTTL}
}

func idempotencyKey(orderID string) string { return "order_processed:" + orderID }

func (r *RedisIdempotency) Seen(ctx context.Context, orderID string) (bool, error) {
	n, err := r.client.Exists(ctx, idempotencyKey(orderID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisIdempotency) Mark(ctx context.Context, orderID string) error {
	return r.client.Set(ctx, idempotencyKey(orderID), "1", r.ttl).Err()
}
