package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})
}

func Ping(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// EventDedup remembers which provider webhook events were already processed
// so a redelivered event can be acknowledged without re-running the handler.
type EventDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

const eventKeyPrefix = "webhook:event:"

func NewEventDedup(rdb *redis.Client, ttl time.Duration) *EventDedup {
	return &EventDedup{rdb: rdb, ttl: ttl}
}

// MarkProcessed records the event id and reports whether it was seen before.
// The reconcile path is idempotent on its own, so a redis error degrades to
// "not seen" instead of failing the webhook.
func (d *EventDedup) MarkProcessed(ctx context.Context, eventID string) (seen bool, err error) {
	ok, err := d.rdb.SetNX(ctx, eventKeyPrefix+eventID, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Forget drops the processed mark. Called when handling an event failed after
// the mark was set, so the provider's retry of that event is not acknowledged
// as a duplicate.
func (d *EventDedup) Forget(ctx context.Context, eventID string) error {
	return d.rdb.Del(ctx, eventKeyPrefix+eventID).Err()
}
