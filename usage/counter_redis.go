package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guest counters expire two months after their last touch, long enough to
// outlive the calendar month they track.
const guestCounterTTL = 62 * 24 * time.Hour

// RedisGuestCounter tracks report generations for anonymous visitors,
// keyed by guest session token and calendar month.
type RedisGuestCounter struct {
	client *redis.Client
}

func NewRedisGuestCounter(client *redis.Client) *RedisGuestCounter {
	return &RedisGuestCounter{client: client}
}

var _ Counter = (*RedisGuestCounter)(nil)

func guestCounterKey(token string, month time.Time) string {
	return fmt.Sprintf("guest:%s:%s", token, month.UTC().Format("2006-01"))
}

func guestSessionKey(token string) string {
	return fmt.Sprintf("guest:sess:%s", token)
}

func (c *RedisGuestCounter) CountSince(ctx context.Context, token string, since time.Time) (int64, error) {
	count, err := c.client.Get(ctx, guestCounterKey(token, since)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("read guest counter: %w", err)
	}
	return count, nil
}

func (c *RedisGuestCounter) Record(ctx context.Context, token string) error {
	key := guestCounterKey(token, time.Now())
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, guestCounterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bump guest counter: %w", err)
	}
	return nil
}

// MarkConverted links a guest session to the paying customer it became,
// preserving the association for support lookups.
func (c *RedisGuestCounter) MarkConverted(ctx context.Context, token, customerID string) error {
	key := guestSessionKey(token)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, "converted_customer_id", customerID, "converted_at", time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, guestCounterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark guest session converted: %w", err)
	}
	return nil
}
