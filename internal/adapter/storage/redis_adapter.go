package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// RedisAdapter keeps the reservable stock of every item and the checkout
// idempotency keys in Redis.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(itemID int64) string {
	return stockKeyPrefix + strconv.FormatInt(itemID, 10)
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, itemID int64, quantity int) (bool, error) {
	result, err := decrementStockScript.Run(ctx, r.client, []string{stockKey(itemID)}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, itemID int64, quantity int) error {
	return r.client.IncrBy(ctx, stockKey(itemID), int64(quantity)).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID int64, quantity int) error {
	return r.client.Set(ctx, stockKey(itemID), quantity, 0).Err()
}

func (r *RedisAdapter) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	n, err := r.client.Get(ctx, stockKey(itemID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
