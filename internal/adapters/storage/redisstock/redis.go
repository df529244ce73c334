// Package redisstock implements the StockCache port on Redis: a mirror of
// quantity-on-hand for storefront reads, plus idempotency keys for
// checkout submissions.
package redisstock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyPrefix = "idem:"
	idempotencyTTL    = 24 * time.Hour
)

// removeStockScript decrements only when the mirrored value covers the
// requested quantity, in one atomic round trip.
var removeStockScript = redis.NewScript(`
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

type Adapter struct {
	client *redis.Client
}

// New builds the adapter around an existing client so the caller controls
// connection options and lifetime.
func New(client *redis.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) SetStock(ctx context.Context, productID string, quantity int) error {
	return a.client.Set(ctx, stockKeyPrefix+productID, quantity, 0).Err()
}

func (a *Adapter) AddStock(ctx context.Context, productID string, quantity int) error {
	return a.client.IncrBy(ctx, stockKeyPrefix+productID, int64(quantity)).Err()
}

func (a *Adapter) RemoveStock(ctx context.Context, productID string, quantity int) (bool, error) {
	result, err := removeStockScript.Run(ctx, a.client, []string{stockKeyPrefix + productID}, quantity).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (a *Adapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return a.client.SetNX(ctx, idempotencyPrefix+key, 1, idempotencyTTL).Result()
}
