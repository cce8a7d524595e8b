package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pingparcel/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	// TrackingCachePrefix is the prefix used for Redis tracking history keys.
	TrackingCachePrefix = "tracking:"
	// TrackingGenerationPrefix prefixes the per-history append counters.
	TrackingGenerationPrefix = "tracking-gen:"
)

// EventCache holds recently read tracking histories. Every append bumps the
// history's generation, and Set only stores a history read under the current
// generation, so a read that raced an append never lands in the cache.
type EventCache interface {
	Get(ctx context.Context, ledger, trackingID string) ([]models.TrackingEvent, bool, error)
	// Generation must be read before the store query whose result is Set.
	Generation(ctx context.Context, ledger, trackingID string) (int64, error)
	// Set stores events unless the generation has moved past gen.
	Set(ctx context.Context, ledger, trackingID string, gen int64, events []models.TrackingEvent) error
	Invalidate(ctx context.Context, ledger, trackingID string) error
}

// RedisEventCache stores histories BSON encoded, which keeps _id and the
// server timestamp intact.
type RedisEventCache struct {
	client *redis.Client
	ttl    time.Duration
}

type cachedHistory struct {
	Events []models.TrackingEvent `bson:"events"`
}

func NewRedisEventCache(client *redis.Client, ttl time.Duration) *RedisEventCache {
	return &RedisEventCache{client: client, ttl: ttl}
}

func cacheKey(ledger, trackingID string) string {
	return TrackingCachePrefix + ledger + ":" + trackingID
}

func generationKey(ledger, trackingID string) string {
	return TrackingGenerationPrefix + ledger + ":" + trackingID
}

// generationTTL outlives any cached entry; a counter that expired reads as 0,
// which no in-flight reader holding a later generation can match.
func (c *RedisEventCache) generationTTL() time.Duration {
	if ttl := 2 * c.ttl; ttl > time.Minute {
		return ttl
	}
	return time.Minute
}

func (c *RedisEventCache) Get(ctx context.Context, ledger, trackingID string) ([]models.TrackingEvent, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(ledger, trackingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read tracking cache: %w", err)
	}
	var h cachedHistory
	if err := bson.Unmarshal(raw, &h); err != nil {
		return nil, false, fmt.Errorf("failed to decode tracking cache: %w", err)
	}
	if h.Events == nil {
		h.Events = []models.TrackingEvent{}
	}
	return h.Events, true, nil
}

func generationOf(cmd *redis.StringCmd) (int64, error) {
	gen, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisEventCache) Generation(ctx context.Context, ledger, trackingID string) (int64, error) {
	gen, err := generationOf(c.client.Get(ctx, generationKey(ledger, trackingID)))
	if err != nil {
		return 0, fmt.Errorf("failed to read tracking cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisEventCache) Set(ctx context.Context, ledger, trackingID string, gen int64, events []models.TrackingEvent) error {
	raw, err := bson.Marshal(cachedHistory{Events: events})
	if err != nil {
		return fmt.Errorf("failed to encode tracking cache: %w", err)
	}
	genKey := generationKey(ledger, trackingID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generationOf(tx.Get(ctx, genKey))
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(ledger, trackingID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	// An append committed between WATCH and EXEC; the history is stale.
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write tracking cache: %w", err)
	}
	return nil
}

func (c *RedisEventCache) Invalidate(ctx context.Context, ledger, trackingID string) error {
	genKey := generationKey(ledger, trackingID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, c.generationTTL())
		pipe.Del(ctx, cacheKey(ledger, trackingID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate tracking cache: %w", err)
	}
	return nil
}
