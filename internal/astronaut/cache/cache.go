// Package cache keeps PersonAstronaut projections in Redis, keyed by person name.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stargate/internal/astronaut/models"
)

const (
	// Redis key prefixes for person projections and their generations
	personKeyPrefix     = "stargate:person:"
	generationKeyPrefix = "stargate:person-gen:"

	DefaultTTL = 5 * time.Minute

	// generationTTL outlives any read that could still be filling the cache.
	generationTTL = 24 * time.Hour
)

var errGenerationMoved = errors.New("person generation moved")

// RedisProjectionCache is a read-through cache for GetPerson. Each name has a
// generation counter that Invalidate bumps after a commit. A reader captures
// the generation before loading from the store and Fill only writes if it is
// unchanged, so a projection read before a commit is never cached after it.
// TTL bounds staleness if an invalidation is lost.
type RedisProjectionCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// Option configures a RedisProjectionCache.
type Option func(*RedisProjectionCache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *RedisProjectionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *RedisProjectionCache {
	c := &RedisProjectionCache{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the cached projection, or ok=false on a miss.
func (c *RedisProjectionCache) Get(ctx context.Context, name string) (*models.PersonAstronaut, bool, error) {
	raw, err := c.client.Get(ctx, personKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached person: %w", err)
	}
	var pa models.PersonAstronaut
	if err := json.Unmarshal(raw, &pa); err != nil {
		return nil, false, fmt.Errorf("decode cached person: %w", err)
	}
	return &pa, true, nil
}

// Generation returns the current generation of name. A name that was never
// invalidated is at generation 0.
func (c *RedisProjectionCache) Generation(ctx context.Context, name string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(name)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get person generation: %w", err)
	}
	return gen, nil
}

// Fill caches pa if its name is still at generation gen. It reports false
// without error when an invalidation got there first.
func (c *RedisProjectionCache) Fill(ctx context.Context, pa *models.PersonAstronaut, gen int64) (bool, error) {
	raw, err := json.Marshal(pa)
	if err != nil {
		return false, fmt.Errorf("encode cached person: %w", err)
	}
	genKey := generationKey(pa.Name)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, personKey(pa.Name), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("fill cached person: %w", err)
	}
	return true, nil
}

// Invalidate bumps the generation of names and drops their entries. Missing
// keys are not an error.
func (c *RedisProjectionCache) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, n := range names {
			pipe.Incr(ctx, generationKey(n))
			pipe.Expire(ctx, generationKey(n), generationTTL)
			pipe.Del(ctx, personKey(n))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached person: %w", err)
	}
	return nil
}

func personKey(name string) string {
	return personKeyPrefix + name
}

func generationKey(name string) string {
	return generationKeyPrefix + name
}
