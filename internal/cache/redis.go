// Package cache stores fetched season records in Redis so repeated runs do
// not refetch settled historical seasons. The orchestrator flushes every
// year touched by a run on exit, because an in-progress season's record
// grows between runs and must never be served stale.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"seasonmetrics/internal/client"
	"seasonmetrics/internal/metrics"
	"seasonmetrics/internal/models"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SeasonCache is a read-through cache in front of a SeasonProvider.
type SeasonCache struct {
	rdb      *redis.Client
	upstream client.SeasonProvider
	ttl      time.Duration

	touched map[int]struct{}
}

// New connects to Redis and wraps upstream. A connection failure is
// returned so the caller can continue without caching.
func New(cfg Config, upstream client.SeasonProvider) (*SeasonCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SeasonCache{
		rdb:      rdb,
		upstream: upstream,
		ttl:      cfg.TTL,
		touched:  make(map[int]struct{}),
	}, nil
}

func seasonKey(year int, team string) string {
	return fmt.Sprintf("season:%s:%d", team, year)
}

// FetchSeason serves from Redis when possible, falling through to the
// upstream provider and storing the result.
func (c *SeasonCache) FetchSeason(ctx context.Context, year int, team string) (*models.SeasonRecord, error) {
	c.touched[year] = struct{}{}

	key := seasonKey(year, team)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var rec models.SeasonRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			metrics.CacheHitsTotal.Inc()
			log.Debug().Str("key", key).Msg("Season cache hit")
			return &rec, nil
		}
		// Unreadable entry, refetch below.
		log.Warn().Str("key", key).Msg("Discarding corrupt cache entry")
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching upstream")
	}
	metrics.CacheMissesTotal.Inc()

	rec, err := c.upstream.FetchSeason(ctx, year, team)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return rec, nil
}

// FlushTouched deletes cached records for every year this run fetched.
func (c *SeasonCache) FlushTouched(ctx context.Context) {
	for year := range c.touched {
		pattern := fmt.Sprintf("season:*:%d", year)
		iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			log.Warn().Err(err).Int("year", year).Msg("Cache scan failed during flush")
			continue
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				log.Warn().Err(err).Int("year", year).Msg("Cache flush failed")
				continue
			}
		}
		log.Info().Int("year", year).Int("keys", len(keys)).Msg("Season cache flushed")
	}
}

// Close releases the Redis connection.
func (c *SeasonCache) Close() error {
	return c.rdb.Close()
}
