package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/logger"
	"market-buzz/src/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "market-buzz:cache:"

// -----------------------------------------------------------------------------

// RedisCache stores every entry as a hash {payload, fetched_at, expires_at}
// with a native TTL. The stored expiry guards against keys whose TTL was
// lost, e.g. after a PERSIST or a restore.
type RedisCache struct {
	Config *models.MConfig
	Client *redis.Client
	Logger *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewRedisCache(cfg *models.MConfig, log *logger.Logger) (*RedisCache, error) {
	return &RedisCache{
		Config: cfg,
		Logger: log,
		now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Initialize(ctx context.Context) error {
	if r.Client == nil {
		r.Client = redis.NewClient(&redis.Options{
			Addr: r.Config.Storage.RedisAddr,
			DB:   r.Config.Storage.RedisDB,
		})
	}

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return helpers.NewCacheError("failed to connect to Redis at "+r.Config.Storage.RedisAddr, err)
	}

	r.Logger.Info("Successfully connected to Redis")
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	vals, err := r.Client.HMGet(ctx, redisKeyPrefix+key, "payload", "expires_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, helpers.NewCacheError("redis get "+key, err)
	}

	payload, ok := vals[0].(string)
	if !ok {
		return nil, false, nil
	}

	if raw, ok := vals[1].(string); ok {
		expiresAt, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && expiresAt <= r.now().UTC().UnixMilli() {
			return nil, false, nil
		}
	}

	return []byte(payload), true, nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := r.now().UTC()
	fullKey := redisKeyPrefix + key

	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, fullKey)
		pipe.HSet(ctx, fullKey,
			"payload", payload,
			"fetched_at", now.UnixMilli(),
			"expires_at", now.Add(ttl).UnixMilli(),
		)
		pipe.PExpire(ctx, fullKey, ttl)
		return nil
	})
	if err != nil {
		return helpers.NewCacheError("redis set "+key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// CleanupExpired removes entries whose stored expiry has passed. Redis drops
// entries with a live TTL on its own.
func (r *RedisCache) CleanupExpired(ctx context.Context) (int64, error) {
	var removed int64
	nowMs := r.now().UTC().UnixMilli()

	iter := r.Client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.Client.HGet(ctx, key, "expires_at").Result()
		if err != nil {
			continue
		}
		expiresAt, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || expiresAt > nowMs {
			continue
		}
		n, err := r.Client.Del(ctx, key).Result()
		if err != nil {
			return removed, helpers.NewCacheError("redis cleanup", err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, helpers.NewCacheError("redis scan", err)
	}

	if removed > 0 {
		r.Logger.Info("Cleanup removed %d expired entries", removed)
	}
	return removed, nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
