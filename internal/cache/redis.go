package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var _ SettingsCache = (*RedisSettingsCache)(nil)
var _ SettingsCache = (*MemorySettingsCache)(nil)

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisSettingsCache shares the settings snapshot between instances as one JSON value
type RedisSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSettingsCache connects to Redis and verifies the connection
func NewRedisSettingsCache(ctx context.Context, opts RedisOptions, ttl time.Duration) (*RedisSettingsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisSettingsCache{client: client, ttl: ttl}, nil
}

func (r *RedisSettingsCache) Load(ctx context.Context) (Snapshot, bool, error) {
	vals, err := r.client.MGet(ctx, VersionKey, SettingsKey).Result()
	if err != nil {
		return Snapshot{}, false, err
	}

	version, err := parseVersion(vals[0])
	if err != nil {
		return Snapshot{}, false, err
	}
	snap := Snapshot{Version: version}

	raw, ok := vals[1].(string)
	if !ok {
		return snap, false, nil
	}
	values := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return snap, false, fmt.Errorf("corrupt settings cache: %w", err)
	}
	snap.Values = values
	return snap, true, nil
}

// Store writes the snapshot only while the version key still holds
// snap.Version. A concurrent Invalidate aborts the transaction.
func (r *RedisSettingsCache) Store(ctx context.Context, snap Snapshot) error {
	buf, err := json.Marshal(snap.Values)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, VersionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current, err := parseVersion(raw)
		if err != nil {
			return err
		}
		if current != snap.Version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, SettingsKey, buf, r.ttl)
			return nil
		})
		return err
	}, VersionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (r *RedisSettingsCache) Invalidate(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, VersionKey)
		pipe.Del(ctx, SettingsKey)
		return nil
	})
	return err
}

func parseVersion(v interface{}) (uint64, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt settings version %q: %w", s, err)
	}
	return n, nil
}

// Close closes the Redis connection
func (r *RedisSettingsCache) Close() error {
	return r.client.Close()
}
