package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Redis shares fetched subscriptions between instances. Expiry is delegated
// to Redis.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects using a redis:// URL and verifies the connection.
func NewRedis(ctx context.Context, url, prefix string, ttl time.Duration, logger zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: connect redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, logger: logger}, nil
}

// GetOrFetch returns the stored entry for key or fetches and stores it with the
// configured TTL. Unreadable entries are refetched and overwritten; a failed
// fetch leaves Redis untouched. Redis errors degrade to a direct fetch.
func (r *Redis) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]string, error) {
	redisKey := r.key(key)
	raw, err := r.client.Get(ctx, redisKey).Bytes()
	switch {
	case err == nil:
		var entry Entry
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			return entry.Data, nil
		}
	case !errors.Is(err, redis.Nil):
		r.logger.Warn().Err(err).Str("url", key).Msg("redis get failed, fetching upstream")
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(Entry{Data: data, Timestamp: time.Now()})
	if err != nil {
		return data, nil
	}
	if err := r.client.Set(ctx, redisKey, payload, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("url", key).Msg("redis set failed")
	}
	return data, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(url string) string {
	parts := []string{"link", url}
	if r.prefix != "" {
		parts = append([]string{r.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}

var _ Cache = (*Redis)(nil)
