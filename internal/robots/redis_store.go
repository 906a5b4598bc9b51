package robots

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "webdex:robots:"

// redisEntry is the JSON wire shape stored under each host's key.
type redisEntry struct {
	RawText    string    `json:"raw_text"`
	CrawlDelay *float64  `json:"crawl_delay,omitempty"`
	Sitemaps   []string  `json:"sitemaps,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// RedisStore is an alternate Store backend for multi-process
// deployments, sharing one robots.txt cache across instances. Entries
// expire on their own TTL in Redis; a Get miss (including any
// transport error) is treated as a cache miss, forcing a refetch —
// the cache is an optimisation, never a source of truth.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed Store. ttl controls both the
// freshness window (§4.6 step 1) and the key's Redis expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, host string) (CachedEntry, bool) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+host).Bytes()
	if err != nil {
		return CachedEntry{}, false
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		slog.Warn("robots: malformed redis cache entry", "host", host, "error", err)
		return CachedEntry{}, false
	}

	return CachedEntry{
		RawText:    e.RawText,
		CrawlDelay: e.CrawlDelay,
		Sitemaps:   e.Sitemaps,
		FetchedAt:  e.FetchedAt,
	}, true
}

func (s *RedisStore) Set(ctx context.Context, host string, entry CachedEntry) {
	raw, err := json.Marshal(redisEntry{
		RawText:    entry.RawText,
		CrawlDelay: entry.CrawlDelay,
		Sitemaps:   entry.Sitemaps,
		FetchedAt:  entry.FetchedAt,
	})
	if err != nil {
		slog.Warn("robots: failed to marshal cache entry", "host", host, "error", err)
		return
	}

	if err := s.client.Set(ctx, redisKeyPrefix+host, raw, s.ttl).Err(); err != nil {
		slog.Warn("robots: failed to write redis cache entry", "host", host, "error", err)
	}
}
