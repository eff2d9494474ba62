package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ytget/yt-music-bot/internal/model"
)

// Cache defaults
const (
	DefaultCacheTTL   = 30 * time.Minute
	CacheKeyPrefix    = "musicbot:search:"
	cacheOpTimeout    = 2 * time.Second
	cacheEntryVersion = 1
	cacheDialTimeout  = 5 * time.Second
	cacheIOTimeout    = 3 * time.Second
)

// RedisOptions holds connection settings for NewRedisClient
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient constructs a go-redis client, or nil when no address is set
func NewRedisClient(opts RedisOptions) *redis.Client {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  cacheDialTimeout,
		ReadTimeout:  cacheIOTimeout,
		WriteTimeout: cacheIOTimeout,
	})
}

// PingRedis validates the connection. A nil client is not an error.
func PingRedis(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}

// Cached serves repeated searches from Redis. Fetches always go to the
// wrapped client. Redis failures are logged and the search falls through.
type Cached struct {
	next   Client
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next. With a nil rdb it returns next unchanged.
func NewCached(next Client, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) Client {
	if rdb == nil || isNilClient(rdb) {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

type cacheEntry struct {
	Version int           `json:"v"`
	Tracks  []cachedTrack `json:"tracks"`
}

type cachedTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
}

// Search returns cached results when present, otherwise searches and
// stores non-empty results
func (c *Cached) Search(ctx context.Context, query string, maxResults int) ([]model.Track, error) {
	key := CacheKey(query, maxResults)

	if tracks, ok := c.load(ctx, key); ok {
		return tracks, nil
	}

	tracks, err := c.next.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(tracks) > 0 {
		c.store(ctx, key, tracks)
	}
	return tracks, nil
}

// FetchAudio is never cached
func (c *Cached) FetchAudio(ctx context.Context, trackID string, constraints Constraints) (string, error) {
	return c.next.FetchAudio(ctx, trackID, constraints)
}

func (c *Cached) load(ctx context.Context, key string) ([]model.Track, bool) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("search cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Version != cacheEntryVersion {
		return nil, false
	}
	tracks := make([]model.Track, 0, len(entry.Tracks))
	for _, t := range entry.Tracks {
		tracks = append(tracks, model.Track{ID: t.ID, Title: t.Title, Artist: t.Artist, DurationSeconds: t.Duration})
	}
	return tracks, true
}

func (c *Cached) store(ctx context.Context, key string, tracks []model.Track) {
	entry := cacheEntry{Version: cacheEntryVersion, Tracks: make([]cachedTrack, 0, len(tracks))}
	for _, t := range tracks {
		entry.Tracks = append(entry.Tracks, cachedTrack{ID: t.ID, Title: t.Title, Artist: t.Artist, Duration: t.DurationSeconds})
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("search cache write failed", "key", key, "error", err)
	}
}

// CacheKey normalizes the query so that case and spacing variants share an
// entry. Playlist URLs keep their case since playlist ids are case-sensitive.
func CacheKey(query string, maxResults int) string {
	if !IsPlaylistURL(query) {
		query = strings.ToLower(query)
	}
	normalized := strings.Join(strings.Fields(query), " ")
	return fmt.Sprintf("%s%d:%s", CacheKeyPrefix, maxResults, normalized)
}

func isNilClient(rdb redis.Cmdable) bool {
	client, ok := rdb.(*redis.Client)
	return ok && client == nil
}
