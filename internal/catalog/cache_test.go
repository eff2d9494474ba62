package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ytget/yt-music-bot/internal/model"
)

type countingClient struct {
	searches int
	fetches  int
	tracks   []model.Track
	err      error
}

func (c *countingClient) Search(context.Context, string, int) ([]model.Track, error) {
	c.searches++
	return c.tracks, c.err
}

func (c *countingClient) FetchAudio(context.Context, string, Constraints) (string, error) {
	c.fetches++
	return "/tmp/x.mp3", nil
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("  Imagine   Dragons  Believer ", 20)
	b := CacheKey("imagine dragons believer", 20)
	if a != b {
		t.Errorf("CacheKey should normalize case and spacing: %q vs %q", a, b)
	}
	if a != "musicbot:search:20:imagine dragons believer" {
		t.Errorf("CacheKey() = %q", a)
	}
	if CacheKey("q", 10) == CacheKey("q", 20) {
		t.Error("limit should be part of the key")
	}
}

func TestCacheKeyKeepsPlaylistCase(t *testing.T) {
	tests := []struct {
		name  string
		a     string
		b     string
		equal bool
	}{
		{name: "should separate playlist ids differing in case", a: "https://www.youtube.com/playlist?list=PLab", b: "https://www.youtube.com/playlist?list=PLAB", equal: false},
		{name: "should trim spacing around playlist urls", a: "  https://www.youtube.com/playlist?list=PLab ", b: "https://www.youtube.com/playlist?list=PLab", equal: true},
		{name: "should fold case of plain queries", a: "Believer", b: "BELIEVER", equal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.a, 20) == CacheKey(tt.b, 20); got != tt.equal {
				t.Errorf("CacheKey(%q) == CacheKey(%q) = %v, expected %v", tt.a, tt.b, got, tt.equal)
			}
		})
	}
}

func TestNewCachedWithoutRedis(t *testing.T) {
	next := &countingClient{}

	if got := NewCached(next, nil, time.Minute, nil); got != Client(next) {
		t.Error("nil redis should return the wrapped client")
	}
	if got := NewCached(next, NewRedisClient(RedisOptions{}), time.Minute, nil); got != Client(next) {
		t.Error("empty address should return the wrapped client")
	}
}

func TestCachedFallsThroughWhenRedisIsDown(t *testing.T) {
	next := &countingClient{tracks: []model.Track{{ID: "a", Title: "t", Artist: "a"}}}
	rdb := NewRedisClient(RedisOptions{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	client := NewCached(next, rdb, time.Minute, nil)
	tracks, err := client.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(tracks) != 1 || next.searches != 1 {
		t.Errorf("expected one pass-through search, got tracks=%v searches=%d", tracks, next.searches)
	}

	if _, err := client.FetchAudio(context.Background(), "a", Constraints{}); err != nil || next.fetches != 1 {
		t.Errorf("FetchAudio should pass through, err=%v fetches=%d", err, next.fetches)
	}
}

func TestCachedPropagatesSearchErrors(t *testing.T) {
	next := &countingClient{err: ErrCatalogUnavailable}
	rdb := NewRedisClient(RedisOptions{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	client := NewCached(next, rdb, time.Minute, nil)
	if _, err := client.Search(context.Background(), "query", 5); !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestPingRedisNilClient(t *testing.T) {
	if err := PingRedis(context.Background(), nil); err != nil {
		t.Errorf("PingRedis(nil) = %v", err)
	}
}
