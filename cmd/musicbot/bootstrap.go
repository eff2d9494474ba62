package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ytget/yt-music-bot/internal/catalog"
	"github.com/ytget/yt-music-bot/internal/config"
	"github.com/ytget/yt-music-bot/internal/logging"
)

// buildCatalog assembles the yt-dlp client, playlist expansion and the
// optional Redis search cache. The returned Redis client is nil when the
// cache is disabled.
func buildCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Client, *redis.Client, error) {
	binary := cfg.Catalog.YTDLPPath
	if cfg.Catalog.AutoInstall {
		installed, err := catalog.Install(ctx)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using managed yt-dlp", "path", installed)
		binary = installed
	}

	playlists := catalog.NewPlaylistService()
	playlists.SetTimeout(cfg.PlaylistTimeout())

	client := catalog.NewYTDLP(catalog.Options{
		Binary:         binary,
		FFmpegLocation: cfg.Catalog.FFmpegPath,
		SearchTimeout:  cfg.SearchTimeout(),
		Playlists:      playlists,
		Logger:         logging.Component(logger, "catalog"),
	})

	rdb := catalog.NewRedisClient(catalog.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if rdb == nil {
		return client, nil, nil
	}
	if err := catalog.PingRedis(ctx, rdb); err != nil {
		// the cache bypasses Redis errors, so a cold Redis only costs hits
		logger.Warn("redis unreachable, searches will not be cached until it recovers", "addr", cfg.Redis.Addr, "error", err)
	} else {
		logger.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.CacheTTL())
	}
	return catalog.NewCached(client, rdb, cfg.CacheTTL(), logging.Component(logger, "cache")), rdb, nil
}
