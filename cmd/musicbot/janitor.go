package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ytget/yt-music-bot/internal/platform"
)

// minPurgeInterval keeps short artifact ages from spinning the janitor
const minPurgeInterval = time.Minute

// purgeStaleArtifacts removes artifacts older than maxAge from dir and logs
// the outcome
func purgeStaleArtifacts(dir string, maxAge time.Duration, logger *slog.Logger) {
	removed, err := platform.PurgeStaleArtifacts(dir, maxAge, time.Now())
	if err != nil {
		logger.Warn("failed to purge stale artifacts", "dir", dir, "error", err)
		return
	}
	if removed > 0 {
		logger.Info("purged stale artifacts", "dir", dir, "count", removed)
	}
}

// runJanitor purges stale artifacts every interval until ctx is done. It
// catches files written by processes that outlived their job.
func runJanitor(ctx context.Context, dir string, maxAge, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purgeStaleArtifacts(dir, maxAge, logger)
		}
	}
}

// janitorInterval sweeps at half the artifact age, never more often than
// minPurgeInterval
func janitorInterval(maxAge time.Duration) time.Duration {
	return max(maxAge/2, minPurgeInterval)
}
