package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-music-bot/internal/bot"
	"github.com/ytget/yt-music-bot/internal/config"
	"github.com/ytget/yt-music-bot/internal/download"
	"github.com/ytget/yt-music-bot/internal/health"
	"github.com/ytget/yt-music-bot/internal/logging"
	"github.com/ytget/yt-music-bot/internal/media"
	"github.com/ytget/yt-music-bot/internal/metrics"
	"github.com/ytget/yt-music-bot/internal/model"
	"github.com/ytget/yt-music-bot/internal/session"
	"github.com/ytget/yt-music-bot/internal/workpool"
)

// ErrAlreadyRunning is returned when another bot process holds the lock
var ErrAlreadyRunning = errors.New("another musicbot instance is running")

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(runCtx, cfg, logger)
		},
	}
}

func runBot(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("musicbot starting", "version", version, "temp_dir", cfg.Download.TempDir)

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release lock", "error", err)
		}
	}()

	purgeStaleArtifacts(cfg.Download.TempDir, cfg.StaleArtifactAge(), logger)
	go runJanitor(ctx, cfg.Download.TempDir, cfg.StaleArtifactAge(), janitorInterval(cfg.StaleArtifactAge()), logging.Component(logger, "janitor"))

	client, rdb, err := buildCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()
	pool := workpool.New(cfg.Download.MaxParallel)
	sessions := session.NewStore()
	serializer := workpool.NewSerializer(logging.Component(logger, "dispatch"))
	if err := registerGauges(m, pool, sessions, serializer); err != nil {
		return err
	}

	prober := media.NewFFprobe(cfg.Catalog.FFprobePath)
	pipelineLogger := logging.Component(logger, "pipeline")
	pipeline := download.NewService(client, download.Options{
		TempDir:      cfg.Download.TempDir,
		MaxBytes:     cfg.Download.MaxBytes,
		FetchTimeout: cfg.FetchTimeout(),
		Pool:         pool,
		Prober:       prober,
		Metrics:      m,
		Logger:       pipelineLogger,
	})
	pipeline.SetUpdateCallback(func(job *model.DownloadJob) {
		pipelineLogger.Debug("job status", "job_id", job.ID, "track_id", job.Track.ID, "status", job.Status.String())
	})

	tg, err := bot.NewTelegram(cfg.Telegram.Token, logging.Component(logger, "telegram"))
	if err != nil {
		return err
	}
	tg.SetPollTimeout(cfg.Telegram.PollTimeout)

	router := bot.NewRouter(bot.RouterOptions{
		Catalog:      client,
		Sessions:     sessions,
		Pipeline:     pipeline,
		Messenger:    tg,
		Pool:         pool,
		Localization: bot.NewLocalization(cfg.Bot.Language),
		Metrics:      m,
		Logger:       logging.Component(logger, "router"),
		SearchLimit:  cfg.Catalog.SearchLimit,
		MaxBytes:     pipeline.MaxBytes(),
	})

	healthErr := make(chan error, 1)
	if cfg.Health.Enabled {
		srv := health.New(cfg.Health.Bind, m.Handler(), logging.Component(logger, "health"))
		go func() {
			err := srv.Run(ctx)
			if err != nil {
				logger.Error("health server stopped", "error", err)
			}
			healthErr <- err
		}()
	} else {
		healthErr <- nil
	}

	dispatcher := bot.NewDispatcher(ctx, router, serializer)
	logger.Info("musicbot ready", "bot", tg.Username(), "max_parallel", pool.Size())
	pollErr := tg.Poll(ctx, dispatcher.Dispatch)

	logger.Info("musicbot shutting down", "pending_users", serializer.Pending())
	dispatcher.Wait()

	return errors.Join(pollErr, <-healthErr)
}

func registerGauges(m *metrics.Metrics, pool *workpool.Pool, sessions *session.Store, serializer *workpool.Serializer) error {
	gauges := []struct {
		name string
		help string
		fn   func() float64
	}{
		{"sessions", "Users with a stored search session.", func() float64 { return float64(sessions.Len()) }},
		{"pool_slots_in_use", "Catalog operations currently holding a worker slot.", func() float64 { return float64(pool.InUse()) }},
		{"pool_slots", "Configured worker slots.", func() float64 { return float64(pool.Size()) }},
		{"users_pending", "Users with queued or running events.", func() float64 { return float64(serializer.Pending()) }},
	}
	for _, g := range gauges {
		if err := m.RegisterGauge(g.name, g.help, g.fn); err != nil {
			return fmt.Errorf("register %s gauge: %w", g.name, err)
		}
	}
	return nil
}
