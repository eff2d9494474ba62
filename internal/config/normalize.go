package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables consulted when the file leaves a value empty
const (
	EnvTelegramToken = "MUSICBOT_TELEGRAM_TOKEN"
	EnvBotToken      = "BOT_TOKEN"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
)

func (c *Config) normalize() error {
	c.normalizeTelegram()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeBot()
	c.normalizeHealth()
	c.normalizeRedis()
	return c.normalizeLogging()
}

func (c *Config) normalizeTelegram() {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	if c.Telegram.Token == "" {
		if value, ok := os.LookupEnv(EnvTelegramToken); ok {
			c.Telegram.Token = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv(EnvBotToken); ok {
			c.Telegram.Token = strings.TrimSpace(value)
		}
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = defaultPollTimeout
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.YTDLPPath = strings.TrimSpace(c.Catalog.YTDLPPath)
	if c.Catalog.YTDLPPath == "" {
		c.Catalog.YTDLPPath = defaultYTDLPPath
	}
	c.Catalog.FFprobePath = strings.TrimSpace(c.Catalog.FFprobePath)
	if c.Catalog.FFprobePath == "" {
		c.Catalog.FFprobePath = defaultFFprobePath
	}

	// bare command names are looked up in PATH, anything else is a file
	var err error
	if strings.ContainsAny(c.Catalog.YTDLPPath, `/\~`) {
		if c.Catalog.YTDLPPath, err = expandPath(c.Catalog.YTDLPPath); err != nil {
			return fmt.Errorf("catalog.ytdlp_path: %w", err)
		}
	}
	if c.Catalog.FFmpegPath, err = expandPath(strings.TrimSpace(c.Catalog.FFmpegPath)); err != nil {
		return fmt.Errorf("catalog.ffmpeg_path: %w", err)
	}
	if strings.ContainsAny(c.Catalog.FFprobePath, `/\~`) {
		if c.Catalog.FFprobePath, err = expandPath(c.Catalog.FFprobePath); err != nil {
			return fmt.Errorf("catalog.ffprobe_path: %w", err)
		}
	}

	if c.Catalog.SearchLimit <= 0 {
		c.Catalog.SearchLimit = defaultSearchLimit
	}
	if c.Catalog.SearchTimeout <= 0 {
		c.Catalog.SearchTimeout = defaultSearchTimeout
	}
	if c.Catalog.PlaylistTimeout <= 0 {
		c.Catalog.PlaylistTimeout = defaultPlaylistTimeout
	}
	return nil
}

func (c *Config) normalizeDownload() error {
	if strings.TrimSpace(c.Download.TempDir) == "" {
		c.Download.TempDir = filepath.Join(os.TempDir(), defaultTempDirName)
	}
	var err error
	if c.Download.TempDir, err = expandPath(strings.TrimSpace(c.Download.TempDir)); err != nil {
		return fmt.Errorf("download.temp_dir: %w", err)
	}

	if c.Download.MaxBytes <= 0 || c.Download.MaxBytes > MaxUploadBytes {
		c.Download.MaxBytes = MaxUploadBytes
	}
	if c.Download.FetchTimeout <= 0 {
		c.Download.FetchTimeout = defaultFetchTimeout
	}
	c.Download.MaxParallel = max(MinParallel, min(c.Download.MaxParallel, MaxParallel))
	if c.Download.StaleArtifactAge <= 0 {
		c.Download.StaleArtifactAge = defaultStaleArtifactAge
	}
	return nil
}

func (c *Config) normalizeBot() {
	c.Bot.Language = strings.ToLower(strings.TrimSpace(c.Bot.Language))
	if c.Bot.Language == "" {
		c.Bot.Language = defaultLanguage
	}
}

func (c *Config) normalizeHealth() {
	c.Health.Bind = strings.TrimSpace(c.Health.Bind)
	if c.Health.Bind == "" {
		c.Health.Bind = defaultHealthBind
	}
}

func (c *Config) normalizeRedis() {
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	if c.Redis.Addr == "" {
		if value, ok := os.LookupEnv(EnvRedisAddr); ok {
			c.Redis.Addr = strings.TrimSpace(value)
		}
	}
	if c.Redis.Password == "" {
		if value, ok := os.LookupEnv(EnvRedisPassword); ok {
			c.Redis.Password = value
		}
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = defaultRedisCacheTTL
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "console", "pretty", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
