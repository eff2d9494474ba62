package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	supportedLanguages = []string{"en", "ru", "pt"}
	supportedLogLevels = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateBot(); err != nil {
		return err
	}
	if err := c.validateRedis(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTelegram() error {
	if c.Telegram.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("telegram.token is required. Set %s or %s env var or edit %s (create with 'musicbot config init')",
			EnvTelegramToken, EnvBotToken, defaultPath)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.SearchLimit > MaxSearchLimit {
		return fmt.Errorf("catalog.search_limit must be at most %d", MaxSearchLimit)
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.TempDir == "" {
		return errors.New("download.temp_dir must be set")
	}
	return nil
}

func (c *Config) validateBot() error {
	if !slices.Contains(supportedLanguages, c.Bot.Language) {
		return fmt.Errorf("bot.language %q is not supported (use one of %v)", c.Bot.Language, supportedLanguages)
	}
	return nil
}

func (c *Config) validateRedis() error {
	if c.Redis.DB < 0 {
		return errors.New("redis.db must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(supportedLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not supported (use one of %v)", c.Logging.Level, supportedLogLevels)
	}
	return nil
}
