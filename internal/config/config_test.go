package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ytget/yt-music-bot/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvTelegramToken, config.EnvBotToken, config.EnvRedisAddr, config.EnvRedisPassword} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvToken(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvBotToken, " 123:abc ")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "musicbot", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("expected token from env, got %q", cfg.Telegram.Token)
	}
	if cfg.Download.TempDir != filepath.Join(os.TempDir(), "musicbot") {
		t.Fatalf("unexpected temp dir %q", cfg.Download.TempDir)
	}
	if cfg.Download.MaxBytes != config.MaxUploadBytes {
		t.Fatalf("unexpected max bytes %d", cfg.Download.MaxBytes)
	}
	if cfg.Health.Bind != "0.0.0.0:8080" || !cfg.Health.Enabled {
		t.Fatalf("unexpected health config %+v", cfg.Health)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected redis disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.Logging.Format != "auto" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.FetchTimeout() != 5*time.Minute || cfg.SearchTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeouts %v %v", cfg.FetchTimeout(), cfg.SearchTimeout())
	}
	if cfg.LockPath() != filepath.Join(cfg.Download.TempDir, "musicbot.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestPreferMusicbotTokenOverBotToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvTelegramToken, "primary")
	t.Setenv(config.EnvBotToken, "secondary")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Telegram.Token != "primary" {
		t.Fatalf("Token = %q, expected primary", cfg.Telegram.Token)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), "telegram.token is required") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestLoadFileNormalizesValues(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvRedisAddr, "redis:6379")

	path := filepath.Join(t.TempDir(), "bot.toml")
	content := `
[telegram]
token = "file-token"

[download]
temp_dir = "~/musicbot-tmp"
max_bytes = 104857600
max_parallel = 42

[bot]
language = " RU "

[logging]
format = "pretty"
level = "DEBUG"
dir = "~/logs"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Telegram.Token != "file-token" {
		t.Fatalf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.Download.TempDir != filepath.Join(tempHome, "musicbot-tmp") {
		t.Fatalf("TempDir = %q", cfg.Download.TempDir)
	}
	if cfg.Download.MaxBytes != config.MaxUploadBytes {
		t.Fatalf("MaxBytes = %d, expected cap", cfg.Download.MaxBytes)
	}
	if cfg.Download.MaxParallel != config.MaxParallel {
		t.Fatalf("MaxParallel = %d, expected clamp to %d", cfg.Download.MaxParallel, config.MaxParallel)
	}
	if cfg.Bot.Language != "ru" {
		t.Fatalf("Language = %q", cfg.Bot.Language)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.LogFile() != filepath.Join(tempHome, "logs", "musicbot.log") {
		t.Fatalf("LogFile() = %q", cfg.LogFile())
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("expected redis addr from env, got %q", cfg.Redis.Addr)
	}
}

func TestMaxParallelClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		expected int
	}{
		{"should raise zero to one", 0, 1},
		{"should raise negative to one", -3, 1},
		{"should keep value in range", 4, 4},
		{"should cap large value", 11, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "c.toml")
			cfg := config.Default()
			cfg.Telegram.Token = "x"
			cfg.Download.MaxParallel = tt.value
			writeConfig(t, path, cfg)

			loaded, _, _, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if loaded.Download.MaxParallel != tt.expected {
				t.Errorf("MaxParallel = %d, expected %d", loaded.Download.MaxParallel, tt.expected)
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"should reject unsupported language", func(c *config.Config) { c.Bot.Language = "de" }, "bot.language"},
		{"should reject unknown log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"should reject huge search limit", func(c *config.Config) { c.Catalog.SearchLimit = 500 }, "catalog.search_limit"},
		{"should reject negative redis db", func(c *config.Config) { c.Redis.DB = -1 }, "redis.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "c.toml")
			cfg := config.Default()
			cfg.Telegram.Token = "x"
			tt.mutate(&cfg)
			writeConfig(t, path, cfg)

			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, expected mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, []byte("[telegram]\ntoken = \"x\"\ntokne = \"y\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvTelegramToken, "from-env")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(sample) returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	defaults := config.Default()
	if cfg.Catalog.SearchLimit != defaults.Catalog.SearchLimit || cfg.Download.MaxParallel != defaults.Download.MaxParallel {
		t.Fatalf("sample drifted from defaults: %+v", cfg)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("expected env token to fill the empty sample token, got %q", cfg.Telegram.Token)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Download.TempDir = filepath.Join(root, "tmp")
	cfg.Logging.Dir = filepath.Join(root, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Download.TempDir, cfg.Logging.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
}

func writeConfig(t *testing.T, path string, cfg config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
