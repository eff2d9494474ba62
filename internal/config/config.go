package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Telegram contains Bot API settings.
type Telegram struct {
	Token       string `toml:"token"`
	PollTimeout int    `toml:"poll_timeout"` // seconds
}

// Catalog contains yt-dlp and media tool settings.
type Catalog struct {
	YTDLPPath       string `toml:"ytdlp_path"`
	FFmpegPath      string `toml:"ffmpeg_path"`
	FFprobePath     string `toml:"ffprobe_path"`
	AutoInstall     bool   `toml:"auto_install"`
	SearchLimit     int    `toml:"search_limit"`
	SearchTimeout   int    `toml:"search_timeout"`   // seconds
	PlaylistTimeout int    `toml:"playlist_timeout"` // seconds
}

// Download contains pipeline settings.
type Download struct {
	TempDir          string `toml:"temp_dir"`
	MaxBytes         int64  `toml:"max_bytes"`
	FetchTimeout     int    `toml:"fetch_timeout"` // seconds
	MaxParallel      int    `toml:"max_parallel"`
	StaleArtifactAge int    `toml:"stale_artifact_age"` // minutes
}

// Bot contains chat front end settings.
type Bot struct {
	Language string `toml:"language"`
}

// Health contains the HTTP health server settings.
type Health struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Redis contains the optional search cache settings. An empty Addr
// disables the cache.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	CacheTTL int    `toml:"cache_ttl"` // seconds
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for the bot.
type Config struct {
	Telegram Telegram `toml:"telegram"`
	Catalog  Catalog  `toml:"catalog"`
	Download Download `toml:"download"`
	Bot      Bot      `toml:"bot"`
	Health   Health   `toml:"health"`
	Redis    Redis    `toml:"redis"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the temp and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Download.TempDir}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file inside the temp dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.Download.TempDir, defaultLockFileName)
}

// LogFile returns the log file path, or "" when logging to stderr only.
func (c *Config) LogFile() string {
	if c.Logging.Dir == "" {
		return ""
	}
	return filepath.Join(c.Logging.Dir, "musicbot.log")
}

// SearchTimeout returns catalog.search_timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Catalog.SearchTimeout) * time.Second
}

// PlaylistTimeout returns catalog.playlist_timeout as a duration.
func (c *Config) PlaylistTimeout() time.Duration {
	return time.Duration(c.Catalog.PlaylistTimeout) * time.Second
}

// FetchTimeout returns download.fetch_timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Download.FetchTimeout) * time.Second
}

// StaleArtifactAge returns download.stale_artifact_age as a duration.
func (c *Config) StaleArtifactAge() time.Duration {
	return time.Duration(c.Download.StaleArtifactAge) * time.Minute
}

// CacheTTL returns redis.cache_ttl as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTL) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
