package config

const (
	defaultPollTimeout       = 60
	defaultYTDLPPath         = "yt-dlp"
	defaultFFprobePath       = "ffprobe"
	defaultSearchLimit       = 20
	defaultSearchTimeout     = 30
	defaultPlaylistTimeout   = 60
	defaultMaxBytes          = MaxUploadBytes
	defaultFetchTimeout      = 300
	defaultMaxParallel       = 2
	defaultStaleArtifactAge  = 60
	defaultLanguage          = "en"
	defaultHealthEnabled     = true
	defaultHealthBind        = "0.0.0.0:8080"
	defaultRedisCacheTTL     = 1800
	defaultLogFormat         = "auto"
	defaultLogLevel          = "info"
	defaultTempDirName       = "musicbot"
	defaultConfigPath        = "~/.config/musicbot/config.toml"
	defaultProjectConfigFile = "musicbot.toml"
	defaultLockFileName      = "musicbot.lock"
)

// Limits
const (
	MaxUploadBytes = 50 * 1024 * 1024
	MinParallel    = 1
	MaxParallel    = 10
	MaxSearchLimit = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Telegram: Telegram{
			PollTimeout: defaultPollTimeout,
		},
		Catalog: Catalog{
			YTDLPPath:       defaultYTDLPPath,
			FFprobePath:     defaultFFprobePath,
			SearchLimit:     defaultSearchLimit,
			SearchTimeout:   defaultSearchTimeout,
			PlaylistTimeout: defaultPlaylistTimeout,
		},
		Download: Download{
			MaxBytes:         defaultMaxBytes,
			FetchTimeout:     defaultFetchTimeout,
			MaxParallel:      defaultMaxParallel,
			StaleArtifactAge: defaultStaleArtifactAge,
		},
		Bot: Bot{
			Language: defaultLanguage,
		},
		Health: Health{
			Enabled: defaultHealthEnabled,
			Bind:    defaultHealthBind,
		},
		Redis: Redis{
			CacheTTL: defaultRedisCacheTTL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
