package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-music-bot/internal/model"
	"github.com/ytget/yt-music-bot/internal/platform"
)

// Search defaults
const (
	DefaultSearchLimit   = 20
	DefaultSearchTimeout = 30 * time.Second
	SearchPrefix         = "ytsearch"
)

// Fetch defaults
const (
	BestAudioFormat     = "bestaudio/best"
	DefaultAudioFormat  = "mp3"
	DefaultBitrateKbps  = 192
	OutputTemplateExt   = ".%(ext)s"
	AudioQualitySuffix  = "K"
	VideoURLTemplate    = "https://www.youtube.com/watch?v=%s"
	maxStderrInErrorLen = 300
)

// Options configure a YTDLP client
type Options struct {
	Binary         string // yt-dlp executable; empty means the one go-ytdlp resolves
	FFmpegLocation string
	SearchTimeout  time.Duration
	Playlists      PlaylistExpander // nil disables playlist URL expansion
	Logger         *slog.Logger
}

// YTDLP is the catalog client backed by the yt-dlp executable
type YTDLP struct {
	binary        string
	ffmpegPath    string
	searchTimeout time.Duration
	playlists     PlaylistExpander
	logger        *slog.Logger
}

// NewYTDLP creates a yt-dlp backed client
func NewYTDLP(opts Options) *YTDLP {
	timeout := opts.SearchTimeout
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLP{
		binary:        opts.Binary,
		ffmpegPath:    opts.FFmpegLocation,
		searchTimeout: timeout,
		playlists:     opts.Playlists,
		logger:        logger,
	}
}

// Install makes sure a yt-dlp executable is available, downloading one into
// the go-ytdlp cache if needed, and returns its path
func Install(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("install yt-dlp: %w", err)
	}
	return resolved.Executable, nil
}

// Search runs a catalog text search, or expands the playlist when query is
// a playlist URL
func (y *YTDLP) Search(ctx context.Context, query string, maxResults int) ([]model.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Track{}, nil
	}
	if maxResults <= 0 {
		maxResults = DefaultSearchLimit
	}

	if y.playlists != nil && IsPlaylistURL(query) {
		tracks, err := y.playlists.Expand(ctx, query, maxResults)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		return tracks, nil
	}

	ctx, cancel := context.WithTimeout(ctx, y.searchTimeout)
	defer cancel()

	started := time.Now()
	res, err := y.command().
		FlatPlaylist().
		DumpSingleJSON().
		SkipDownload().
		Quiet().
		NoWarnings().
		Run(ctx, SearchTarget(query, maxResults))
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrCatalogUnavailable, err, stderrHint(res))
	}

	tracks, err := ParseSearchOutput(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if len(tracks) > maxResults {
		tracks = tracks[:maxResults]
	}

	y.logger.Debug("catalog search finished",
		"query", query,
		"results", len(tracks),
		"elapsed", time.Since(started))
	return tracks, nil
}

// FetchAudio downloads the best audio stream of trackID and transcodes it
// to c.Format at c.BitrateKbps
func (y *YTDLP) FetchAudio(ctx context.Context, trackID string, c Constraints) (string, error) {
	if strings.TrimSpace(trackID) == "" {
		return "", ErrNotFound
	}
	if c.OutputBase == "" {
		return "", &FetchError{Reason: ReasonTranscode, Err: errors.New("empty output base")}
	}
	format := c.Format
	if format == "" {
		format = DefaultAudioFormat
	}
	bitrate := c.BitrateKbps
	if bitrate <= 0 {
		bitrate = DefaultBitrateKbps
	}

	cmd := y.command().
		Format(BestAudioFormat).
		ExtractAudio().
		AudioFormat(format).
		AudioQuality(strconv.Itoa(bitrate) + AudioQualitySuffix).
		NoPlaylist().
		NoProgress().
		NoWarnings().
		Output(c.OutputBase + OutputTemplateExt)
	if c.MaxBytes > 0 {
		cmd.MaxFileSize(strconv.FormatInt(c.MaxBytes, 10))
	}
	if y.ffmpegPath != "" {
		cmd.FFmpegLocation(y.ffmpegPath)
	}

	res, err := cmd.Run(ctx, fmt.Sprintf(VideoURLTemplate, trackID))
	var output string
	if res != nil {
		output = res.Stdout + "\n" + res.Stderr
	}
	return y.finishFetch(ctx, c.OutputBase, format, c.MaxBytes, output, err)
}

// finishFetch checks what yt-dlp left under base. Anything other than a
// usable artifact removes every file under base.
func (y *YTDLP) finishFetch(ctx context.Context, base, format string, maxBytes int64, output string, runErr error) (string, error) {
	if runErr != nil {
		y.cleanup(base)
		return "", classifyFetch(ctx, output, runErr)
	}

	path := base + "." + format
	size, err := platform.FileSize(path)
	switch {
	case err != nil:
		y.cleanup(base)
		if containsAny(strings.ToLower(output), sizeLimitMarkers) {
			return "", &FetchError{Reason: ReasonSizeLimit, Err: errors.New("source exceeds size limit")}
		}
		return "", &FetchError{Reason: ReasonTranscode, Err: fmt.Errorf("no %s artifact produced", format)}
	case size == 0:
		y.cleanup(base)
		return "", &FetchError{Reason: ReasonTranscode, Err: errors.New("empty artifact")}
	case maxBytes > 0 && size >= maxBytes:
		y.cleanup(base)
		return "", &FetchError{Reason: ReasonSizeLimit, Err: fmt.Errorf("artifact is %d bytes, limit %d", size, maxBytes)}
	}
	return path, nil
}

func (y *YTDLP) cleanup(base string) {
	if err := platform.RemoveArtifacts(base); err != nil {
		y.logger.Warn("failed to remove partial download", "base", base, "error", err)
	}
}

func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New()
	if y.binary != "" {
		cmd.SetExecutable(y.binary)
	}
	return cmd
}

// SearchTarget builds the yt-dlp search pseudo-URL "ytsearchN:query"
func SearchTarget(query string, maxResults int) string {
	return SearchPrefix + strconv.Itoa(maxResults) + ":" + query
}

type searchEntry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Channel  string   `json:"channel"`
	Uploader string   `json:"uploader"`
	Duration *float64 `json:"duration"`
}

type searchResult struct {
	Entries []*searchEntry `json:"entries"`
}

// ParseSearchOutput reads the flat single-JSON document yt-dlp prints for a
// search. Entries without an id are skipped.
func ParseSearchOutput(output string) ([]model.Track, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return []model.Track{}, nil
	}

	var result searchResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		return nil, fmt.Errorf("decode search output: %w", err)
	}

	tracks := make([]model.Track, 0, len(result.Entries))
	for _, entry := range result.Entries {
		if entry == nil || entry.ID == "" {
			continue
		}
		var duration float64
		if entry.Duration != nil {
			duration = *entry.Duration
		}
		tracks = append(tracks, model.NewTrack(entry.ID, entry.Title, entry.Channel, entry.Uploader, duration))
	}
	return tracks, nil
}

func stderrHint(res *ytdlp.Result) string {
	if res == nil {
		return ""
	}
	stderr := strings.TrimSpace(res.Stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > maxStderrInErrorLen {
		stderr = stderr[len(stderr)-maxStderrInErrorLen:]
	}
	return ": " + stderr
}
