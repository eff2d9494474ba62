package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-music-bot/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// PlaylistService expands YouTube playlist URLs into tracks
type PlaylistService struct {
	timeout time.Duration
}

// NewPlaylistService creates a new playlist expander
func NewPlaylistService() *PlaylistService {
	return &PlaylistService{
		timeout: DefaultPlaylistTimeout,
	}
}

// SetTimeout sets the timeout for expansion
func (p *PlaylistService) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// Expand lists up to limit playlist items in playlist order. Items carry no
// channel or duration, so the tracks use the model fallbacks.
func (p *PlaylistService) Expand(ctx context.Context, url string, limit int) ([]model.Track, error) {
	if !IsPlaylistURL(url) {
		return nil, fmt.Errorf("invalid playlist URL: %s", url)
	}

	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	tracks := make([]model.Track, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		tracks = append(tracks, model.NewTrack(it.VideoID, it.Title, "", "", 0))
		if limit > 0 && len(tracks) == limit {
			break
		}
	}
	return tracks, nil
}

// IsPlaylistURL reports whether the text is a URL carrying a playlist id
func IsPlaylistURL(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return false
	}
	return strings.Contains(text, PlaylistParam)
}

// ExtractPlaylistID extracts the playlist ID from the list= parameter
func ExtractPlaylistID(url string) string {
	_, after, found := strings.Cut(url, PlaylistParam)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, ParamSeparator)
	return strings.TrimSpace(id)
}
