package catalog

import (
	"context"

	"github.com/ytget/yt-music-bot/internal/model"
)

// Client defines the interface for the catalog.
type Client interface {
	// Search returns up to maxResults tracks in catalog relevance order.
	// No matches is an empty slice, not an error.
	Search(ctx context.Context, query string, maxResults int) ([]model.Track, error)

	// FetchAudio downloads and transcodes trackID into a file that starts
	// with c.OutputBase and returns its path.
	FetchAudio(ctx context.Context, trackID string, c Constraints) (string, error)
}

// PlaylistExpander turns a playlist URL into its tracks
type PlaylistExpander interface {
	Expand(ctx context.Context, url string, limit int) ([]model.Track, error)
}

// Constraints bound a single fetch
type Constraints struct {
	MaxBytes    int64  // the artifact must be strictly smaller
	Format      string // target container, e.g. "mp3"
	BitrateKbps int
	OutputBase  string // path stem; the client writes OutputBase + "." + ext
}
