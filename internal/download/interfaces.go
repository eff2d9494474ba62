package download

import (
	"context"

	"github.com/ytget/yt-music-bot/internal/model"
)

// Runner defines the interface for the download pipeline.
type Runner interface {
	SetUpdateCallback(func(*model.DownloadJob))
	Run(ctx context.Context, track model.Track, deliver Deliverer) (*model.DownloadJob, error)
}

// Deliverer uploads a finished artifact to the user
type Deliverer interface {
	Deliver(ctx context.Context, a Artifact) error
}

// DeliverFunc adapts a function to Deliverer
type DeliverFunc func(ctx context.Context, a Artifact) error

// Deliver calls f(ctx, a)
func (f DeliverFunc) Deliver(ctx context.Context, a Artifact) error {
	return f(ctx, a)
}

// Artifact is a validated audio file together with its upload metadata
type Artifact struct {
	Path            string
	Title           string // at most MetadataMaxRunes runes
	Performer       string // at most MetadataMaxRunes runes
	Caption         string
	DurationSeconds int // 0 if unknown
	SizeBytes       int64
}
