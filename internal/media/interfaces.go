package media

import "context"

// Prober defines the interface for audio inspection.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}
