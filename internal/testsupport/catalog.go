package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ytget/yt-music-bot/internal/catalog"
	"github.com/ytget/yt-music-bot/internal/model"
)

// FakeCatalog is an in-memory catalog.Client. FetchAudio writes a file of
// FetchSize bytes at OutputBase + ".mp3" unless FetchErr is set.
type FakeCatalog struct {
	mu sync.Mutex

	Results   map[string][]model.Track // keyed by exact query
	SearchErr error

	FetchSize    int64
	FetchErr     error
	FetchDelay   time.Duration // waits this long, honouring ctx
	LeavePartial bool          // on failure, leave a .part file behind

	// OrphanWriteAfter makes a fetch cut short by ctx write OutputBase + ".mp3"
	// this long after returning, the way a surviving ffmpeg child would
	OrphanWriteAfter time.Duration

	searches []string
	fetches  []catalog.Constraints
	active   int
	peak     int
	orphans  int
}

// NewFakeCatalog returns a fake that fetches 1 KiB files
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		Results:   make(map[string][]model.Track),
		FetchSize: 1024,
	}
}

// Search returns a copy of Results[query]
func (f *FakeCatalog) Search(ctx context.Context, query string, _ int) ([]model.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searches = append(f.searches, query)
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Track, len(f.Results[query]))
	copy(out, f.Results[query])
	return out, nil
}

// FetchAudio mimics the yt-dlp client contract
func (f *FakeCatalog) FetchAudio(ctx context.Context, _ string, c catalog.Constraints) (string, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, c)
	f.active++
	f.peak = max(f.peak, f.active)
	delay, fetchErr, size, leavePartial, orphanAfter := f.FetchDelay, f.FetchErr, f.FetchSize, f.LeavePartial, f.OrphanWriteAfter
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if leavePartial {
		_ = os.WriteFile(c.OutputBase+".webm.part", []byte("partial"), 0o644)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			if orphanAfter > 0 {
				time.AfterFunc(orphanAfter, func() { f.writeOrphan(c.OutputBase+".mp3", size) })
			}
			return "", &catalog.FetchError{Reason: catalog.ReasonTimeout, Err: ctx.Err()}
		}
	}
	if fetchErr != nil {
		return "", fetchErr
	}

	path := c.OutputBase + ".mp3"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *FakeCatalog) writeOrphan(path string, size int64) {
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		return
	}
	f.mu.Lock()
	f.orphans++
	f.mu.Unlock()
}

// OrphanWrites returns how many late files were written
func (f *FakeCatalog) OrphanWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orphans
}

// Searches returns the queries seen so far
func (f *FakeCatalog) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// Fetches returns the constraints of every FetchAudio call
func (f *FakeCatalog) Fetches() []catalog.Constraints {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.Constraints(nil), f.fetches...)
}

// PeakConcurrentFetches returns the highest number of overlapping fetches
func (f *FakeCatalog) PeakConcurrentFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

// Tracks builds n tracks with ids t1..tn
func Tracks(n int) []model.Track {
	tracks := make([]model.Track, 0, n)
	for i := 1; i <= n; i++ {
		tracks = append(tracks, model.Track{
			ID:              "t" + strconv.Itoa(i),
			Title:           "Song " + strconv.Itoa(i),
			Artist:          "Artist " + strconv.Itoa(i),
			DurationSeconds: 180 + i,
		})
	}
	return tracks
}
