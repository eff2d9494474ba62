package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ytget/yt-music-bot/internal/model"
)

type stubExpander struct {
	url    string
	limit  int
	tracks []model.Track
	err    error
}

func (s *stubExpander) Expand(_ context.Context, url string, limit int) ([]model.Track, error) {
	s.url = url
	s.limit = limit
	return s.tracks, s.err
}

func TestSearchTarget(t *testing.T) {
	if got := SearchTarget("Imagine Dragons - Believer", 20); got != "ytsearch20:Imagine Dragons - Believer" {
		t.Errorf("SearchTarget() = %q", got)
	}
}

func TestParseSearchOutput(t *testing.T) {
	output := `{
		"_type": "playlist",
		"entries": [
			{"id": "a1", "title": "Believer", "channel": "Imagine Dragons", "duration": 204.0},
			null,
			{"id": "", "title": "no id"},
			{"id": "b2", "title": "Thunder", "channel": "", "uploader": "ImagineDragonsVEVO", "duration": null},
			{"id": "c3", "title": "", "duration": 3725}
		]
	}`

	tracks, err := ParseSearchOutput(output)
	if err != nil {
		t.Fatalf("ParseSearchOutput returned error: %v", err)
	}

	expected := []model.Track{
		{ID: "a1", Title: "Believer", Artist: "Imagine Dragons", DurationSeconds: 204},
		{ID: "b2", Title: "Thunder", Artist: "ImagineDragonsVEVO", DurationSeconds: 0},
		{ID: "c3", Title: model.UnknownTitle, Artist: model.UnknownArtist, DurationSeconds: 3725},
	}
	if len(tracks) != len(expected) {
		t.Fatalf("got %d tracks, expected %d", len(tracks), len(expected))
	}
	for i := range expected {
		if tracks[i] != expected[i] {
			t.Errorf("track %d = %+v, expected %+v", i, tracks[i], expected[i])
		}
	}
}

func TestParseSearchOutputEmptyAndInvalid(t *testing.T) {
	tracks, err := ParseSearchOutput("   ")
	if err != nil || len(tracks) != 0 {
		t.Errorf("empty output: tracks=%v err=%v", tracks, err)
	}

	tracks, err = ParseSearchOutput(`{"entries": []}`)
	if err != nil || tracks == nil || len(tracks) != 0 {
		t.Errorf("no entries: tracks=%v err=%v", tracks, err)
	}

	if _, err := ParseSearchOutput("not json"); err == nil {
		t.Error("expected error for invalid output")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewYTDLP(Options{})
	tracks, err := client.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if tracks == nil || len(tracks) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", tracks)
	}
}

func TestSearchExpandsPlaylistURL(t *testing.T) {
	expander := &stubExpander{tracks: []model.Track{{ID: "x", Title: "Song", Artist: model.UnknownArtist}}}
	client := NewYTDLP(Options{Playlists: expander})

	url := "https://www.youtube.com/playlist?list=PL123&si=abc"
	tracks, err := client.Search(context.Background(), url, 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "x" {
		t.Errorf("unexpected tracks: %v", tracks)
	}
	if expander.url != url || expander.limit != 5 {
		t.Errorf("expander called with %q/%d", expander.url, expander.limit)
	}

	expander.err = errors.New("quota")
	if _, err := client.Search(context.Background(), url, 5); !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestFetchAudioEmptyID(t *testing.T) {
	client := NewYTDLP(Options{})
	_, err := client.FetchAudio(context.Background(), "", Constraints{OutputBase: filepath.Join(t.TempDir(), "x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func writeBytes(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func assertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		t.Errorf("leftover file: %s", e.Name())
	}
}

func TestFinishFetch(t *testing.T) {
	client := NewYTDLP(Options{})
	ctx := context.Background()

	t.Run("should return the artifact", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_1")
		writeBytes(t, base+".mp3", 100)

		path, err := client.finishFetch(ctx, base, "mp3", 1000, "", nil)
		if err != nil {
			t.Fatalf("finishFetch returned error: %v", err)
		}
		if path != base+".mp3" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("should reject an artifact at the limit", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_2")
		writeBytes(t, base+".mp3", 1000)

		_, err := client.finishFetch(ctx, base, "mp3", 1000, "", nil)
		if reason, _ := FailureReason(err); reason != ReasonSizeLimit {
			t.Fatalf("expected size-limit, got %v", err)
		}
		assertNoFiles(t, dir)
	})

	t.Run("should reject an empty artifact", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_3")
		writeBytes(t, base+".mp3", 0)

		_, err := client.finishFetch(ctx, base, "mp3", 1000, "", nil)
		if reason, _ := FailureReason(err); reason != ReasonTranscode {
			t.Fatalf("expected transcode, got %v", err)
		}
		assertNoFiles(t, dir)
	})

	t.Run("should report size limit when yt-dlp aborted quietly", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_4")
		writeBytes(t, base+".webm.part", 10)

		output := "[download] File is larger than max-filesize (60000000 bytes > 52428800 bytes). Aborting."
		_, err := client.finishFetch(ctx, base, "mp3", 52428800, output, nil)
		if reason, _ := FailureReason(err); reason != ReasonSizeLimit {
			t.Fatalf("expected size-limit, got %v", err)
		}
		assertNoFiles(t, dir)
	})

	t.Run("should report transcode when no artifact appeared", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_5")
		writeBytes(t, base+".webm", 10)

		_, err := client.finishFetch(ctx, base, "mp3", 1000, "", nil)
		if reason, _ := FailureReason(err); reason != ReasonTranscode {
			t.Fatalf("expected transcode, got %v", err)
		}
		assertNoFiles(t, dir)
	})

	t.Run("should clean up partial files after a failed run", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_6")
		writeBytes(t, base+".webm.part", 10)
		writeBytes(t, base+".webm.ytdl", 1)

		_, err := client.finishFetch(ctx, base, "mp3", 1000, "ERROR: unable to download", errors.New("exit status 1"))
		if reason, _ := FailureReason(err); reason != ReasonNetwork {
			t.Fatalf("expected network, got %v", err)
		}
		assertNoFiles(t, dir)
	})

	t.Run("should keep files of other jobs", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "musicbot_song_7")
		other := filepath.Join(dir, "musicbot_song_77.mp3")
		writeBytes(t, base+".webm.part", 10)
		writeBytes(t, other, 10)

		_, _ = client.finishFetch(ctx, base, "mp3", 1000, "", errors.New("exit status 1"))
		if _, err := os.Stat(other); err != nil {
			t.Errorf("file of another job was removed: %v", err)
		}
	})
}
