package model

import (
	"fmt"
	"strings"
)

// Display fallbacks
const (
	UnknownTitle    = "Unknown Title"
	UnknownArtist   = "Unknown Artist"
	UnknownDuration = "??:??"
)

// Track is a single catalog result. Values are immutable once produced by
// the catalog client and are passed around by copy.
type Track struct {
	ID              string // catalog identifier, stable for re-fetch
	Title           string
	Artist          string // channel name, or uploader when the channel is empty
	DurationSeconds int    // 0 if unknown
}

// NewTrack builds a Track applying the artist and title fallbacks.
func NewTrack(id, title, channel, uploader string, durationSeconds float64) Track {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UnknownTitle
	}
	artist := strings.TrimSpace(channel)
	if artist == "" {
		artist = strings.TrimSpace(uploader)
	}
	if artist == "" {
		artist = UnknownArtist
	}
	duration := 0
	if durationSeconds > 0 {
		duration = int(durationSeconds)
	}
	return Track{
		ID:              id,
		Title:           title,
		Artist:          artist,
		DurationSeconds: duration,
	}
}

// DisplayName returns "artist - title"
func (t Track) DisplayName() string {
	return t.Artist + " - " + t.Title
}

// HasDuration reports whether the catalog knows the track length
func (t Track) HasDuration() bool {
	return t.DurationSeconds > 0
}

// DurationString returns the duration as mm:ss, h:mm:ss for an hour or
// longer, or "??:??" if unknown
func (t Track) DurationString() string {
	return FormatDuration(t.DurationSeconds)
}

// FormatDuration formats seconds the same way Track.DurationString does
func FormatDuration(totalSec int) string {
	if totalSec <= 0 {
		return UnknownDuration
	}

	hours := totalSec / 3600
	minutes := (totalSec % 3600) / 60
	seconds := totalSec % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
