package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCatalogUnavailable is returned when search cannot reach the catalog
	// or cannot read its answer
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrNotFound is returned when the catalog no longer serves a track
	ErrNotFound = errors.New("track not available in catalog")
)

// Reason classifies a failed fetch
type Reason string

const (
	ReasonNetwork   Reason = "network"
	ReasonSizeLimit Reason = "size-limit"
	ReasonTranscode Reason = "transcode"
	ReasonTimeout   Reason = "timeout"
)

// FetchError is returned by FetchAudio for every failure except ErrNotFound
type FetchError struct {
	Reason Reason
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return "fetch failed: " + string(e.Reason)
	}
	return fmt.Sprintf("fetch failed (%s): %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FailureReason extracts the fetch reason from err. ok is false when err is
// not a FetchError.
func FailureReason(err error) (Reason, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason, true
	}
	return "", false
}

// yt-dlp output fragments used to classify failures
var (
	sizeLimitMarkers = []string{
		"larger than max-filesize",
		"max-filesize",
	}
	notFoundMarkers = []string{
		"video unavailable",
		"private video",
		"this video is not available",
		"this video has been removed",
		"http error 404",
		"does not exist",
	}
	transcodeMarkers = []string{
		"postprocessing",
		"ffmpeg not found",
		"ffprobe and ffmpeg not found",
		"error opening output",
		"conversion failed",
	}
)

// classifyFetch maps a failed yt-dlp run onto the error taxonomy
func classifyFetch(ctx context.Context, output string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Reason: ReasonTimeout, Err: context.DeadlineExceeded}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return &FetchError{Reason: ReasonNetwork, Err: context.Canceled}
	}

	lower := strings.ToLower(output)
	switch {
	case containsAny(lower, sizeLimitMarkers):
		return &FetchError{Reason: ReasonSizeLimit, Err: err}
	case containsAny(lower, notFoundMarkers):
		if err == nil {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case containsAny(lower, transcodeMarkers):
		return &FetchError{Reason: ReasonTranscode, Err: err}
	}
	return &FetchError{Reason: ReasonNetwork, Err: err}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
