package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassifyFetch(t *testing.T) {
	runErr := errors.New("exit status 1")

	tests := []struct {
		name     string
		output   string
		notFound bool
		reason   Reason
	}{
		{name: "should detect size limit", output: "[download] File is larger than max-filesize (60000000 bytes > 52428800 bytes). Aborting.", reason: ReasonSizeLimit},
		{name: "should detect unavailable video", output: "ERROR: [youtube] abc: Video unavailable", notFound: true},
		{name: "should detect private video", output: "ERROR: [youtube] abc: Private video. Sign in", notFound: true},
		{name: "should detect postprocessing failure", output: "ERROR: Postprocessing: audio conversion failed", reason: ReasonTranscode},
		{name: "should detect missing ffmpeg", output: "ERROR: ffprobe and ffmpeg not found", reason: ReasonTranscode},
		{name: "should default to network", output: "ERROR: Unable to download webpage: connection reset", reason: ReasonNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyFetch(context.Background(), tt.output, runErr)
			if tt.notFound {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("classifyFetch() = %v, expected ErrNotFound", err)
				}
				return
			}
			reason, ok := FailureReason(err)
			if !ok {
				t.Fatalf("classifyFetch() = %v, expected FetchError", err)
			}
			if reason != tt.reason {
				t.Errorf("reason = %s, expected %s", reason, tt.reason)
			}
		})
	}
}

func TestClassifyFetchDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := classifyFetch(ctx, "Video unavailable", errors.New("signal: killed"))
	reason, ok := FailureReason(err)
	if !ok || reason != ReasonTimeout {
		t.Fatalf("classifyFetch() = %v, expected timeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("timeout error should wrap context.DeadlineExceeded")
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{Reason: ReasonSizeLimit}
	if err.Error() != "fetch failed: size-limit" {
		t.Errorf("Error() = %q", err.Error())
	}

	cause := errors.New("boom")
	err = &FetchError{Reason: ReasonNetwork, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("FetchError should unwrap to its cause")
	}

	if _, ok := FailureReason(errors.New("plain")); ok {
		t.Error("FailureReason should not match a plain error")
	}
}
