package media

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildProbeArgs(t *testing.T) {
	args := BuildProbeArgs("/tmp/a b.mp3")

	expectedArgs := []string{
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", "/tmp/a b.mp3",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}
	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		duration float64
		rounded  int
		codec    string
		wantErr  bool
	}{
		{
			name:     "should use container duration",
			output:   `{"streams":[{"codec_name":"mp3","codec_type":"audio","duration":"203.9"}],"format":{"duration":"204.486","bit_rate":"192000","format_name":"mp3"}}`,
			duration: 204.486,
			rounded:  204,
			codec:    "mp3",
		},
		{
			name:     "should fall back to stream duration",
			output:   `{"streams":[{"codec_type":"video"},{"codec_name":"mp3","codec_type":"audio","duration":"61.6"}],"format":{"format_name":"mp3"}}`,
			duration: 61.6,
			rounded:  62,
			codec:    "mp3",
		},
		{
			name:    "should fail without audio stream",
			output:  `{"streams":[{"codec_name":"png","codec_type":"video"}],"format":{"duration":"1.0"}}`,
			wantErr: true,
		},
		{
			name:    "should fail on invalid json",
			output:  `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseProbeOutput([]byte(tt.output))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProbeOutput returned error: %v", err)
			}
			if info.DurationSeconds != tt.duration {
				t.Errorf("DurationSeconds = %v, expected %v", info.DurationSeconds, tt.duration)
			}
			if info.RoundedSeconds() != tt.rounded {
				t.Errorf("RoundedSeconds() = %d, expected %d", info.RoundedSeconds(), tt.rounded)
			}
			if info.Codec != tt.codec {
				t.Errorf("Codec = %q, expected %q", info.Codec, tt.codec)
			}
		})
	}
}

func TestRoundedSecondsUnknown(t *testing.T) {
	if got := (Info{}).RoundedSeconds(); got != 0 {
		t.Errorf("RoundedSeconds() = %d, expected 0", got)
	}
}

func TestProbeMissingBinary(t *testing.T) {
	p := NewFFprobe(filepath.Join(t.TempDir(), "no-such-ffprobe"))
	p.SetTimeout(time.Second)

	if _, err := p.Probe(context.Background(), "/tmp/x.mp3"); err == nil {
		t.Error("expected error for missing binary")
	}
	if _, err := p.Probe(context.Background(), " "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNewFFprobeDefaults(t *testing.T) {
	p := NewFFprobe("  ")
	if p.binary != FFprobeCommand {
		t.Errorf("binary = %q, expected %q", p.binary, FFprobeCommand)
	}
	if p.timeout != DefaultProbeTimeout {
		t.Errorf("timeout = %v", p.timeout)
	}
}
