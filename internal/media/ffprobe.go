package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFprobe constants
const (
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeOutputFormat = "json"
	DefaultProbeTimeout = 15 * time.Second
	AudioCodecType      = "audio"
)

// Info is what the pipeline needs to know about an artifact
type Info struct {
	DurationSeconds float64
	BitRate         int64 // bits per second, 0 if unknown
	Codec           string
	FormatName      string
}

// RoundedSeconds returns the duration rounded to whole seconds
func (i Info) RoundedSeconds() int {
	if i.DurationSeconds <= 0 || math.IsNaN(i.DurationSeconds) {
		return 0
	}
	return int(math.Round(i.DurationSeconds))
}

// FFprobe runs the ffprobe executable
type FFprobe struct {
	binary  string
	timeout time.Duration
}

// NewFFprobe creates a prober. An empty binary means "ffprobe" from PATH.
func NewFFprobe(binary string) *FFprobe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = FFprobeCommand
	}
	return &FFprobe{binary: binary, timeout: DefaultProbeTimeout}
}

// SetTimeout sets the timeout for a single probe
func (p *FFprobe) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// Probe inspects path
func (p *FFprobe) Probe(ctx context.Context, path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("ffprobe: empty path")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary, BuildProbeArgs(path)...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Info{}, fmt.Errorf("failed to run ffprobe: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Info{}, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return ParseProbeOutput(output)
}

// BuildProbeArgs builds the ffprobe command arguments
func BuildProbeArgs(path string) []string {
	return []string{
		"-v", FFprobeLogLevel, // Only errors on stderr
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", FFprobeOutputFormat,
		"--", path,
	}
}

type probeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// ParseProbeOutput decodes ffprobe JSON. The container duration wins; the
// first audio stream's duration is the fallback.
func ParseProbeOutput(output []byte) (Info, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := Info{
		DurationSeconds: parseFloat(result.Format.Duration),
		BitRate:         int64(parseFloat(result.Format.BitRate)),
		FormatName:      result.Format.FormatName,
	}
	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, AudioCodecType) {
			continue
		}
		info.Codec = stream.CodecName
		if info.DurationSeconds <= 0 {
			info.DurationSeconds = parseFloat(stream.Duration)
		}
		break
	}
	if info.Codec == "" {
		return info, errors.New("no audio stream found")
	}
	return info, nil
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}
