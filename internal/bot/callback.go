package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action is what a button press asks for
type Action int

const (
	ActionPage Action = iota + 1
	ActionDownload
)

// Callback data prefixes
const (
	PagePrefix     = "page_"
	DownloadPrefix = "dl_"
)

// ErrUnknownCallback is returned for callback data this bot did not produce
var ErrUnknownCallback = errors.New("unknown callback data")

func (a Action) String() string {
	switch a {
	case ActionPage:
		return "page"
	case ActionDownload:
		return "download"
	}
	return "unknown"
}

// EncodePage returns the callback data for showing page n (0-based)
func EncodePage(n int) string {
	return PagePrefix + strconv.Itoa(n)
}

// EncodeDownload returns the callback data for downloading the track at
// absolute index n (0-based)
func EncodeDownload(n int) string {
	return DownloadPrefix + strconv.Itoa(n)
}

// DecodeCallback parses data produced by EncodePage or EncodeDownload
func DecodeCallback(data string) (Action, int, error) {
	var (
		action Action
		rest   string
	)
	switch {
	case strings.HasPrefix(data, PagePrefix):
		action, rest = ActionPage, strings.TrimPrefix(data, PagePrefix)
	case strings.HasPrefix(data, DownloadPrefix):
		action, rest = ActionDownload, strings.TrimPrefix(data, DownloadPrefix)
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || strings.HasPrefix(rest, "+") {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	return action, n, nil
}
