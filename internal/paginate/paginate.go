package paginate

import (
	"errors"
	"fmt"

	"github.com/ytget/yt-music-bot/internal/model"
)

// PageSize is the number of results shown on one page
const PageSize = 10

// ButtonLabelMaxRunes caps the display name shown on a download button
const ButtonLabelMaxRunes = 40

// ErrOutOfRange is returned for a page index outside [0, PageCount)
var ErrOutOfRange = errors.New("page out of range")

// Entry is a track together with its 1-based rank in the full result set
type Entry struct {
	Rank  int
	Track model.Track
}

// Index returns the 0-based absolute position used in download callbacks
func (e Entry) Index() int {
	return e.Rank - 1
}

// Page is one rendered window over a result set
type Page struct {
	Index   int // 0-based
	Count   int // total number of pages
	Total   int // total number of results
	Items   []Entry
	HasPrev bool
	HasNext bool
}

// PageCount returns ceil(total/size), or 0 for an empty result set
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Slice returns the page at index. Items are copies of the input tracks.
func Slice(results []model.Track, index, size int) (Page, error) {
	count := PageCount(len(results), size)
	if index < 0 || index >= count {
		return Page{}, fmt.Errorf("%w: page %d of %d", ErrOutOfRange, index, count)
	}

	start := index * size
	end := min(start+size, len(results))

	items := make([]Entry, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, Entry{Rank: i + 1, Track: results[i]})
	}

	return Page{
		Index:   index,
		Count:   count,
		Total:   len(results),
		Items:   items,
		HasPrev: index > 0,
		HasNext: index < count-1,
	}, nil
}

// Line renders "<rank>. <artist - title> [<duration>]"
func Line(e Entry) string {
	return fmt.Sprintf("%d. %s [%s]", e.Rank, e.Track.DisplayName(), e.Track.DurationString())
}

// ButtonLabel renders "<rank>. <display name>" with the name cut to
// ButtonLabelMaxRunes runes
func ButtonLabel(e Entry) string {
	return fmt.Sprintf("%d. %s", e.Rank, Truncate(e.Track.DisplayName(), ButtonLabelMaxRunes))
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
