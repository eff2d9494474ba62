// Package media inspects downloaded audio with ffprobe. The download
// pipeline uses it to fill in the duration when the catalog did not report
// one.
package media
