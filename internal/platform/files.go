package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Artifact naming
const (
	ArtifactPrefix      = "musicbot_"
	MaxFileNameRunes    = 80
	MaxFileNameBytes    = 200 // leaves room for prefix, suffix and extensions under the 255 byte name limit
	FallbackStemName    = "track"
	StemSuffixSeparator = "_"
)

// Partial files yt-dlp leaves next to an unfinished download
var (
	PartialExtensions = []string{".part", ".ytdl", ".temp"}
)

var unsafeFileNameChars = regexp.MustCompile(`[\\/*?:"<>|\x00-\x1f]`)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// CleanFileName removes characters that are not allowed in file names and
// caps the result at MaxFileNameRunes runes and MaxFileNameBytes bytes
func CleanFileName(name string) string {
	cleaned := unsafeFileNameChars.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, ".")
	if runes := []rune(cleaned); len(runes) > MaxFileNameRunes {
		cleaned = string(runes[:MaxFileNameRunes])
	}
	cleaned = strings.TrimSpace(truncateBytes(cleaned, MaxFileNameBytes))
	if cleaned == "" {
		return FallbackStemName
	}
	return cleaned
}

// ArtifactStem returns dir/musicbot_<clean name>_<suffix>. The suffix makes
// the stem unique per job.
func ArtifactStem(dir, name, suffix string) string {
	return filepath.Join(dir, ArtifactPrefix+CleanFileName(name)+StemSuffixSeparator+suffix)
}

// ArtifactFiles lists every file that belongs to stem: the stem itself and
// anything named stem.<ext>, including partial downloads
func ArtifactFiles(stem string) ([]string, error) {
	matches, err := filepath.Glob(escapeGlob(stem) + ".*")
	if err != nil {
		return nil, fmt.Errorf("glob artifacts: %w", err)
	}
	if _, err := os.Stat(stem); err == nil {
		matches = append(matches, stem)
	}
	return matches, nil
}

// RemoveArtifacts deletes every file that belongs to stem. Missing files are
// not an error.
func RemoveArtifacts(stem string) error {
	files, err := ArtifactFiles(stem)
	if err != nil {
		return err
	}
	var errs []error
	for _, file := range files {
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsWithinStem reports whether path is one of stem's artifact files
func IsWithinStem(path, stem string) bool {
	clean := filepath.Clean(path)
	return clean == filepath.Clean(stem) || strings.HasPrefix(clean, filepath.Clean(stem)+".")
}

// IsPartialFile reports whether filename is an unfinished download
func IsPartialFile(filename string) bool {
	for _, ext := range PartialExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

// PurgeStaleArtifacts removes artifact files in dir older than maxAge and
// returns how many were removed. Files without ArtifactPrefix are left alone.
func PurgeStaleArtifacts(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), ArtifactPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// FileSize returns the size of a regular file
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", path)
	}
	return info.Size(), nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := 0
	for i, r := range s {
		size := utf8.RuneLen(r)
		if size < 0 {
			size = 1
		}
		if i+size > n {
			break
		}
		end = i + size
	}
	return s[:end]
}

func escapeGlob(path string) string {
	replacer := strings.NewReplacer("*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)
	if filepath.Separator == '\\' {
		return path
	}
	return replacer.Replace(path)
}
