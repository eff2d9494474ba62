package testsupport

import (
	"os"
	"testing"
)

// ListFiles returns the names of the entries in dir
func ListFiles(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// AssertEmptyDir fails the test when dir has any entry
func AssertEmptyDir(t testing.TB, dir string) {
	t.Helper()

	if names := ListFiles(t, dir); len(names) != 0 {
		t.Fatalf("expected %s to be empty, found %v", dir, names)
	}
}
