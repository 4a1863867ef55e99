// Package fstest provides a conformance test suite for fs.Filesystem
// implementations.
//
// The suite validates the interface contract the synchronizer relies on, not
// backend-specific behavior. Providers with documented differences can skip
// individual tests by name.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() fs.Filesystem {
//	        return myprovider.New(t.TempDir())
//	    })
//	}
package fstest

import (
	"slices"
	"testing"

	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// TestSuite runs all conformance tests against a filesystem.
// The newFS function should return a fresh, empty filesystem for each call.
func TestSuite(t *testing.T, newFS func() fs.Filesystem) {
	TestSuiteWithSkip(t, newFS, nil)
}

// TestSuiteWithSkip runs conformance tests with optional test skipping.
// skipTests holds group names ("MetadataFS") or group/test names
// ("WriteFS/CreateInNonExistentDir").
func TestSuiteWithSkip(t *testing.T, newFS func() fs.Filesystem, skipTests []string) {
	groups := []struct {
		name string
		run  func(*testing.T, fs.Filesystem, []string)
	}{
		{"ReadFS", TestReadFS},
		{"WriteFS", TestWriteFS},
		{"WalkFS", TestWalkFS},
		{"MetadataFS", TestMetadataFS},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if slices.Contains(skipTests, g.name) {
				t.Skip("Skipped by provider configuration")
			}
			g.run(t, newFS(), prefixed(g.name, skipTests))
		})
	}
}

// prefixed returns the test names in skip that belong to group, with the
// group prefix removed.
func prefixed(group string, skip []string) []string {
	var out []string
	for _, s := range skip {
		if len(s) > len(group)+1 && s[:len(group)] == group && s[len(group)] == '/' {
			out = append(out, s[len(group)+1:])
		}
	}
	return out
}

// run executes fn as subtest name unless it is listed in skip.
func run(t *testing.T, name string, skip []string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if slices.Contains(skip, name) {
			t.Skip("Skipped by provider configuration")
		}
		fn(t)
	})
}
