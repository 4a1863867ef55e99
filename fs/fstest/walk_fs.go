package fstest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// TestWalkFS tests Walk and TempDir.
func TestWalkFS(t *testing.T, filesystem fs.Filesystem, skip []string) {
	run(t, "Walk", skip, func(t *testing.T) {
		if err := filesystem.MkdirAll("walk/x/y", 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := filesystem.WriteFile("walk/x/y/z.txt", []byte("z"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := filesystem.WriteFile("walk/top.txt", []byte("t"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		var files []string
		err := filesystem.Walk("walk", func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() {
				rel, relErr := filepath.Rel("walk", path)
				if relErr != nil {
					return relErr
				}
				files = append(files, filepath.ToSlash(rel))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk failed: %v", err)
		}

		slices.Sort(files)
		want := []string{"top.txt", "x/y/z.txt"}
		if !slices.Equal(files, want) {
			t.Errorf("Walk files = %v, want %v", files, want)
		}
	})

	run(t, "TempDir", skip, func(t *testing.T) {
		if err := filesystem.MkdirAll("tmp", 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		td, err := filesystem.TempDir("tmp", "pref-")
		if err != nil {
			t.Fatalf("TempDir failed: %v", err)
		}
		if td == "" {
			t.Fatalf("TempDir returned empty path")
		}
		info, err := filesystem.Stat(td)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", td, err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", td)
		}
	})
}
