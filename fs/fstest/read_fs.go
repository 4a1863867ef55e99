package fstest

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"testing"

	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// TestReadFS tests read operations: Open, Stat, ReadDir, ReadFile, Exists.
func TestReadFS(t *testing.T, filesystem fs.Filesystem, skip []string) {
	content := []byte("test file content")

	if err := filesystem.MkdirAll("testdir", 0o755); err != nil {
		t.Fatalf("MkdirAll(testdir): setup failed: %v", err)
	}
	if err := filesystem.WriteFile("testdir/testfile.txt", content, 0o644); err != nil {
		t.Fatalf("WriteFile(testdir/testfile.txt): setup failed: %v", err)
	}

	run(t, "Open", skip, func(t *testing.T) {
		f, err := filesystem.Open("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Open(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				t.Errorf("Close(): got error %v", closeErr)
			}
		}()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll(): got error %v, want nil", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadAll(): got %q, want %q", data, content)
		}
	})

	run(t, "StatFile", skip, func(t *testing.T) {
		info, err := filesystem.Stat("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		if info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = true, want false", "testdir/testfile.txt")
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat(%q): Size() = %d, want %d", "testdir/testfile.txt", info.Size(), len(content))
		}
	})

	run(t, "StatDir", skip, func(t *testing.T) {
		info, err := filesystem.Stat("testdir")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "testdir", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", "testdir")
		}
	})

	run(t, "ReadDir", skip, func(t *testing.T) {
		entries, err := filesystem.ReadDir("testdir")
		if err != nil {
			t.Fatalf("ReadDir(%q): got error %v, want nil", "testdir", err)
		}
		if len(entries) != 1 {
			t.Fatalf("ReadDir(%q): got %d entries, want 1", "testdir", len(entries))
		}
		if entries[0].Name() != "testfile.txt" {
			t.Errorf("ReadDir(%q): got entry name %q, want %q", "testdir", entries[0].Name(), "testfile.txt")
		}
	})

	run(t, "ReadFile", skip, func(t *testing.T) {
		data, err := filesystem.ReadFile("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadFile(%q): got %q, want %q", "testdir/testfile.txt", data, content)
		}
	})

	run(t, "OpenNotExist", skip, func(t *testing.T) {
		_, err := filesystem.Open("nonexistent")
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Open(%q): got error %v, want fs.ErrNotExist", "nonexistent", err)
		}
	})

	run(t, "Exists", skip, func(t *testing.T) {
		for path, want := range map[string]bool{
			"testdir/testfile.txt": true,
			"testdir":              true,
			"nonexistent":          false,
		} {
			got, err := filesystem.Exists(path)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", path, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q): got %v, want %v", path, got, want)
			}
		}
	})
}
