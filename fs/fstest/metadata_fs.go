package fstest

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// TestMetadataFS tests Chmod and Chtimes. Providers returning
// errors.ErrUnsupported skip the affected test.
func TestMetadataFS(t *testing.T, filesystem fs.Filesystem, skip []string) {
	if err := filesystem.WriteFile("meta.txt", []byte("meta"), 0o644); err != nil {
		t.Fatalf("WriteFile(meta.txt): setup failed: %v", err)
	}

	run(t, "Chtimes", skip, func(t *testing.T) {
		mtime := time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
		err := filesystem.Chtimes("meta.txt", mtime, mtime)
		if errors.Is(err, errors.ErrUnsupported) {
			t.Skip("Chtimes not supported by provider")
		}
		if err != nil {
			t.Fatalf("Chtimes(%q): got error %v, want nil", "meta.txt", err)
		}

		info, err := filesystem.Stat("meta.txt")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "meta.txt", err)
		}
		if !info.ModTime().Equal(mtime) {
			t.Errorf("Stat(%q): ModTime() = %v, want %v", "meta.txt", info.ModTime(), mtime)
		}
	})

	run(t, "Chmod", skip, func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not meaningful on windows")
		}
		err := filesystem.Chmod("meta.txt", 0o600)
		if errors.Is(err, errors.ErrUnsupported) {
			t.Skip("Chmod not supported by provider")
		}
		if err != nil {
			t.Fatalf("Chmod(%q): got error %v, want nil", "meta.txt", err)
		}

		info, err := filesystem.Stat("meta.txt")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "meta.txt", err)
		}
		if got := info.Mode().Perm(); got != 0o600 {
			t.Errorf("Stat(%q): Mode().Perm() = %v, want %v", "meta.txt", got, 0o600)
		}
	})

	run(t, "ChtimesNotExist", skip, func(t *testing.T) {
		err := filesystem.Chtimes("missing.txt", time.Now(), time.Now())
		if errors.Is(err, errors.ErrUnsupported) {
			t.Skip("Chtimes not supported by provider")
		}
		if err == nil {
			t.Errorf("Chtimes(%q): got nil error, want error", "missing.txt")
		}
	})
}
