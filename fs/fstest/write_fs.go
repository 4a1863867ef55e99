package fstest

import (
	"bytes"
	"os"
	"testing"

	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// TestWriteFS tests write operations: Create, OpenFile, WriteFile, MkdirAll, Remove.
func TestWriteFS(t *testing.T, filesystem fs.Filesystem, skip []string) {
	run(t, "CreateAndWrite", skip, func(t *testing.T) {
		data := []byte("test data for Create")

		f, err := filesystem.Create("created.txt")
		if err != nil {
			t.Fatalf("Create(%q): got error %v, want nil", "created.txt", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			t.Fatalf("Write(): got error %v, want nil", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		assertContent(t, filesystem, "created.txt", data)
	})

	run(t, "OpenFileTruncate", skip, func(t *testing.T) {
		if err := filesystem.WriteFile("trunc.txt", []byte("a much longer original body"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): got error %v, want nil", "trunc.txt", err)
		}

		f, err := filesystem.OpenFile("trunc.txt", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			t.Fatalf("OpenFile(%q, O_CREATE|O_WRONLY|O_TRUNC): got error %v, want nil", "trunc.txt", err)
		}
		if _, err := f.Write([]byte("short")); err != nil {
			_ = f.Close()
			t.Fatalf("Write(): got error %v, want nil", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		assertContent(t, filesystem, "trunc.txt", []byte("short"))
	})

	run(t, "MkdirAll", skip, func(t *testing.T) {
		if err := filesystem.MkdirAll("parent/child/grandchild", 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", "parent/child/grandchild", err)
		}
		for _, p := range []string{"parent", "parent/child", "parent/child/grandchild"} {
			info, err := filesystem.Stat(p)
			if err != nil {
				t.Errorf("Stat(%q): got error %v, want nil", p, err)
				continue
			}
			if !info.IsDir() {
				t.Errorf("Stat(%q): IsDir() = false, want true", p)
			}
		}

		// A second call on an existing tree is a no-op.
		if err := filesystem.MkdirAll("parent/child", 0o755); err != nil {
			t.Errorf("MkdirAll(%q) on existing dir: got error %v, want nil", "parent/child", err)
		}
	})

	run(t, "Remove", skip, func(t *testing.T) {
		if err := filesystem.WriteFile("gone.txt", []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): got error %v, want nil", "gone.txt", err)
		}
		if err := filesystem.Remove("gone.txt"); err != nil {
			t.Fatalf("Remove(%q): got error %v, want nil", "gone.txt", err)
		}
		exists, err := filesystem.Exists("gone.txt")
		if err != nil {
			t.Fatalf("Exists(%q): got error %v, want nil", "gone.txt", err)
		}
		if exists {
			t.Errorf("Exists(%q) after Remove: got true, want false", "gone.txt")
		}
	})

	run(t, "CreateInNonExistentDir", skip, func(t *testing.T) {
		if _, err := filesystem.Create("nonexistent/testfile.txt"); err == nil {
			t.Errorf("Create(%q): got nil error, want error", "nonexistent/testfile.txt")
		}
	})
}

func assertContent(t *testing.T, filesystem fs.Filesystem, path string, want []byte) {
	t.Helper()
	got, err := filesystem.ReadFile(path)
	if err != nil {
		t.Errorf("ReadFile(%q): got error %v, want nil", path, err)
		return
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadFile(%q): got %q, want %q", path, got, want)
	}
}
