// Package billy implements the fs.Filesystem interface on top of go-billy.
//
// Three flavours are provided: NewOSFS confines all paths to a host
// directory, NewHostFS accepts host paths as-is, and NewInMemoryFS keeps the
// whole tree in memory for tests.
package billy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/tobiasfaust/esp-handlefiles/fs"
)

// FS implements the Filesystem interface using go-billy.
type FS struct {
	fs billy.Filesystem

	// host is set when fs is backed by the host OS. root is the host
	// directory the billy paths are relative to, empty for NewHostFS.
	host bool
	root string
}

// Create implements Filesystem.Create.
//
//nolint:ireturn // Filesystem returns the fs.File interface.
func (b *FS) Create(name string) (parentfs.File, error) {
	f, err := b.fs.Create(name)
	if err != nil {
		return nil, fmt.Errorf("billy: create %q: %w", name, err)
	}
	return f, nil
}

// Exists implements Filesystem.Exists.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: stat %q: %w", path, err)
	}
}

// MkdirAll implements Filesystem.MkdirAll.
func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path, err)
	}
	return nil
}

// Open implements Filesystem.Open.
//
//nolint:ireturn // Filesystem returns the fs.File interface.
func (b *FS) Open(name string) (parentfs.File, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", name, err)
	}
	return f, nil
}

// OpenFile implements Filesystem.OpenFile.
//
//nolint:ireturn // Filesystem returns the fs.File interface.
func (b *FS) OpenFile(name string, flag int, perm os.FileMode) (parentfs.File, error) {
	f, err := b.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("billy: openfile %q: %w", name, err)
	}
	return f, nil
}

// ReadDir implements Filesystem.ReadDir.
func (b *FS) ReadDir(dirname string) ([]os.FileInfo, error) {
	list, err := b.fs.ReadDir(dirname)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", dirname, err)
	}
	return list, nil
}

// ReadFile implements Filesystem.ReadFile.
func (b *FS) ReadFile(path string) ([]byte, error) {
	bts, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("billy: readfile %q: %w", path, err)
	}
	return bts, nil
}

// Remove implements Filesystem.Remove.
func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return fmt.Errorf("billy: remove %q: %w", name, err)
	}
	return nil
}

// Stat implements Filesystem.Stat.
func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", name, err)
	}
	return info, nil
}

// TempDir implements Filesystem.TempDir.
func (b *FS) TempDir(dir, prefix string) (name string, err error) {
	name, err = util.TempDir(b.fs, dir, prefix)
	if err != nil {
		return "", fmt.Errorf("billy: tempdir dir=%q prefix=%q: %w", dir, prefix, err)
	}
	return name, nil
}

// Walk implements Filesystem.Walk.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	if err := util.Walk(b.fs, root, walkFn); err != nil {
		return fmt.Errorf("billy: walk %q: %w", root, err)
	}
	return nil
}

// WriteFile implements Filesystem.WriteFile.
func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, filename, data, perm); err != nil {
		return fmt.Errorf("billy: writefile %q: %w", filename, err)
	}
	return nil
}

// Chmod implements Filesystem.Chmod.
func (b *FS) Chmod(name string, mode os.FileMode) error {
	var err error
	switch ch, ok := b.fs.(billy.Change); {
	case b.host:
		err = os.Chmod(b.hostPath(name), mode)
	case ok:
		err = ch.Chmod(name, mode)
	default:
		err = errors.ErrUnsupported
	}
	if err != nil {
		return fmt.Errorf("billy: chmod %q mode=%v: %w", name, mode, err)
	}
	return nil
}

// Chtimes implements Filesystem.Chtimes.
func (b *FS) Chtimes(name string, atime, mtime time.Time) error {
	var err error
	switch ch, ok := b.fs.(billy.Change); {
	case b.host:
		err = os.Chtimes(b.hostPath(name), atime, mtime)
	case ok:
		err = ch.Chtimes(name, atime, mtime)
	default:
		err = errors.ErrUnsupported
	}
	if err != nil {
		return fmt.Errorf("billy: chtimes %q: %w", name, err)
	}
	return nil
}

// hostPath maps a billy path onto the host path backing it.
func (b *FS) hostPath(name string) string {
	if b.root == "" {
		return name
	}
	return filepath.Join(b.root, name)
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // returning interface here is intentional to expose the adapter target.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}

// NewFS creates a new FS using the given go-billy filesystem. Metadata
// changes are only recorded when fsys implements billy.Change.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{
		fs: fsys,
	}
}

// NewInMemoryFS creates a new in-memory filesystem.
func NewInMemoryFS() *FS {
	return &FS{
		fs: memfs.New(),
	}
}

// NewOSFS creates a new OS filesystem confined to the host directory path.
func NewOSFS(path string) *FS {
	return &FS{
		fs:   osfs.New(path),
		host: true,
		root: path,
	}
}
