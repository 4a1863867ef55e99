// Package fs defines the writable filesystem abstraction the data
// synchronizer copies into. Sources are read through the standard io/fs.FS
// interface; destinations go through Filesystem so they can be backed by the
// host OS or an in-memory tree in tests.
package fs

import (
	"os"
	"path/filepath"
	"time"
)

// Filesystem is a writable filesystem.
//
// Paths use the host separator and are interpreted relative to the root of
// the implementation.
type Filesystem interface {
	Create(name string) (File, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadDir(dirname string) ([]os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
	TempDir(dir, prefix string) (string, error)
	Walk(root string, walkFn filepath.WalkFunc) error
	WriteFile(filename string, data []byte, perm os.FileMode) error

	// Chmod changes the permission bits of name. Implementations that cannot
	// record permissions return an error wrapping errors.ErrUnsupported.
	Chmod(name string, mode os.FileMode) error

	// Chtimes changes the access and modification times of name.
	// Implementations that cannot record times return an error wrapping
	// errors.ErrUnsupported.
	Chtimes(name string, atime, mtime time.Time) error
}
