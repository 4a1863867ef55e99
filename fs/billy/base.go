package billy

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// hostOS is a billy.Filesystem that passes paths straight to the host OS,
// so relative paths resolve against the process working directory.
type hostOS struct {
	osfs.ChrootOS
}

// Chroot returns a new filesystem rooted at the provided path.
//
//nolint:ireturn // billy.Filesystem is an interface; signature is dictated by upstream.
func (h *hostOS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (h *hostOS) Root() string {
	return "/"
}

// NewHostFS creates a filesystem that accepts host paths unchanged. It is the
// filesystem the synchronizer writes through when copying into the caller's
// working directory.
func NewHostFS() *FS {
	return &FS{
		fs:   &hostOS{},
		host: true,
	}
}
