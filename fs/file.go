package fs

import "io"

// File is an open file handle on a Filesystem.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}
