package datasync

import (
	iofs "io/fs"
	"log/slog"
	"os"

	"github.com/tobiasfaust/esp-handlefiles/fs"
	"github.com/tobiasfaust/esp-handlefiles/fs/billy"
)

// SourceFunc opens a source directory as a read-only filesystem.
type SourceFunc func(dir string) iofs.FS

type options struct {
	logger   *slog.Logger
	sourceFS SourceFunc
	targetFS fs.Filesystem

	// host is set while both sides are the host filesystem, which lets the
	// copy run host-to-host instead of through the fs abstraction.
	host bool
}

// Option is a functional option for configuring the Synchronizer.
type Option func(*options)

// WithLogger configures the synchronizer with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithSourceFS replaces how source directories are opened. The default is
// os.DirFS.
func WithSourceFS(fn SourceFunc) Option {
	return func(opts *options) {
		opts.sourceFS = fn
		opts.host = false
	}
}

// WithTargetFS replaces the filesystem targets are written to. Target paths
// passed to Synchronize must be valid on it. The default is the host
// filesystem.
func WithTargetFS(filesystem fs.Filesystem) Option {
	return func(opts *options) {
		opts.targetFS = filesystem
		opts.host = false
	}
}

func defaultOptions() *options {
	return &options{
		sourceFS: func(dir string) iofs.FS { return os.DirFS(dir) },
		targetFS: billy.NewHostFS(),
		host:     true,
	}
}

func applyOptions(opts *options, options []Option) {
	for _, option := range options {
		option(opts)
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
}
