// Package core implements the copy primitives the synchronizer is built on:
// single file copies that carry metadata across, and recursive tree merges
// that tolerate existing destination directories.
//
// MergeTree and CopyFile read through io/fs.FS (os.DirFS, embed.FS,
// fstest.MapFS) and write through fs.Filesystem, so they work on in-memory
// targets. CopyDir is the host-to-host variant built on otiai10/copy.
//
// Special files (pipes, sockets, devices) in the source fail the copy, as
// does a destination entry that is the source file itself.
package core

import (
	"context"
	"io"
	iofs "io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"

	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// defaultDirPerm is used for directories created before their source
// permissions are applied.
const defaultDirPerm os.FileMode = 0o755

// Stats summarizes a MergeTree run.
type Stats struct {
	// TargetCreated is true when the destination root did not exist.
	TargetCreated bool

	// FilesCopied is the number of regular files written.
	FilesCopied int

	// DirsMerged is the number of source subdirectories merged.
	DirsMerged int

	// BytesCopied is the total number of content bytes written.
	BytesCopied int64
}

type options struct {
	logger        *slog.Logger
	preserveMode  bool
	preserveTimes bool
}

// Option configures CopyFile and MergeTree.
type Option func(*options)

// WithLogger sets the logger used for per-entry debug records.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPreserveMode controls whether source permission bits are applied to
// copied files and merged directories. Enabled by default.
func WithPreserveMode(preserve bool) Option {
	return func(o *options) {
		o.preserveMode = preserve
	}
}

// WithPreserveTimes controls whether source modification times are applied
// to copied files and merged directories. Enabled by default.
func WithPreserveTimes(preserve bool) Option {
	return func(o *options) {
		o.preserveTimes = preserve
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		preserveMode:  true,
		preserveTimes: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// CopyFile copies the file srcPath of src to dstPath on dst, replacing any
// existing file, and returns the number of bytes written.
//
// Symlinks in src are followed. srcPath must be a regular file and must not
// be the same file as dstPath. Permission bits and modification time are
// copied afterwards unless disabled; the access time is set to the source
// modification time since io/fs does not expose access times. A zero source
// modification time (embed.FS) leaves the destination times untouched.
func CopyFile(src iofs.FS, srcPath string, dst fs.Filesystem, dstPath string, opts ...Option) (int64, error) {
	o := newOptions(opts)
	return copyFile(src, srcPath, dst, dstPath, o)
}

func copyFile(src iofs.FS, srcPath string, dst fs.Filesystem, dstPath string, o *options) (int64, error) {
	ctx := map[string]any{"source": srcPath, "target": dstPath}

	info, err := iofs.Stat(src, srcPath)
	if err != nil {
		return 0, errors.WrapWithContext(err, codeFor(err), "stat source file", ctx)
	}
	if err := checkRegular(info, ctx); err != nil {
		return 0, err
	}

	if existing, err := dst.Stat(dstPath); err == nil {
		if existing.IsDir() {
			return 0, errors.NewWithContext(errors.CodeConflict, "target path is a directory", ctx)
		}
		if os.SameFile(info, existing) {
			return 0, errors.NewWithContext(errors.CodeConflict, "source and target are the same file", ctx)
		}
	}

	in, err := src.Open(srcPath)
	if err != nil {
		return 0, errors.WrapWithContext(err, codeFor(err), "open source file", ctx)
	}
	defer in.Close()

	out, err := dst.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, errors.WrapWithContext(err, codeFor(err), "open target file", ctx)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, errors.WrapWithContext(err, errors.CodeExecutionFailed, "copy file content", ctx)
	}
	if err := out.Close(); err != nil {
		return n, errors.WrapWithContext(err, errors.CodeExecutionFailed, "close target file", ctx)
	}

	if err := applyMetadata(dst, dstPath, info, o); err != nil {
		return n, errors.WrapWithContext(err, errors.CodeExecutionFailed, "copy file metadata", ctx)
	}
	return n, nil
}

// checkRegular rejects directories and special files (pipes, sockets,
// devices). Opening a named pipe blocks until a writer shows up.
func checkRegular(info iofs.FileInfo, ctx map[string]any) error {
	switch mode := info.Mode(); {
	case mode.IsDir():
		return errors.NewWithContext(errors.CodeInvalidInput, "source is a directory", ctx)
	case !mode.IsRegular():
		return errors.NewWithContext(errors.CodeInvalidInput, "source is a special file",
			withMode(ctx, mode))
	}
	return nil
}

func withMode(ctx map[string]any, mode iofs.FileMode) map[string]any {
	out := maps.Clone(ctx)
	out["mode"] = mode.Type().String()
	return out
}

// MergeTree recursively copies the directory srcRoot of src into dstRoot on
// dst. dstRoot and any missing parents are created. Files already present in
// dstRoot but absent from srcRoot are left alone; files present in both are
// overwritten. Existing destination directories are reused.
//
// There is no rollback: on error dstRoot keeps whatever was written so far.
func MergeTree(
	ctx context.Context,
	src iofs.FS,
	srcRoot string,
	dst fs.Filesystem,
	dstRoot string,
	opts ...Option,
) (Stats, error) {
	o := newOptions(opts)
	var stats Stats

	info, err := iofs.Stat(src, srcRoot)
	if err != nil {
		return stats, errors.WrapWithContext(err, codeFor(err), "stat source directory",
			map[string]any{"source": srcRoot})
	}
	if !info.IsDir() {
		return stats, &errors.PlatformError{
			Code:    errors.CodeInvalidInput,
			Message: "source is not a directory",
			Context: map[string]any{"source": srcRoot},
		}
	}

	if !isRoot(dstRoot) {
		created, err := ensureDir(dst, dstRoot)
		if err != nil {
			return stats, err
		}
		stats.TargetCreated = created
	}

	m := &merger{src: src, dst: dst, opts: o, stats: &stats}
	if err := m.mergeDir(ctx, srcRoot, dstRoot); err != nil {
		return stats, err
	}
	return stats, nil
}

// CopyFromEmbedFS merges the directory root of an embedded payload into the
// root of dst. embed.FS reports synthetic read-only permissions and no
// modification times, so neither is applied.
func CopyFromEmbedFS(src iofs.FS, dst fs.Filesystem, root string) error {
	_, err := MergeTree(context.Background(), src, root, dst, "", WithPreserveMode(false))
	return err
}

type merger struct {
	src   iofs.FS
	dst   fs.Filesystem
	opts  *options
	stats *Stats
}

// mergeDir copies the children of srcDir into dstDir, which must exist.
func (m *merger) mergeDir(ctx context.Context, srcDir, dstDir string) error {
	entries, err := iofs.ReadDir(m.src, srcDir)
	if err != nil {
		return errors.WrapWithContext(err, codeFor(err), "read source directory",
			map[string]any{"source": srcDir})
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeCanceled, "merge tree")
		}

		srcPath := path.Join(srcDir, entry.Name())
		dstPath := joinTarget(dstDir, entry.Name())

		mode, err := m.mode(entry, srcPath)
		if err != nil {
			return err
		}

		if mode.IsDir() {
			if err := m.mergeSubdir(ctx, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		n, err := copyFile(m.src, srcPath, m.dst, dstPath, m.opts)
		if err != nil {
			return err
		}
		m.stats.FilesCopied++
		m.stats.BytesCopied += n
		m.opts.logger.Debug("copied file", "source", srcPath, "target", dstPath, "bytes", n)
	}
	return nil
}

func (m *merger) mergeSubdir(ctx context.Context, srcPath, dstPath string) error {
	if _, err := ensureDir(m.dst, dstPath); err != nil {
		return err
	}
	if err := m.mergeDir(ctx, srcPath, dstPath); err != nil {
		return err
	}

	// Directory metadata goes last, writing children changes the mtime.
	info, err := iofs.Stat(m.src, srcPath)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeExecutionFailed, "stat source directory",
			map[string]any{"source": srcPath})
	}
	if err := applyMetadata(m.dst, dstPath, info, m.opts); err != nil {
		return errors.WrapWithContext(err, errors.CodeExecutionFailed, "copy directory metadata",
			map[string]any{"source": srcPath, "target": dstPath})
	}

	m.stats.DirsMerged++
	m.opts.logger.Debug("merged directory", "source", srcPath, "target", dstPath)
	return nil
}

// mode returns the type bits of entry, following symlinks.
func (m *merger) mode(entry iofs.DirEntry, srcPath string) (iofs.FileMode, error) {
	if entry.Type()&iofs.ModeSymlink == 0 {
		return entry.Type(), nil
	}
	info, err := iofs.Stat(m.src, srcPath)
	if err != nil {
		return 0, errors.WrapWithContext(err, errors.CodeExecutionFailed, "resolve source symlink",
			map[string]any{"source": srcPath})
	}
	return info.Mode().Type(), nil
}

// ensureDir makes sure p exists on dst as a directory and reports whether it
// had to be created.
func ensureDir(dst fs.Filesystem, p string) (bool, error) {
	info, err := dst.Stat(p)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, &errors.PlatformError{
			Code:    errors.CodeConflict,
			Message: "target path exists and is not a directory",
			Context: map[string]any{"target": p},
		}
	case !errors.Is(err, iofs.ErrNotExist):
		return false, errors.WrapWithContext(err, codeFor(err), "stat target directory",
			map[string]any{"target": p})
	}

	if err := dst.MkdirAll(p, defaultDirPerm); err != nil {
		return false, errors.WrapWithContext(err, codeFor(err), "create target directory",
			map[string]any{"target": p})
	}
	return true, nil
}

func applyMetadata(dst fs.Filesystem, p string, info iofs.FileInfo, o *options) error {
	if o.preserveMode {
		if err := dst.Chmod(p, info.Mode().Perm()); err != nil && !errors.Is(err, errors.ErrUnsupported) {
			return err
		}
	}
	if o.preserveTimes && !info.ModTime().IsZero() {
		mtime := info.ModTime()
		if err := dst.Chtimes(p, mtime, mtime); err != nil && !errors.Is(err, errors.ErrUnsupported) {
			return err
		}
	}
	return nil
}

func codeFor(err error) errors.ErrorCode {
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return errors.CodeNotFound
	case errors.Is(err, iofs.ErrPermission):
		return errors.CodeForbidden
	default:
		return errors.CodeExecutionFailed
	}
}

func isRoot(p string) bool {
	return p == "" || p == "." || p == string(filepath.Separator)
}

// joinTarget joins a destination directory and a child name. An empty dir
// denotes the filesystem root.
func joinTarget(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
