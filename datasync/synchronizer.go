// Package datasync copies a bundled data directory into a target directory.
//
// Synchronize merges the source tree into the target: missing directories are
// created, files present in both are overwritten with the source content and
// metadata, and files only present in the target are left alone. A missing
// source is reported through Result.SourceMissing rather than as an error.
//
// Example:
//
//	paths, err := datasync.LocatePaths()
//	if err != nil {
//	    return err
//	}
//	res, err := datasync.New(datasync.WithLogger(slog.Default())).
//	    Synchronize(ctx, paths.Source, paths.Target)
//	if err != nil {
//	    return err
//	}
//	if res.SourceMissing {
//	    fmt.Printf("Source directory %s does not exist.\n", res.Source)
//	}
package datasync

import (
	"context"
	iofs "io/fs"
	"log/slog"
	"time"

	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs"
	"github.com/tobiasfaust/esp-handlefiles/fs/core"
)

// Result describes a Synchronize run.
type Result struct {
	// Source and Target are the absolute paths that were used.
	Source string
	Target string

	// SourceMissing is true when Source was not a directory. Nothing was
	// written in that case.
	SourceMissing bool

	// TargetCreated is true when Target did not exist before the run.
	TargetCreated bool

	FilesCopied int
	DirsMerged  int
	BytesCopied int64

	Duration time.Duration
}

// Synchronizer merges source directories into target directories.
// A Synchronizer holds no per-run state and may be reused.
type Synchronizer struct {
	logger   *slog.Logger
	sourceFS SourceFunc
	targetFS fs.Filesystem
	host     bool
}

// New creates a Synchronizer.
func New(opts ...Option) *Synchronizer {
	o := defaultOptions()
	applyOptions(o, opts)

	return &Synchronizer{
		logger:   o.logger,
		sourceFS: o.sourceFS,
		targetFS: o.targetFS,
		host:     o.host,
	}
}

// Synchronize ensures every entry of source exists under target with the
// source's content, permissions and modification time. target and any
// missing parents are created.
//
// If source does not exist as a directory the run stops before touching
// target and the returned Result has SourceMissing set. A target that is
// the source itself or lies inside it, after resolving symlinks, is
// rejected with CodeConflict before anything is written. All other failures
// are returned as errors; there is no retry and no rollback, so target may
// be left partially written.
func (s *Synchronizer) Synchronize(ctx context.Context, source, target string) (*Result, error) {
	start := time.Now()

	if source == "" {
		return nil, errors.New(errors.CodeInvalidInput, "source path cannot be empty")
	}
	if target == "" {
		return nil, errors.New(errors.CodeInvalidInput, "target path cannot be empty")
	}

	srcAbs, err := fs.GetAbs(source)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve source path")
	}
	tgtAbs, err := fs.GetAbs(target)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve target path")
	}

	result := &Result{
		Source: srcAbs,
		Target: tgtAbs,
	}
	fields := []any{"source", srcAbs, "target", tgtAbs}

	srcFS := s.sourceFS(srcAbs)
	ok, err := isDir(srcFS)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeExecutionFailed, "stat source directory",
			map[string]any{"source": srcAbs})
	}
	if !ok {
		s.logger.DebugContext(ctx, "source directory does not exist", fields...)
		result.SourceMissing = true
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := checkOverlap(srcAbs, tgtAbs); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "synchronizing data directory", fields...)

	var stats core.Stats
	if s.host {
		stats, err = core.CopyDir(ctx, srcAbs, tgtAbs, core.WithLogger(s.logger))
	} else {
		stats, err = core.MergeTree(ctx, srcFS, ".", s.targetFS, tgtAbs, core.WithLogger(s.logger))
	}
	result.TargetCreated = stats.TargetCreated
	result.FilesCopied = stats.FilesCopied
	result.DirsMerged = stats.DirsMerged
	result.BytesCopied = stats.BytesCopied
	result.Duration = time.Since(start)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to synchronize data directory",
			append(fields, "error", err, "files_copied", stats.FilesCopied)...)
		return result, errors.WrapWithContext(err, errors.CodeExecutionFailed, "synchronize data directory",
			map[string]any{"source": srcAbs, "target": tgtAbs})
	}

	s.logger.DebugContext(ctx, "data directory synchronized",
		append(fields,
			"target_created", result.TargetCreated,
			"files_copied", result.FilesCopied,
			"dirs_merged", result.DirsMerged,
			"bytes_copied", result.BytesCopied,
			"duration", result.Duration,
		)...)
	return result, nil
}

// checkOverlap rejects a target that resolves to the source directory or to
// a path below it. Copying a directory onto itself truncates every file
// before reading it, and a nested target would be copied into itself.
func checkOverlap(source, target string) error {
	ctx := map[string]any{"source": source, "target": target}

	src, err := fs.Resolve(source)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeExecutionFailed, "resolve source path", ctx)
	}
	tgt, err := fs.Resolve(target)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeExecutionFailed, "resolve target path", ctx)
	}

	switch {
	case src == tgt:
		return errors.NewWithContext(errors.CodeConflict, "target is the source directory", ctx)
	case fs.Within(src, tgt):
		return errors.NewWithContext(errors.CodeConflict, "target is inside the source directory", ctx)
	}
	return nil
}

// isDir reports whether the root of fsys is a directory. A missing root is
// not an error.
func isDir(fsys iofs.FS) (bool, error) {
	info, err := iofs.Stat(fsys, ".")
	switch {
	case err == nil:
		return info.IsDir(), nil
	case errors.Is(err, iofs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
