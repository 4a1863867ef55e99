package core

import (
	"context"
	"os"

	"github.com/otiai10/copy"

	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs/billy"
)

// CopyDir merges the host directory src into the host directory dst with
// the same semantics as MergeTree: dst and its parents are created,
// existing directories are merged, same-named files are overwritten and
// destination-only files are kept. Symlinks in src are followed.
//
// Unlike MergeTree, metadata is also applied to dst itself, and access
// times are copied from src.
func CopyDir(ctx context.Context, src, dst string, opts ...Option) (Stats, error) {
	o := newOptions(opts)
	var stats Stats

	info, err := os.Stat(src)
	if err != nil {
		return stats, errors.WrapWithContext(err, codeFor(err), "stat source directory",
			map[string]any{"source": src})
	}
	if !info.IsDir() {
		return stats, errors.NewWithContext(errors.CodeInvalidInput, "source is not a directory",
			map[string]any{"source": src})
	}

	created, err := ensureDir(billy.NewHostFS(), dst)
	if err != nil {
		return stats, err
	}
	stats.TargetCreated = created

	w := &treeWalker{ctx: ctx, opts: o, stats: &stats}
	perm := copy.PerservePermission
	if !o.preserveMode {
		perm = copy.DoNothing
	}

	err = copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Deep
		},
		OnDirExists: func(_, _ string) copy.DirExistsAction {
			return copy.Merge
		},
		Skip:              w.visit,
		PermissionControl: perm,
		PreserveTimes:     o.preserveTimes,
	})
	if err != nil {
		if errors.GetCode(err) != errors.CodeUnknown {
			return stats, err
		}
		return stats, errors.WrapWithContext(err, codeFor(err), "copy directory tree",
			map[string]any{"source": src, "target": dst})
	}
	return stats, nil
}

// treeWalker vets every entry before copy.Copy touches it and keeps the
// counters.
type treeWalker struct {
	ctx   context.Context
	opts  *options
	stats *Stats
}

func (w *treeWalker) visit(info os.FileInfo, src, dst string) (bool, error) {
	if err := w.ctx.Err(); err != nil {
		return false, errors.Wrap(err, errors.CodeCanceled, "merge tree")
	}

	ctx := map[string]any{"source": src, "target": dst}
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		// Visited again once resolved.
		return false, nil
	}

	existing, err := os.Stat(dst)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, errors.WrapWithContext(err, codeFor(err), "stat target path", ctx)
	}

	if mode.IsDir() {
		if existing != nil && !existing.IsDir() {
			return false, errors.NewWithContext(errors.CodeConflict, "target path exists and is not a directory", ctx)
		}
		w.stats.DirsMerged++
		w.opts.logger.Debug("merging directory", "source", src, "target", dst)
		return false, nil
	}

	if err := checkRegular(info, ctx); err != nil {
		return false, err
	}
	if existing != nil {
		if existing.IsDir() {
			return false, errors.NewWithContext(errors.CodeConflict, "target path is a directory", ctx)
		}
		if os.SameFile(info, existing) {
			return false, errors.NewWithContext(errors.CodeConflict, "source and target are the same file", ctx)
		}
	}

	w.stats.FilesCopied++
	w.stats.BytesCopied += info.Size()
	w.opts.logger.Debug("copying file", "source", src, "target", dst, "bytes", info.Size())
	return false, nil
}
