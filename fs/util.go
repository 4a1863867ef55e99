package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// GetAbs returns path as an absolute, cleaned host path.
func GetAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fs: abs %q: %w", path, err)
	}
	return abs, nil
}

// Resolve returns the absolute form of path with symlinks evaluated. Missing
// trailing elements are kept as-is, so a path that does not exist yet
// resolves through its deepest existing ancestor.
func Resolve(path string) (string, error) {
	abs, err := GetAbs(path)
	if err != nil {
		return "", err
	}

	var rest []string
	dir := abs
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("fs: resolve %q: %w", path, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

// Within reports whether path equals root or lies below it. Both must be
// clean absolute paths.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
