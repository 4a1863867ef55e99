package datasync

import (
	"os"
	"path/filepath"

	"github.com/tobiasfaust/esp-handlefiles/errors"
)

// DefaultDataDir is the directory name used for both the bundled source and
// the target under the working directory.
const DefaultDataDir = "data"

// Paths is a resolved source/target pair.
type Paths struct {
	Source string
	Target string
}

type locateOptions struct {
	sourceDir  string
	targetDir  string
	executable func() (string, error)
	workingDir func() (string, error)
}

// LocateOption configures LocatePaths.
type LocateOption func(*locateOptions)

// WithSourceDir sets the name of the bundled directory next to the executable.
func WithSourceDir(name string) LocateOption {
	return func(o *locateOptions) {
		o.sourceDir = name
	}
}

// WithTargetDir sets the name of the target directory under the working
// directory.
func WithTargetDir(name string) LocateOption {
	return func(o *locateOptions) {
		o.targetDir = name
	}
}

// WithExecutable replaces os.Executable.
func WithExecutable(fn func() (string, error)) LocateOption {
	return func(o *locateOptions) {
		o.executable = fn
	}
}

// WithWorkingDir replaces os.Getwd.
func WithWorkingDir(fn func() (string, error)) LocateOption {
	return func(o *locateOptions) {
		o.workingDir = fn
	}
}

// LocatePaths resolves the bundled data directory and the target directory.
//
// The source is a fixed-name directory next to the running executable, with
// symlinks to the executable resolved, so the utility always finds its own
// payload regardless of where it is invoked from. The target is a
// fixed-name directory under the current working directory.
func LocatePaths(opts ...LocateOption) (Paths, error) {
	o := &locateOptions{
		sourceDir:  DefaultDataDir,
		targetDir:  DefaultDataDir,
		executable: os.Executable,
		workingDir: os.Getwd,
	}
	for _, opt := range opts {
		opt(o)
	}

	exe, err := o.executable()
	if err != nil {
		return Paths{}, errors.Wrap(err, errors.CodeInternal, "locate executable")
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return Paths{}, errors.WrapWithContext(err, errors.CodeInternal, "resolve executable path",
			map[string]any{"executable": exe})
	}

	wd, err := o.workingDir()
	if err != nil {
		return Paths{}, errors.Wrap(err, errors.CodeInternal, "get working directory")
	}

	return Paths{
		Source: filepath.Join(filepath.Dir(exe), o.sourceDir),
		Target: filepath.Join(wd, o.targetDir),
	}, nil
}
