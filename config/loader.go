package config

import (
	"bytes"
	"context"
	"io"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs"
)

// FileName is the configuration file looked up in the XDG config
// directories when no explicit path is given.
const FileName = "datasync/config.yml"

// SearchFunc returns the path of an existing configuration file for the
// given relative name, or an error if there is none.
type SearchFunc func(relPath string) (string, error)

// Loader reads configuration files from a filesystem.
type Loader struct {
	fs     fs.Filesystem
	search SearchFunc
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithSearch replaces the XDG lookup used when Load is called without a path.
func WithSearch(fn SearchFunc) LoaderOption {
	return func(l *Loader) {
		l.search = fn
	}
}

// NewLoader creates a Loader reading from filesystem.
func NewLoader(filesystem fs.Filesystem, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:     filesystem,
		search: xdg.SearchConfigFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the configuration read from path layered over Default.
//
// With an empty path the XDG config directories are searched for FileName;
// finding nothing yields the defaults. An explicit path must exist. The
// result is validated before it is returned.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		found, err := l.search(FileName)
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "load configuration")
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
			"failed to read configuration file", map[string]any{"path": path})
	}

	if err := decode(data, cfg); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
			"failed to parse configuration file", map[string]any{"path": path})
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"invalid configuration file", map[string]any{"path": path})
	}
	return cfg, nil
}

// decode unmarshals data over cfg. Unknown keys are rejected and an empty
// document leaves cfg unchanged.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
