// Package config holds the settings of the datasync command.
//
// Settings are layered: Default provides the built-in values, a YAML file
// may override them, and command-line flags override both.
//
// # Basic Usage
//
//	loader := config.NewLoader(billy.NewHostFS())
//	cfg, err := loader.Load(ctx, "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.SourceDir, cfg.TargetDir)
//
// A configuration file looks like:
//
//	source_dir: data
//	target_dir: www
//	log:
//	  level: debug
//	  format: json
package config

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/tobiasfaust/esp-handlefiles/datasync"
	"github.com/tobiasfaust/esp-handlefiles/errors"
)

const (
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config is the datasync configuration.
type Config struct {
	// SourceDir is the name of the bundled directory next to the executable.
	SourceDir string `yaml:"source_dir"`

	// TargetDir is the name of the directory created under the working
	// directory.
	TargetDir string `yaml:"target_dir"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the command's logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SourceDir: datasync.DefaultDataDir,
		TargetDir: datasync.DefaultDataDir,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if err := validateDirName("source_dir", c.SourceDir); err != nil {
		return err
	}
	if err := validateDirName("target_dir", c.TargetDir); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Validate checks the level and format names.
func (l LogConfig) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(l.Level)) {
		return errors.NewWithContext(errors.CodeInvalidConfig, "unknown log level",
			map[string]any{"field": "log.level", "value": l.Level})
	}
	if !slices.Contains(logFormats, strings.ToLower(l.Format)) {
		return errors.NewWithContext(errors.CodeInvalidConfig, "unknown log format",
			map[string]any{"field": "log.format", "value": l.Format})
	}
	return nil
}

// SlogLevel converts Level to a slog.Level. Unknown values map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSON reports whether records should be written as JSON.
func (l LogConfig) JSON() bool {
	return strings.EqualFold(l.Format, "json")
}

// validateDirName accepts a single path element.
func validateDirName(field, name string) error {
	ctx := map[string]any{"field": field, "value": name}
	switch {
	case name == "":
		return errors.NewWithContext(errors.CodeInvalidConfig, "directory name cannot be empty", ctx)
	case name == "." || name == "..":
		return errors.NewWithContext(errors.CodeInvalidConfig, "directory name cannot be a relative reference", ctx)
	case strings.ContainsAny(name, `/\`):
		return errors.NewWithContext(errors.CodeInvalidConfig, "directory name cannot contain path separators", ctx)
	}
	return nil
}
