package config

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tobiasfaust/esp-handlefiles/datasync"
	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs/billy"
)

var errNoConfig = stderrors.New("no config file")

func notFound(string) (string, error) { return "", errNoConfig }

// setupTestFS returns an in-memory filesystem holding the given files.
func setupTestFS(t *testing.T, files map[string]string) *billy.FS {
	t.Helper()
	fs := billy.NewInMemoryFS()
	for name, content := range files {
		if err := fs.WriteFile(name, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
	}
	return fs
}

func TestLoader_Load_NoFile(t *testing.T) {
	loader := NewLoader(setupTestFS(t, nil), WithSearch(notFound))

	cfg, err := loader.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoader_Load_ExplicitPath(t *testing.T) {
	fs := setupTestFS(t, map[string]string{
		"/etc/datasync.yml": "target_dir: www\nlog:\n  level: debug\n",
	})
	loader := NewLoader(fs, WithSearch(notFound))

	cfg, err := loader.Load(context.Background(), "/etc/datasync.yml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TargetDir != "www" {
		t.Errorf("TargetDir = %q, want %q", cfg.TargetDir, "www")
	}
	// Unset keys keep their defaults.
	if cfg.SourceDir != datasync.DefaultDataDir {
		t.Errorf("SourceDir = %q, want %q", cfg.SourceDir, datasync.DefaultDataDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestLoader_Load_SearchesXDG(t *testing.T) {
	fs := setupTestFS(t, map[string]string{
		"/home/user/.config/datasync/config.yml": "source_dir: payload\nlog:\n  format: json\n",
	})

	var asked string
	loader := NewLoader(fs, WithSearch(func(rel string) (string, error) {
		asked = rel
		return "/home/user/.config/" + rel, nil
	}))

	cfg, err := loader.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if asked != FileName {
		t.Errorf("search asked for %q, want %q", asked, FileName)
	}
	if cfg.SourceDir != "payload" {
		t.Errorf("SourceDir = %q, want payload", cfg.SourceDir)
	}
	if !cfg.Log.JSON() {
		t.Error("Log.JSON() = false, want true")
	}
}

func TestLoader_Load_EmptyFile(t *testing.T) {
	fs := setupTestFS(t, map[string]string{"empty.yml": ""})
	loader := NewLoader(fs, WithSearch(notFound))

	cfg, err := loader.Load(context.Background(), "empty.yml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load = %+v, want defaults", cfg)
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	fs := setupTestFS(t, map[string]string{
		"malformed.yml": "source_dir: [unterminated\n",
		"unknown.yml":   "source_dir: data\nextra: true\n",
		"invalid.yml":   "target_dir: ../escape\n",
		"badlevel.yml":  "log:\n  level: verbose\n",
	})
	loader := NewLoader(fs, WithSearch(notFound))

	tests := []struct {
		path string
		want errors.ErrorCode
	}{
		{path: "missing.yml", want: errors.CodeConfigLoadFailed},
		{path: "malformed.yml", want: errors.CodeConfigLoadFailed},
		{path: "unknown.yml", want: errors.CodeConfigLoadFailed},
		{path: "invalid.yml", want: errors.CodeInvalidConfig},
		{path: "badlevel.yml", want: errors.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tt.path)
			if err == nil {
				t.Fatalf("Load(%s) = nil error, want %s", tt.path, tt.want)
			}
			if code := errors.GetCode(err); code != tt.want {
				t.Errorf("GetCode() = %s, want %s (err: %v)", code, tt.want, err)
			}
		})
	}
}

func TestLoader_Load_Canceled(t *testing.T) {
	fs := setupTestFS(t, map[string]string{"c.yml": "target_dir: www\n"})
	loader := NewLoader(fs, WithSearch(notFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, "c.yml")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load error = %v, want context.Canceled", err)
	}
}
