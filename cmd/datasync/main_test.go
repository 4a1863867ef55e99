package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasfaust/esp-handlefiles/config"
	"github.com/tobiasfaust/esp-handlefiles/datasync"
	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs/billy"
)

type harness struct {
	install string
	wd      string
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	app     *app
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	install, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	exe := filepath.Join(install, "datasync")
	require.NoError(t, os.WriteFile(exe, nil, 0o755))

	h := &harness{install: install, wd: t.TempDir()}
	h.app = newApp(&h.stdout, &h.stderr)
	h.app.loader = config.NewLoader(billy.NewHostFS(), config.WithSearch(func(string) (string, error) {
		return "", stderrors.New("not found")
	}))
	h.app.locate = []datasync.LocateOption{
		datasync.WithExecutable(func() (string, error) { return exe, nil }),
		datasync.WithWorkingDir(func() (string, error) { return h.wd, nil }),
	}
	return h
}

func (h *harness) run(args ...string) error {
	return h.app.command().Run(context.Background(), append([]string{"datasync"}, args...))
}

func (h *harness) writeSource(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(h.install, dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestRun_CopiesBundledData(t *testing.T) {
	h := newHarness(t)
	h.writeSource(t, "data", map[string]string{
		"readme.txt":   "hello",
		"sub/cfg.json": `{"a":1}`,
	})

	require.NoError(t, h.run())

	assert.Equal(t, "hello", readFile(t, filepath.Join(h.wd, "data", "readme.txt")))
	assert.Equal(t, `{"a":1}`, readFile(t, filepath.Join(h.wd, "data", "sub", "cfg.json")))
	assert.Empty(t, h.stdout.String())
	assert.Empty(t, h.stderr.String())
}

func TestRun_MissingSource(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run())

	want := "Source directory " + filepath.Join(h.install, "data") + " does not exist.\n"
	assert.Equal(t, want, h.stdout.String())

	_, err := os.Stat(filepath.Join(h.wd, "data"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_FlagsOverrideDirectories(t *testing.T) {
	h := newHarness(t)
	h.writeSource(t, "payload", map[string]string{"index.html": "<html></html>"})

	require.NoError(t, h.run("--source-dir", "payload", "--target-dir", "www"))

	assert.Equal(t, "<html></html>", readFile(t, filepath.Join(h.wd, "www", "index.html")))
}

func TestRun_EnvironmentVariables(t *testing.T) {
	h := newHarness(t)
	h.writeSource(t, "data", map[string]string{"a.txt": "a"})
	t.Setenv("DATASYNC_TARGET_DIR", "from-env")

	require.NoError(t, h.run())

	assert.Equal(t, "a", readFile(t, filepath.Join(h.wd, "from-env", "a.txt")))
}

func TestRun_ConfigFile(t *testing.T) {
	h := newHarness(t)
	h.writeSource(t, "data", map[string]string{"a.txt": "a"})

	cfgPath := filepath.Join(t.TempDir(), "datasync.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("target_dir: from-file\nlog:\n  level: debug\n  format: json\n"), 0o644))

	t.Run("file values apply", func(t *testing.T) {
		require.NoError(t, h.run("--config", cfgPath))
		assert.Equal(t, "a", readFile(t, filepath.Join(h.wd, "from-file", "a.txt")))
		assert.Contains(t, h.stderr.String(), `"msg":"data directory synchronized"`)
	})

	t.Run("flags win over file", func(t *testing.T) {
		require.NoError(t, h.run("--config", cfgPath, "--target-dir", "from-flag"))
		assert.Equal(t, "a", readFile(t, filepath.Join(h.wd, "from-flag", "a.txt")))
	})
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.ErrorCode
	}{
		{name: "positional argument", args: []string{"extra"}, want: errors.CodeInvalidInput},
		{name: "nested target", args: []string{"--target-dir", "../escape"}, want: errors.CodeInvalidConfig},
		{name: "unknown log level", args: []string{"--log-level", "loud"}, want: errors.CodeInvalidConfig},
		{name: "missing config file", args: []string{"--config", "/does/not/exist.yml"}, want: errors.CodeConfigLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.writeSource(t, "data", map[string]string{"a.txt": "a"})

			err := h.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.GetCode(err))

			_, statErr := os.Stat(filepath.Join(h.wd, "data"))
			assert.ErrorIs(t, statErr, os.ErrNotExist)
		})
	}
}

func TestRun_CopyFailure(t *testing.T) {
	h := newHarness(t)
	h.writeSource(t, "data", map[string]string{"sub/cfg.json": "{}"})
	require.NoError(t, os.MkdirAll(filepath.Join(h.wd, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(h.wd, "data", "sub"), []byte("file"), 0o644))

	err := h.run()
	require.Error(t, err)
	assert.Equal(t, errors.CodeExecutionFailed, errors.GetCode(err))
	assert.True(t, errors.HasCode(err, errors.CodeConflict))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, config.LogConfig{Level: "warn", Format: "text"}).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, config.LogConfig{Level: "debug", Format: "json"}).Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
