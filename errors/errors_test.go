package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PlatformError
		want string
	}{
		{
			name: "message only",
			err:  New(CodeInvalidInput, "source path is empty"),
			want: "source path is empty",
		},
		{
			name: "with cause",
			err: &PlatformError{
				Code:    CodeExecutionFailed,
				Message: "copy file",
				Cause:   fs.ErrPermission,
			},
			want: "copy file: permission denied",
		},
		{
			name: "context keys are sorted",
			err: &PlatformError{
				Code:    CodeConflict,
				Message: "target is not a directory",
				Context: map[string]any{"target": "/tmp/data", "source": "/opt/data"},
				Cause:   fs.ErrExist,
			},
			want: "target is not a directory [source=/opt/data target=/tmp/data]: file already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
		assert.NoError(t, WrapWithContext(nil, CodeInternal, "unused", map[string]any{"k": 1}))
	})

	t.Run("cause is reachable", func(t *testing.T) {
		err := Wrap(fs.ErrNotExist, CodeNotFound, "stat source")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, fs.ErrNotExist))
		assert.Equal(t, CodeNotFound, GetCode(err))
	})

	t.Run("context is kept", func(t *testing.T) {
		err := WrapWithContext(fs.ErrPermission, CodeForbidden, "create target", map[string]any{"path": "/data"})
		var pe *PlatformError
		require.True(t, stderrors.As(err, &pe))
		assert.Equal(t, "/data", pe.Context["path"])
	})
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))

	inner := Wrap(fs.ErrExist, CodeConflict, "mkdir")
	outer := Wrap(inner, CodeExecutionFailed, "merge tree")
	assert.Equal(t, CodeExecutionFailed, GetCode(outer))
}

func TestHasCode(t *testing.T) {
	inner := Wrap(fs.ErrExist, CodeConflict, "mkdir")
	outer := Wrap(inner, CodeExecutionFailed, "merge tree")

	assert.True(t, HasCode(outer, CodeExecutionFailed))
	assert.True(t, HasCode(outer, CodeConflict))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(fs.ErrExist, CodeConflict))
}
