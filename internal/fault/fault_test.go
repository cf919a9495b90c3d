package fault

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageAndKind(t *testing.T) {
	t.Parallel()

	err := New(ErrArtifactNotFound, "no zephyr.elf under %s", "/tmp/fed0")

	assert.Equal(t, "artifact not found: no zephyr.elf under /tmp/fed0", err.Error())
	assert.True(t, errors.Is(err, ErrArtifactNotFound))
	assert.False(t, errors.Is(err, ErrTransferFailed))
}

func TestError_WrapKeepsCause(t *testing.T) {
	t.Parallel()

	err := Wrap(ErrInterrupted, context.Canceled, "during %s", "compile")
	wrapped := fmt.Errorf("pipeline: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInterrupted))
	assert.True(t, errors.Is(wrapped, context.Canceled))
	assert.Equal(t, ErrInterrupted, KindOf(wrapped))
	assert.Contains(t, err.Error(), "context canceled")
}

func TestOutputOf(t *testing.T) {
	t.Parallel()

	err := New(ErrCompileFailed, "lfc exited with status 1").WithOutput([]byte("syntax error"))
	wrapped := fmt.Errorf("build: %w", err)

	require.Equal(t, []byte("syntax error"), OutputOf(wrapped))
	assert.Nil(t, OutputOf(errors.New("plain")))
	assert.Nil(t, KindOf(errors.New("plain")))
}
