package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFileAtomic_PreservesModeAndMtime(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	src := filepath.Join(dir, "zephyr.elf")
	dst := filepath.Join(dir, "out.elf")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o750))
	require.NoError(t, os.Chmod(src, 0o750))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))
	require.NoError(t, os.WriteFile(dst, []byte("old content"), 0o644))

	// --- Act ---
	err := copyFileAtomic(src, dst)

	// --- Assert ---
	require.NoError(t, err)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestCopyFileAtomic_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := copyFileAtomic(filepath.Join(dir, "absent"), filepath.Join(dir, "out"))

	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(statErr))
}
