package locate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
)

func mkfile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("ELF"), 0o755))
	return path
}

func candidate(t *testing.T) model.FederateCandidate {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "EchoClient")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return model.FederateCandidate{Name: "EchoClient", Dir: dir}
}

func TestResolve_FixedPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c := candidate(t)
	want := mkfile(t, c.Dir, "build/zephyr/zephyr.elf")
	mkfile(t, c.Dir, "build/aaa/zephyr.elf")

	// --- Act ---
	got, err := Default().Resolve(context.Background(), model.RoleClient, c)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, want, got.Path)
	assert.Equal(t, "fixed:build/zephyr/zephyr.elf", got.Probe)
	assert.Equal(t, model.RoleClient, got.Role)
	assert.Equal(t, c, got.Candidate)
}

func TestResolve_FallsBackToSearchAtNonStandardDepth(t *testing.T) {
	t.Parallel()

	c := candidate(t)
	want := mkfile(t, c.Dir, "out/west/build/zephyr/zephyr.elf")

	got, err := Default().Resolve(context.Background(), model.RoleServer, c)

	require.NoError(t, err)
	assert.Equal(t, want, got.Path)
	assert.Equal(t, "search:zephyr.elf", got.Probe)
}

func TestResolve_MultipleMatchesPicksSortedFirst(t *testing.T) {
	t.Parallel()

	c := candidate(t)
	mkfile(t, c.Dir, "z/zephyr.elf")
	want := mkfile(t, c.Dir, "b/intermediate/zephyr.elf")
	mkfile(t, c.Dir, "c/zephyr.elf")

	for i := 0; i < 3; i++ {
		got, err := Default().Resolve(context.Background(), model.RoleClient, c)
		require.NoError(t, err)
		assert.Equal(t, want, got.Path)
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	c := candidate(t)
	mkfile(t, c.Dir, "build/zephyr/zephyr.bin")
	require.NoError(t, os.MkdirAll(filepath.Join(c.Dir, "build", "zephyr", "zephyr.elf"), 0o755))

	_, err := Default().Resolve(context.Background(), model.RoleClient, c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrArtifactNotFound))
	assert.Contains(t, err.Error(), c.Dir)
}

func TestResolve_GlobProbe(t *testing.T) {
	t.Parallel()

	c := candidate(t)
	want := mkfile(t, c.Dir, "cmake-out/app/firmware.elf")
	loc := New(FixedPath{Rel: DefaultBinaryPath}, Glob{Pattern: "cmake-out/**/*.elf"}, Search{File: DefaultBinaryName})

	got, err := loc.Resolve(context.Background(), model.RoleClient, c)

	require.NoError(t, err)
	assert.Equal(t, want, got.Path)
	assert.Equal(t, "glob:cmake-out/**/*.elf", got.Probe)
}

func TestResolve_ProbeErrorIsArtifactNotFound(t *testing.T) {
	t.Parallel()

	c := model.FederateCandidate{Name: "gone", Dir: filepath.Join(t.TempDir(), "gone")}

	_, err := New(Search{File: DefaultBinaryName}).Resolve(context.Background(), model.RoleClient, c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrArtifactNotFound))
}

func TestResolve_CancelledContext(t *testing.T) {
	t.Parallel()

	c := candidate(t)
	mkfile(t, c.Dir, "build/zephyr/zephyr.elf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Default().Resolve(ctx, model.RoleClient, c)

	assert.ErrorIs(t, err, context.Canceled)
}
