package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles creates files under root. Keys are slash-separated relative
// paths; values are the file contents.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	}
}

// ZephyrTree returns the files a Zephyr build of program leaves in the
// generated directory, one federate per name, binary content "<fed>-elf".
func ZephyrTree(program string, federates ...string) map[string]string {
	files := make(map[string]string, len(federates))
	for _, fed := range federates {
		files["src-gen/"+program+"/"+fed+"/build/zephyr/zephyr.elf"] = fed + "-elf"
	}
	return files
}

// ReadFile returns the content of path, failing the test if it is missing.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
