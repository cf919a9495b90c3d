// Package harness runs the whole application against a scratch project
// root, for tests that cover more than one package.
package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lfdeploy/internal/app"
	"github.com/vk/lfdeploy/internal/pipeline"
	"github.com/vk/lfdeploy/internal/testutil"
)

// Result holds the outcomes of an integration test run.
type Result struct {
	Root      string
	LogOutput string
	Err       error
	App       *app.App
	Report    *pipeline.Report
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) *Result {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, cfg)
}

// RunIntegrationTestWithContext lays out files in a fresh project root and
// runs the app on it. cfg.Source is taken relative to that root. The process
// environment is not visible to the run unless cfg.Environ says otherwise.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *Result {
	t.Helper()

	root := t.TempDir()
	testutil.WriteFiles(t, root, files)

	cfg.Root = root
	if cfg.Source != "" && !filepath.IsAbs(cfg.Source) {
		cfg.Source = filepath.Join(root, filepath.FromSlash(cfg.Source))
	}
	if cfg.Home == "" {
		cfg.Home = filepath.Join(root, "home")
	}
	if cfg.Environ == nil {
		cfg.Environ = []string{}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	logBuffer := &testutil.SafeBuffer{}
	result := &Result{Root: root}
	t.Cleanup(func() {
		if os.Getenv("LFDEPLOY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	validated, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}

	a, err := app.NewApp(logBuffer, validated)
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}
	defer a.Close()
	result.App = a

	result.Report, result.Err = a.Run(ctx)
	result.LogOutput = logBuffer.String()
	return result
}

// StagedPath is where a harness run stages name under the default layout.
func (r *Result) StagedPath(name string) string {
	return filepath.Join(r.Root, "build", "programs", name)
}

// RequireSucceeded fails the test unless the run finished without error.
func (r *Result) RequireSucceeded(t *testing.T) {
	t.Helper()
	require.NoError(t, r.Err, "run failed; logs:\n%s", r.LogOutput)
}
