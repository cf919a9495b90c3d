package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lfdeploy/internal/app"
	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/pipeline"
	"github.com/vk/lfdeploy/internal/testutil"
	"github.com/vk/lfdeploy/internal/testutil/harness"
)

func echoFiles() map[string]string {
	return map[string]string{"src/Echo.lf": "target uC"}
}

func TestApp_EchoDeploy(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	spy := testutil.NewSpyRunner().Handle("lfc", testutil.FakeCompiler(t, "Echo", "Echo_client", "Echo_server"))

	// --- Act ---
	result := harness.RunIntegrationTest(t, echoFiles(), app.Config{
		Source:   "src/Echo.lf",
		Mode:     pipeline.ModeAll,
		Compiler: "lfc",
		Runner:   spy,
	})

	// --- Assert ---
	result.RequireSucceeded(t)
	harness.AssertFinishedIn(t, result, pipeline.Transferred)
	harness.AssertLogged(t, result, result.Report.RunID)
	assert.FileExists(t, result.StagedPath("echo_client.elf"))
	assert.FileExists(t, result.StagedPath("echo_server.elf"))

	copies := spy.CallsTo("scp")
	require.Len(t, copies, 2)
	assert.Equal(t, config.DefaultRemote, copies[0].Args[1])
}

func TestApp_ConfigPrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		hcl        string
		dotenv     string
		environ    []string
		flagRemote string
		want       string
	}{
		{name: "defaults", want: config.DefaultRemote},
		{name: "file", hcl: `remote = "file@host:/a"`, want: "file@host:/a"},
		{name: "dotenv beats file", hcl: `remote = "file@host:/a"`, dotenv: "LFDEPLOY_REMOTE=dot@host:/b\n", want: "dot@host:/b"},
		{
			name:    "environment beats dotenv",
			hcl:     `remote = "file@host:/a"`,
			dotenv:  "LFDEPLOY_REMOTE=dot@host:/b\n",
			environ: []string{"LFDEPLOY_REMOTE=env@host:/c"},
			want:    "env@host:/c",
		},
		{
			name:       "flag beats everything",
			hcl:        `remote = "file@host:/a"`,
			dotenv:     "LFDEPLOY_REMOTE=dot@host:/b\n",
			environ:    []string{"LFDEPLOY_REMOTE=env@host:/c"},
			flagRemote: "flag@host:/d",
			want:       "flag@host:/d",
		},
		{name: "file reads env", hcl: `remote = "${env.USERNAME}@board:/lf"`, environ: []string{"USERNAME=pi"}, want: "pi@board:/lf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			files := echoFiles()
			if tc.hcl != "" {
				files[config.FileName] = tc.hcl
			}
			if tc.dotenv != "" {
				files[config.DotEnvFileName] = tc.dotenv
			}

			// --- Act ---
			result := harness.RunIntegrationTest(t, files, app.Config{
				Source:   "src/Echo.lf",
				Mode:     pipeline.ModeClean,
				Remote:   tc.flagRemote,
				Environ:  tc.environ,
				Compiler: "lfc",
				Runner:   testutil.NewSpyRunner(),
			})

			// --- Assert ---
			result.RequireSucceeded(t)
			assert.Equal(t, tc.want, result.App.Model().Remote)
		})
	}
}

func TestApp_TimeoutFlagOverridesFile(t *testing.T) {
	t.Parallel()

	files := echoFiles()
	files[config.FileName] = `tool_timeout = "10m"`
	timeout := 30 * time.Second

	result := harness.RunIntegrationTest(t, files, app.Config{
		Source:  "src/Echo.lf",
		Mode:    pipeline.ModeClean,
		Timeout: &timeout,
		Runner:  testutil.NewSpyRunner(),
	})

	result.RequireSucceeded(t)
	assert.Equal(t, 30*time.Second, result.App.Model().ToolTimeout)
}

func TestApp_ConfigErrors(t *testing.T) {
	t.Parallel()

	t.Run("broken file", func(t *testing.T) {
		t.Parallel()

		files := echoFiles()
		files[config.FileName] = `locate {`
		result := harness.RunIntegrationTest(t, files, app.Config{Source: "src/Echo.lf"})

		harness.AssertFailedWith(t, result, fault.ErrConfig)
		assert.Nil(t, result.App)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		t.Parallel()

		result := harness.RunIntegrationTest(t, echoFiles(), app.Config{
			Source:     "src/Echo.lf",
			ConfigPath: filepath.Join(t.TempDir(), "absent.hcl"),
		})

		harness.AssertFailedWith(t, result, fault.ErrConfig)
	})
}

func TestApp_CompileFailureLeavesNoStagingDir(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner().Handle("lfc", testutil.Exit(1, "error: unknown reactor"))

	result := harness.RunIntegrationTest(t, echoFiles(), app.Config{
		Source:   "src/Echo.lf",
		Mode:     pipeline.ModeAll,
		Compiler: "lfc",
		Runner:   spy,
	})

	harness.AssertFailedWith(t, result, fault.ErrCompileFailed)
	harness.AssertFinishedIn(t, result, pipeline.Failed)
	assert.NoDirExists(t, filepath.Join(result.Root, "build", "programs"))
}

func TestApp_NotifierUnavailableIsNotFatal(t *testing.T) {
	t.Parallel()

	files := echoFiles()
	files[config.FileName] = `
notify {
  url             = "localhost-without-scheme"
  connect_timeout = "100ms"
}
`
	result := harness.RunIntegrationTest(t, files, app.Config{
		Source: "src/Echo.lf",
		Mode:   pipeline.ModeClean,
		Runner: testutil.NewSpyRunner(),
	})

	result.RequireSucceeded(t)
	harness.AssertLogged(t, result, "Notifier unavailable")
}

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lf := filepath.Join(dir, "Echo.lf")
	txt := filepath.Join(dir, "Echo.txt")
	require.NoError(t, os.WriteFile(lf, nil, 0o644))
	require.NoError(t, os.WriteFile(txt, nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Dir.lf"), 0o755))

	testCases := []struct {
		name string
		cfg  app.Config
	}{
		{name: "no source", cfg: app.Config{}},
		{name: "wrong extension", cfg: app.Config{Source: txt}},
		{name: "missing source", cfg: app.Config{Source: filepath.Join(dir, "Nope.lf")}},
		{name: "directory source", cfg: app.Config{Source: filepath.Join(dir, "Dir.lf")}},
		{name: "bad log level", cfg: app.Config{Source: lf, LogLevel: "loud"}},
		{name: "bad log format", cfg: app.Config{Source: lf, LogFormat: "xml"}},
		{name: "missing root", cfg: app.Config{Source: lf, Root: filepath.Join(dir, "nope")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := app.NewConfig(tc.cfg)

			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrUsage), "got %v", err)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := app.NewConfig(app.Config{Source: lf, Root: dir, LogLevel: "DEBUG"})

		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.NotNil(t, cfg.Environ)
	})
}
