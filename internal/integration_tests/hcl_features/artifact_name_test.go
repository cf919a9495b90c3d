package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/lfdeploy/internal/app"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/pipeline"
	"github.com/vk/lfdeploy/internal/testutil"
	"github.com/vk/lfdeploy/internal/testutil/harness"
)

// Test for: artifact_name is evaluated once per role
func TestHCLFeatures_ArtifactNameExpression(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"src/Echo.lf": "target uC",
		"lfdeploy.hcl": `
staging_dir   = "dist"
artifact_name = "${upper(role)}-${program}.elf"
`,
	}
	spy := testutil.NewSpyRunner().Handle("lfc", testutil.FakeCompiler(t, "Echo", "client", "server"))

	// --- Act ---
	result := harness.RunIntegrationTest(t, files, app.Config{
		Source:   "src/Echo.lf",
		Mode:     pipeline.ModeAll,
		Compiler: "lfc",
		Runner:   spy,
	})

	// --- Assert ---
	result.RequireSucceeded(t)
	var staged []string
	for _, a := range result.Report.Staged {
		staged = append(staged, a.Path)
	}
	assert.Equal(t, []string{
		result.Root + "/dist/CLIENT-Echo.elf",
		result.Root + "/dist/SERVER-Echo.elf",
	}, staged)
}

// Test for: an artifact_name that ignores the role is rejected at load time
func TestHCLFeatures_ArtifactNameMustDependOnRole(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"src/Echo.lf":  "target uC",
		"lfdeploy.hcl": `artifact_name = "${program}.elf"`,
	}
	spy := testutil.NewSpyRunner().Handle("lfc", testutil.FakeCompiler(t, "Echo", "client", "server"))

	// --- Act ---
	result := harness.RunIntegrationTest(t, files, app.Config{
		Source:   "src/Echo.lf",
		Mode:     pipeline.ModeAll,
		Compiler: "lfc",
		Runner:   spy,
	})

	// --- Assert ---
	harness.AssertFailedWith(t, result, fault.ErrConfig)
	assert.Contains(t, result.Err.Error(), "artifact_name")
	assert.Empty(t, spy.Calls(), "nothing runs with colliding artifact names")
	assert.NoDirExists(t, result.Root+"/build/programs")
}
