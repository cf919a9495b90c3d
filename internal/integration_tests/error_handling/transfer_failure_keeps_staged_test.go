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

// Test for: a failed copy is not retried and keeps the staged files
func TestErrorHandling_TransferFailureKeepsStaged(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	spy := testutil.NewSpyRunner().
		Handle("lfc", testutil.FakeCompiler(t, "Echo", "client", "server")).
		Handle("scp", testutil.Exit(255, "ssh: connect to host hailo-desktop port 22: No route to host"))

	// --- Act ---
	result := harness.RunIntegrationTest(t, map[string]string{"src/Echo.lf": "target uC"}, app.Config{
		Source:   "src/Echo.lf",
		Mode:     pipeline.ModeAll,
		Compiler: "lfc",
		Runner:   spy,
	})

	// --- Assert ---
	harness.AssertFailedWith(t, result, fault.ErrTransferFailed)
	assert.Len(t, spy.CallsTo("scp"), 1)
	assert.Contains(t, string(fault.OutputOf(result.Err)), "No route to host")
	assert.FileExists(t, result.StagedPath("echo_client.elf"))
	assert.FileExists(t, result.StagedPath("echo_server.elf"))
	harness.AssertLogged(t, result, "Pipeline state changed.")
}
