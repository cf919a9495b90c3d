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

// Test for: a tree with the wrong number of federates stops the run
func TestErrorHandling_UnexpectedFederateCount(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	spy := testutil.NewSpyRunner().Handle("lfc", testutil.FakeCompiler(t, "Echo", "client", "relay", "server"))

	// --- Act ---
	result := harness.RunIntegrationTest(t, map[string]string{"src/Echo.lf": "target uC"}, app.Config{
		Source:   "src/Echo.lf",
		Mode:     pipeline.ModeAll,
		Compiler: "lfc",
		Runner:   spy,
	})

	// --- Assert ---
	harness.AssertFailedWith(t, result, fault.ErrUnexpectedFederateCount)
	harness.AssertFinishedIn(t, result, pipeline.Failed)
	assert.Contains(t, result.Err.Error(), "expected 2 federates, found 3")
	assert.Empty(t, spy.CallsTo("scp"))
}
