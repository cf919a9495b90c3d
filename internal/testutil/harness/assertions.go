package harness

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lfdeploy/internal/pipeline"
)

// AssertFinishedIn checks the final state of the run's report.
func AssertFinishedIn(t *testing.T, result *Result, state pipeline.State) {
	t.Helper()
	require.NotNil(t, result.Report, "run produced no report: %v", result.Err)
	require.Equal(t, state, result.Report.State, "unexpected final state; error: %v", result.Err)
}

// AssertFailedWith checks that the run failed with an error of the given kind.
func AssertFailedWith(t *testing.T, result *Result, kind error) {
	t.Helper()
	require.Error(t, result.Err)
	require.True(t, errors.Is(result.Err, kind), "expected %v, got %v", kind, result.Err)
}

// AssertLogged checks the captured log output for a substring.
func AssertLogged(t *testing.T, result *Result, substr string) {
	t.Helper()
	require.True(t, strings.Contains(result.LogOutput, substr),
		"expected log output to contain %q", substr)
}
