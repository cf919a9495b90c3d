package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lfdeploy/internal/fault"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	testCases := map[string]Mode{
		"clean":    ModeClean,
		"build":    ModeBuild,
		"all":      ModeAll,
		"deploy":   ModeAll,
		"transfer": ModeTransfer,
		"SSH":      ModeTransfer,
	}
	for in, want := range testCases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("flash")
	assert.True(t, errors.Is(err, fault.ErrUsage))
}

func TestMode_Plan(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []State{Pending, Cleaned}, ModeClean.Plan(false))
	assert.Equal(t, Staged, last(ModeBuild.Plan(false)))
	assert.NotContains(t, ModeBuild.Plan(false), Cleaned)
	assert.Equal(t, Transferred, last(ModeAll.Plan(false)))
	assert.Equal(t, Staged, last(ModeAll.Plan(true)))
	assert.Equal(t, []State{Pending, Staged, Transferred}, ModeTransfer.Plan(false))
}

func last(s []State) State {
	return s[len(s)-1]
}
