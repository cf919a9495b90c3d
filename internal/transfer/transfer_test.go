package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/process"
	"github.com/vk/lfdeploy/internal/testutil"
)

const remote = "hailo@hailo-desktop:~/lf"

var staged = []model.StagedArtifact{
	{Role: model.RoleClient, Path: "/p/build/programs/echo_client.elf"},
	{Role: model.RoleServer, Path: "/p/build/programs/echo_server.elf"},
}

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "user host path", input: "hailo@hailo-desktop:~/lf", valid: true},
		{name: "absolute path", input: "dev@10.0.0.2:/opt/lf", valid: true},
		{name: "empty path means home", input: "zungel@saclay.iot-lab.info:", valid: true},
		{name: "missing at", input: "hailo-desktop:~/lf"},
		{name: "missing colon", input: "hailo@hailo-desktop"},
		{name: "empty user", input: "@host:path"},
		{name: "empty host", input: "user@:path"},
		{name: "whitespace in host", input: "user@my host:path"},
		{name: "empty", input: ""},
		{name: "local path", input: "/tmp/out"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := ParseAddress(tc.input)
			if !tc.valid {
				require.Error(t, err)
				assert.True(t, errors.Is(err, fault.ErrInvalidRemoteAddress))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.input, addr.String())
		})
	}
}

func TestTransfer_InvalidAddressSpawnsNothing(t *testing.T) {
	for _, dest := range []string{"nohost", "user@host", "host:path"} {
		t.Run(dest, func(t *testing.T) {
			spy := testutil.NewSpyRunner()

			err := New(spy, Options{}).Transfer(context.Background(), staged, dest)

			assert.True(t, errors.Is(err, fault.ErrInvalidRemoteAddress))
			assert.Empty(t, spy.Calls())
		})
	}
}

func TestTransfer_PerArtifact(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner()

	err := New(spy, Options{Args: []string{"-q"}}).Transfer(context.Background(), staged, remote)

	require.NoError(t, err)
	calls := spy.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, process.Command{Name: "scp", Args: []string{"-q", staged[0].Path, remote}}, calls[0])
	assert.Equal(t, process.Command{Name: "scp", Args: []string{"-q", staged[1].Path, remote}}, calls[1])
}

func TestTransfer_Batch(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner()

	err := New(spy, Options{Tool: "rsync", Batch: true}).Transfer(context.Background(), staged, remote)

	require.NoError(t, err)
	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "rsync", calls[0].Name)
	assert.Equal(t, []string{staged[0].Path, staged[1].Path, remote}, calls[0].Args)
}

func TestTransfer_FirstFailureAbortsRemaining(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner().Handle("scp", testutil.Exit(1, "Permission denied (publickey)."))

	err := New(spy, Options{}).Transfer(context.Background(), staged, remote)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrTransferFailed))
	assert.Contains(t, err.Error(), "echo_client.elf")
	assert.Equal(t, "Permission denied (publickey).", string(fault.OutputOf(err)))
	assert.Len(t, spy.Calls(), 1)
}

func TestTransfer_ToolNotFound(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner().Handle("scp", testutil.Fail(fault.New(fault.ErrToolNotFound, "scp")))

	err := New(spy, Options{}).Transfer(context.Background(), staged, remote)

	assert.True(t, errors.Is(err, fault.ErrToolNotFound))
	assert.False(t, errors.Is(err, fault.ErrTransferFailed))
}

func TestTransfer_RunnerErrorIsTransferFailed(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner().Handle("scp", testutil.Fail(process.ErrTimeout))

	err := New(spy, Options{}).Transfer(context.Background(), staged, remote)

	assert.True(t, errors.Is(err, fault.ErrTransferFailed))
	assert.True(t, errors.Is(err, process.ErrTimeout))
}

func TestTransfer_NothingToTransfer(t *testing.T) {
	t.Parallel()

	spy := testutil.NewSpyRunner()

	err := New(spy, Options{}).Transfer(context.Background(), nil, remote)

	assert.True(t, errors.Is(err, fault.ErrTransferFailed))
	assert.Empty(t, spy.Calls())
}
