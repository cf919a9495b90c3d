// Package transfer copies staged artifacts to the remote host with an
// external copy tool such as scp.
package transfer

import (
	"context"
	"errors"
	"strings"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/process"
	"go.uber.org/zap"
)

// DefaultTool is the copy tool used when none is configured.
const DefaultTool = "scp"

// Options configures the copy tool invocation.
type Options struct {
	// Tool is the copy executable.
	Tool string
	// Args are passed before the local paths, e.g. []string{"-P", "2222"}.
	Args []string
	// Batch copies every artifact in a single invocation instead of one per
	// artifact.
	Batch bool
}

// Adapter copies staged artifacts through a process.Runner.
type Adapter struct {
	runner process.Runner
	opts   Options
}

// New creates an Adapter.
func New(runner process.Runner, opts Options) *Adapter {
	if opts.Tool == "" {
		opts.Tool = DefaultTool
	}
	return &Adapter{runner: runner, opts: opts}
}

// Transfer validates destination and copies artifacts in order. Per-artifact
// mode stops at the first failure; nothing is retried.
func (a *Adapter) Transfer(ctx context.Context, artifacts []model.StagedArtifact, destination string) error {
	addr, err := ParseAddress(destination)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		return fault.New(fault.ErrTransferFailed, "nothing to transfer to %s", addr)
	}

	logger := ctxlog.FromContext(ctx).With(zap.String("remote", addr.String()), zap.String("tool", a.opts.Tool))

	if a.opts.Batch {
		paths := model.StagedPaths(artifacts)
		logger.Info("Transferring artifacts.", zap.Strings("paths", paths))
		return a.copy(ctx, paths, addr, strings.Join(paths, ", "))
	}

	for _, art := range artifacts {
		logger.Info("Transferring artifact.", zap.String("role", art.Role.String()), zap.String("path", art.Path))
		if err := a.copy(ctx, []string{art.Path}, addr, art.Path); err != nil {
			return err
		}
		logger.Debug("Artifact transferred.", zap.String("path", art.Path))
	}
	return nil
}

func (a *Adapter) copy(ctx context.Context, paths []string, addr Address, what string) error {
	args := make([]string, 0, len(a.opts.Args)+len(paths)+1)
	args = append(args, a.opts.Args...)
	args = append(args, paths...)
	args = append(args, addr.String())

	res, err := a.runner.Run(ctx, process.Command{Name: a.opts.Tool, Args: args})
	if err != nil {
		if errors.Is(err, fault.ErrToolNotFound) || errors.Is(err, fault.ErrInterrupted) {
			return err
		}
		return fault.Wrap(fault.ErrTransferFailed, err, "copying %s to %s", what, addr).WithOutput(res.Combined())
	}
	if res.ExitCode != 0 {
		return fault.New(fault.ErrTransferFailed, "copying %s to %s: %s exited with status %d",
			what, addr, a.opts.Tool, res.ExitCode).WithOutput(res.Stderr)
	}
	return nil
}
