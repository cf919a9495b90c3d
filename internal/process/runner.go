package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"go.uber.org/zap"
)

// ErrTimeout is returned when a tool outlives the runner's timeout.
var ErrTimeout = errors.New("tool timed out")

// DefaultMaxOutputBytes caps how much of each output stream is kept.
const DefaultMaxOutputBytes = 4 << 20

// Command describes one external tool invocation.
type Command struct {
	// Name is the executable, either a path or a name looked up in PATH.
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a tool that ran to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	// Truncated is set when output exceeded the runner's cap.
	Truncated bool
}

// Combined returns stdout followed by stderr.
func (r *Result) Combined() []byte {
	if r == nil {
		return nil
	}
	if len(r.Stdout) == 0 || len(r.Stderr) == 0 {
		return append(append([]byte(nil), r.Stdout...), r.Stderr...)
	}
	out := append([]byte(nil), r.Stdout...)
	if out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, r.Stderr...)
}

// Runner executes external tools. A non-zero exit status is not an error: it
// is reported through Result.ExitCode. Errors mean the tool could not be
// started, was interrupted, or timed out.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	// Timeout bounds each invocation; zero means no limit.
	Timeout time.Duration
	// MaxOutputBytes caps each captured stream; zero means DefaultMaxOutputBytes.
	MaxOutputBytes int64
}

// NewExec creates an Exec runner with the given per-invocation timeout.
func NewExec(timeout time.Duration) *Exec {
	return &Exec{Timeout: timeout, MaxOutputBytes: DefaultMaxOutputBytes}
}

// Run starts cmd and waits for it.
func (e *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With(zap.String("tool", cmd.Name))

	if err := ctx.Err(); err != nil {
		return nil, fault.Wrap(fault.ErrInterrupted, err, "not starting %s", cmd.Name)
	}

	path, err := exec.LookPath(resolveName(cmd))
	if err != nil {
		return nil, fault.Wrap(fault.ErrToolNotFound, err, "%s", cmd.Name)
	}

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	setupProcessGroup(c)
	c.WaitDelay = 5 * time.Second

	limit := e.MaxOutputBytes
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}
	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &limitedWriter{w: &stdoutBuf, max: limit}
	stderr := &limitedWriter{w: &stderrBuf, max: limit}
	c.Stdout = stdout
	c.Stderr = stderr

	logger.Debug("Starting tool.", zap.String("command", cmd.String()), zap.String("dir", cmd.Dir))
	start := time.Now()
	runErr := c.Run()

	res := &Result{
		ExitCode:  -1,
		Stdout:    stdoutBuf.Bytes(),
		Stderr:    stderrBuf.Bytes(),
		Duration:  time.Since(start),
		Truncated: stdout.truncated || stderr.truncated,
	}

	switch {
	case ctx.Err() != nil:
		logger.Warn("Tool killed by cancellation.", zap.Duration("after", res.Duration))
		return res, fault.Wrap(fault.ErrInterrupted, ctx.Err(), "%s was killed", cmd.Name).WithOutput(res.Combined())
	case runCtx.Err() == context.DeadlineExceeded:
		logger.Warn("Tool killed by timeout.", zap.Duration("timeout", e.Timeout))
		return res, fmt.Errorf("%s: %w after %s", cmd.Name, ErrTimeout, e.Timeout)
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return res, fmt.Errorf("running %s: %w", cmd.Name, runErr)
	}
	if exitErr != nil {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = 0
	}

	logger.Debug("Tool finished.",
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
		zap.Int("stdout_bytes", len(res.Stdout)),
		zap.Int("stderr_bytes", len(res.Stderr)),
	)
	if res.Truncated {
		logger.Warn("Tool output truncated.", zap.Int64("max_bytes", limit))
	}
	return res, nil
}

// resolveName makes a relative tool path such as "./bin/lfc" relative to the
// command's working directory, which is where the tool is started. Bare names
// are left for the PATH lookup.
func resolveName(cmd Command) string {
	name := cmd.Name
	if cmd.Dir == "" || filepath.IsAbs(name) || filepath.Base(name) == name {
		return name
	}
	return filepath.Join(cmd.Dir, name)
}

// limitedWriter is an io.Writer that keeps at most max bytes.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil
	}
	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		p = p[:remaining]
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	if err != nil {
		return written, err
	}
	return n, nil
}
