package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/vk/lfdeploy/internal/process"
)

// SpyRunner is a process.Runner that records every invocation and answers
// with a scripted handler instead of starting real tools.
type SpyRunner struct {
	mu       sync.Mutex
	calls    []process.Command
	handlers map[string]func(ctx context.Context, cmd process.Command) (*process.Result, error)
}

// NewSpyRunner creates a SpyRunner where every tool succeeds with no output.
func NewSpyRunner() *SpyRunner {
	return &SpyRunner{
		handlers: make(map[string]func(context.Context, process.Command) (*process.Result, error)),
	}
}

// Handle scripts the behaviour for the tool with the given name.
func (s *SpyRunner) Handle(name string, fn func(ctx context.Context, cmd process.Command) (*process.Result, error)) *SpyRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = fn
	return s
}

// Run implements process.Runner.
func (s *SpyRunner) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	fn := s.handlers[cmd.Name]
	s.mu.Unlock()

	if fn == nil {
		return &process.Result{ExitCode: 0}, nil
	}
	return fn(ctx, cmd)
}

// Calls returns the recorded invocations in order.
func (s *SpyRunner) Calls() []process.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]process.Command(nil), s.calls...)
}

// CallsTo returns the recorded invocations of one tool.
func (s *SpyRunner) CallsTo(name string) []process.Command {
	var out []process.Command
	for _, c := range s.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Exit returns a handler that exits with code and writes stderr.
func Exit(code int, stderr string) func(context.Context, process.Command) (*process.Result, error) {
	return func(context.Context, process.Command) (*process.Result, error) {
		return &process.Result{ExitCode: code, Stderr: []byte(stderr)}, nil
	}
}

// Fail returns a handler that fails to run the tool with err.
func Fail(err error) func(context.Context, process.Command) (*process.Result, error) {
	return func(context.Context, process.Command) (*process.Result, error) {
		return nil, err
	}
}

// FakeCompiler returns a compiler handler that leaves a Zephyr tree for
// program with the given federates in the project root and succeeds.
func FakeCompiler(t testing.TB, program string, federates ...string) func(context.Context, process.Command) (*process.Result, error) {
	return func(_ context.Context, cmd process.Command) (*process.Result, error) {
		WriteFiles(t, cmd.Dir, ZephyrTree(program, federates...))
		return &process.Result{Stdout: []byte("lfc: code generation finished")}, nil
	}
}

// WriteTree returns a compiler handler that writes files, relative to the
// project root, and succeeds.
func WriteTree(t testing.TB, files map[string]string) func(context.Context, process.Command) (*process.Result, error) {
	return func(_ context.Context, cmd process.Command) (*process.Result, error) {
		WriteFiles(t, cmd.Dir, files)
		return &process.Result{}, nil
	}
}
