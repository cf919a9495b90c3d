package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/lfdeploy/internal/app"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/pipeline"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, fault.ErrUsage):
		return ExitUsage
	case errors.Is(err, fault.ErrInterrupted):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// AsExitError wraps err with its exit code. It returns nil for nil.
func AsExitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitCode(err), Message: err.Error(), Err: err}
}

type globalFlags struct {
	root       string
	configPath string
	compiler   string
	logLevel   string
	logFormat  string
	timeout    time.Duration
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly (help was shown), or
// an ExitError with ExitUsage.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	var (
		flags  globalFlags
		result *app.Config
	)

	root := &cobra.Command{
		Use:   "lfdeploy",
		Short: "Build, stage and deploy federated Lingua Franca programs",
		Long: `lfdeploy compiles a federated .lf program, finds the client and server
federate binaries in the generated tree, stages them under well-known names
and copies them to a remote board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.root, "root", "", "Project root. Defaults to the working directory.")
	pf.StringVar(&flags.configPath, "config", "", "Configuration file. Defaults to <root>/lfdeploy.hcl.")
	pf.StringVar(&flags.compiler, "compiler", "", "Compiler executable.")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Time limit for each external tool. 0 means none.")

	build := func(cmd *cobra.Command, mode pipeline.Mode, source, remote string, noTransfer bool) error {
		cfg := app.Config{
			Source:     source,
			Mode:       mode,
			Root:       flags.root,
			ConfigPath: flags.configPath,
			Compiler:   flags.compiler,
			Remote:     remote,
			NoTransfer: noTransfer,
			LogLevel:   flags.logLevel,
			LogFormat:  flags.logFormat,
		}
		if cmd.Flags().Changed("timeout") {
			t := flags.timeout
			cfg.Timeout = &t
		}
		validated, err := app.NewConfig(cfg)
		if err != nil {
			return err
		}
		result = validated
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "clean SOURCE.lf",
			Short: "Remove the generated tree and staged artifacts of a program",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return build(cmd, pipeline.ModeClean, args[0], "", false)
			},
		},
		&cobra.Command{
			Use:   "build SOURCE.lf",
			Short: "Compile and stage the federate binaries",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return build(cmd, pipeline.ModeBuild, args[0], "", false)
			},
		},
		allCommand(build),
		transferCommand(build),
	)

	if err := root.Execute(); err != nil {
		msg := err.Error()
		if !strings.HasPrefix(msg, fault.ErrUsage.Error()) {
			msg = fmt.Sprintf("%s: %s", fault.ErrUsage, msg)
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: msg + "\nRun 'lfdeploy --help' for usage.", Err: err}
	}
	if result == nil {
		return nil, true, nil
	}
	return result, false, nil
}

type buildFunc func(cmd *cobra.Command, mode pipeline.Mode, source, remote string, noTransfer bool) error

func allCommand(build buildFunc) *cobra.Command {
	var (
		remote     string
		noTransfer bool
		noSSH      bool
	)
	cmd := &cobra.Command{
		Use:     "all SOURCE.lf",
		Aliases: []string{"deploy"},
		Short:   "Clean, compile, stage and transfer",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd, pipeline.ModeAll, args[0], remote, noTransfer || noSSH)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "Destination as user@host:path.")
	cmd.Flags().BoolVar(&noTransfer, "no-transfer", false, "Stop after staging.")
	cmd.Flags().BoolVar(&noSSH, "no-ssh", false, "Alias for --no-transfer.")
	return cmd
}

func transferCommand(build buildFunc) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:     "transfer SOURCE.lf",
		Aliases: []string{"ssh"},
		Short:   "Copy already staged artifacts to the remote host",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd, pipeline.ModeTransfer, args[0], remote, false)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "Destination as user@host:path.")
	return cmd
}
