package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/lfdeploy/internal/app"
	"github.com/vk/lfdeploy/internal/cli"
)

// main is the entrypoint for the lfdeploy application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(cli.ExitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. The summary goes to outW, logs to errW. Errors already shown in
// the summary come back as an ExitError with an empty message.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	lfApp, err := app.NewApp(errW, appConfig)
	if err != nil {
		return cli.AsExitError(err)
	}
	defer lfApp.Close()

	report, err := lfApp.Run(ctx)
	if report == nil {
		return cli.AsExitError(err)
	}

	cli.RenderSummary(outW, report, err)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitCode(err), Err: err}
	}
	return nil
}
