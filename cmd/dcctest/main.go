package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	dcctest "github.com/vfx-infra/dcctest"
	"github.com/vfx-infra/dcctest/exitcodes"
	"github.com/vfx-infra/dcctest/flags"
	"github.com/vfx-infra/dcctest/registry"
	"github.com/vfx-infra/dcctest/runner"
	"github.com/vfx-infra/dcctest/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "dcctest"
	app.Usage = "Cross-interpreter test runner for VFX pipelines"
	app.Description = "dcctest discovers python test files and runs them per execution context: " +
		"plain python builds, mayapy, hython, or full GUI sessions of Maya and Houdini. " +
		"Positional arguments narrow the run to test files containing any of the given tokens."
	app.ArgsUsage = "[filter tokens]"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		if err == nil {
			return
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if runner.IsRuntimeError(err) {
			// Operational problems exit with code 2
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		} else if dcctest.IsTestFailureError(err) {
			// Failing tests exit with code 1
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		} else {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		}
	}

	if err := app.Run(os.Args); err != nil {
		// The exit handler above terminates the process for every error
		// it can classify; this is the fallback for anything else.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	log := newLogger(ctx.String(flags.LogLevel.Name), ctx.Bool(flags.Debug.Name))
	slog.SetDefault(log)

	if ctx.Bool(flags.Init.Name) {
		path, err := registry.WriteSampleConfig(ctx.String(flags.Target.Name))
		if err != nil {
			return &runner.RuntimeError{Err: err}
		}
		log.Info("Sample config written", "path", path)
		return nil
	}

	cfg, err := dcctest.NewRunConfig(ctx, log)
	if err != nil {
		return &runner.RuntimeError{Err: fmt.Errorf("assembling run configuration: %w", err)}
	}

	if ctx.Bool(flags.ServeMetrics.Name) {
		svc := service.New(log)
		svc.Start(ctx.Context)
		defer svc.Shutdown()
	}

	svc, err := dcctest.New(cfg, log, Version)
	if err != nil {
		return &runner.RuntimeError{Err: err}
	}
	return svc.Run(ctx.Context)
}

func newLogger(level string, debug bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
