package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	bpr "github.com/borbamartin/behave-parallel-runner"
	"github.com/borbamartin/behave-parallel-runner/exitcodes"
	"github.com/borbamartin/behave-parallel-runner/flags"
	"github.com/borbamartin/behave-parallel-runner/service"
)

var (
	Version   = "v1.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "behave-parallel-runner"
	app.Usage = "Parallel Behave feature runner"
	app.Description = "Runs Behave feature files in parallel with a bounded worker pool"
	app.ArgsUsage = "<features-dir | feature-file ...>"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if bpr.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if bpr.IsFeatureFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.FeatureFailure))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.FeatureFailure))
			}
		}
	}

	// Start telemetry
	shutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	// Start CLI
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	logger, err := newLogger(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return bpr.NewRuntimeError(err)
	}
	log.SetDefault(logger)

	cfg, err := bpr.NewConfig(ctx, logger)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return bpr.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	logger.Debug("Config", "config", cfg)

	app, err := bpr.New(ctx.Context, cfg, Version)
	if err != nil {
		return bpr.NewRuntimeError(fmt.Errorf("failed to create runner: %w", err))
	}

	return app.Run()
}

func newLogger(level string) (log.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
