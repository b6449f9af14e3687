// Package bpr orchestrates one parallel run of Behave feature files: it
// resolves the feature queue, drives the worker pool to completion and
// renders the run report.
package bpr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/borbamartin/behave-parallel-runner/featurelist"
	"github.com/borbamartin/behave-parallel-runner/report"
	"github.com/borbamartin/behave-parallel-runner/runner"
)

// App runs features in parallel and reports results.
type App struct {
	ctx     context.Context
	config  *Config
	version string
	runID   string
	result  *report.RunReport
	stdout  io.Writer
}

func New(ctx context.Context, config *Config, version string) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating app with config",
		"tags", config.Tags,
		"featureArgs", config.FeatureArgs,
		"maxWorkers", config.MaxWorkers,
		"commandTemplate", config.CommandTemplate)

	return &App{
		ctx:     ctx,
		config:  config,
		version: version,
		runID:   uuid.New().String(),
		stdout:  os.Stdout,
	}, nil
}

// Run executes one full parallel run and prints the results table.
// Feature-level test failures do not produce an error unless the run is
// strict; configuration problems surface as RuntimeError.
func (a *App) Run() error {
	a.config.Log.Info("Execution started", "run_id", a.runID, "version", a.version)

	features, err := featurelist.List(a.config.FeatureArgs)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to list features: %w", err))
	}
	if len(features) == 0 {
		return NewRuntimeError(fmt.Errorf("no feature files found in %v", a.config.FeatureArgs))
	}
	a.config.Log.Info("Listed features", "count", len(features))

	pool, err := runner.NewPool(runner.Config{
		MaxWorkers:      a.config.MaxWorkers,
		CommandTemplate: a.config.CommandTemplate,
		Tags:            a.config.Tags,
		PollInterval:    a.config.PollInterval,
		RunID:           a.runID,
		Log:             a.config.Log,
		Output:          a.stdout,
	})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create worker pool: %w", err))
	}

	result, err := pool.Run(a.ctx, features)
	if err != nil {
		return NewRuntimeError(err)
	}
	a.result = result

	result.RenderTable(a.stdout)
	fmt.Fprintln(a.stdout, result.String())
	a.config.Log.Info("Execution finished", "run_id", a.runID, "took", report.FormatDuration(result.Elapsed()))

	if a.config.Strict && result.Failed() {
		return NewFeatureFailureError(fmt.Sprintf("%d of %d features failed", countFailed(result), len(result.Entries)))
	}
	return nil
}

// Result returns the report of the last run, or nil before the first run.
func (a *App) Result() *report.RunReport {
	return a.result
}

func countFailed(r *report.RunReport) int {
	failed := 0
	for _, e := range r.Entries {
		if e.Err != nil || e.ExitCode != 0 {
			failed++
		}
	}
	return failed
}
