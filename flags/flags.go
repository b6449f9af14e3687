package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/borbamartin/behave-parallel-runner/runner"
)

const EnvVarPrefix = "BEHAVE_PARALLEL"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Tags = &cli.StringSliceFlag{
		Name:    "tags",
		EnvVars: prefixEnvVars("TAGS"),
		Usage:   "Tag filter passed through to the test command (repeatable, eg. '--tags=@smoke')",
	}
	MaxWorkers = &cli.IntFlag{
		Name:  "max-workers",
		Value: runner.DefaultMaxWorkers,
		// BEHAVE_MAX_WORKERS is the historical variable name; keep honoring it.
		EnvVars: []string{"BEHAVE_MAX_WORKERS", EnvVarPrefix + "_MAX_WORKERS"},
		Usage:   "Maximum number of features run simultaneously",
	}
	CommandTemplate = &cli.StringFlag{
		Name:    "command-template",
		Value:   runner.DefaultCommandTemplate,
		EnvVars: prefixEnvVars("COMMAND_TEMPLATE"),
		Usage:   "Command line used per feature; first substitution point is the tag filter, second the feature path",
	}
	PollInterval = &cli.DurationFlag{
		Name:    "poll-interval",
		Value:   runner.DefaultPollInterval,
		EnvVars: prefixEnvVars("POLL_INTERVAL"),
		Usage:   "Delay between completion-detection polling passes (eg. '100ms')",
	}
	Profile = &cli.StringFlag{
		Name:    "profile",
		Value:   "",
		EnvVars: prefixEnvVars("PROFILE"),
		Usage:   "Path to an optional YAML profile supplying tags, features, max workers and command template",
	}
	Strict = &cli.BoolFlag{
		Name:    "strict",
		Value:   false,
		EnvVars: prefixEnvVars("STRICT"),
		Usage:   "Exit non-zero when any feature subprocess exits non-zero",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "The lowest log level that will be output",
	}
)

var Flags = []cli.Flag{
	Tags,
	MaxWorkers,
	CommandTemplate,
	PollInterval,
	Profile,
	Strict,
	LogLevel,
}

// CheckRequired validates flag values that urfave/cli cannot reject on its own.
func CheckRequired(ctx *cli.Context) error {
	if ctx.Int(MaxWorkers.Name) <= 0 {
		return fmt.Errorf("flag %s must be a positive integer", MaxWorkers.Name)
	}
	return nil
}
