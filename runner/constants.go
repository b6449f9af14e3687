package runner

import "time"

const (
	// DefaultMaxWorkers is the concurrency ceiling used when none is configured.
	DefaultMaxWorkers = 3

	// DefaultPollInterval is the delay between polling passes when no worker
	// has finished and no slot is free. It only affects latency-to-detection,
	// not correctness.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultCommandTemplate is the command line used to execute one feature.
	// The first substitution point receives the tag filter, the second the
	// feature file path.
	DefaultCommandTemplate = "behave -k --junit %s %s"

	// MaxReasonableWorkers caps the ceiling we consider sane; higher values
	// only produce a warning since the OS is the real limit.
	MaxReasonableWorkers = 32
)
