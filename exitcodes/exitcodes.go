// Package exitcodes defines the standard exit codes used by behave-parallel-runner.
package exitcodes

// Exit code constants used by behave-parallel-runner
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the run completed (feature failures are reported, not propagated, unless --strict is set)
// * FeatureFailure (1): Used with --strict when one or more feature subprocesses exit non-zero
// * RuntimeErr (2): Used for runtime errors such as bad configuration or unresolvable feature paths
const (
	Success        = 0
	FeatureFailure = 1
	RuntimeErr     = 2
)
