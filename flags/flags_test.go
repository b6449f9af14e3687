package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/borbamartin/behave-parallel-runner/runner"
)

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			require.NotEmpty(t, envFlagGetter.GetEnvVars(), "flags should have at least one env var")
		})
	}
}

// TestMaxWorkersLegacyEnvVar asserts the ceiling flag keeps honoring the
// historical BEHAVE_MAX_WORKERS variable ahead of the prefixed one.
func TestMaxWorkersLegacyEnvVar(t *testing.T) {
	envVars := MaxWorkers.GetEnvVars()
	require.Len(t, envVars, 2)
	assert.Equal(t, "BEHAVE_MAX_WORKERS", envVars[0])
	assert.Equal(t, EnvVarPrefix+"_MAX_WORKERS", envVars[1])
}

func TestMaxWorkersFlag(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		env         map[string]string
		expected    int
		shouldError bool
	}{
		{"default", []string{"app"}, nil, runner.DefaultMaxWorkers, false},
		{"explicit flag", []string{"app", "--max-workers", "5"}, nil, 5, false},
		{"from env", []string{"app"}, map[string]string{"BEHAVE_MAX_WORKERS": "7"}, 7, false},
		{"non-numeric env fails fast", []string{"app"}, map[string]string{"BEHAVE_MAX_WORKERS": "lots"}, 0, true},
		{"non-numeric flag fails fast", []string{"app", "--max-workers", "lots"}, nil, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			var got int
			app := &cli.App{
				Flags: []cli.Flag{MaxWorkers},
				Action: func(ctx *cli.Context) error {
					got = ctx.Int(MaxWorkers.Name)
					return nil
				},
			}

			err := app.Run(tc.args)
			if tc.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCheckRequired(t *testing.T) {
	app := &cli.App{
		Flags: []cli.Flag{MaxWorkers},
		Action: func(ctx *cli.Context) error {
			return CheckRequired(ctx)
		},
	}

	assert.NoError(t, app.Run([]string{"app", "--max-workers", "1"}))
	assert.Error(t, app.Run([]string{"app", "--max-workers", "0"}))
	assert.Error(t, app.Run([]string{"app", "--max-workers", "-2"}))
}
