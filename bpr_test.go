package bpr

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, featureArgs []string, template string, strict bool) *Config {
	t.Helper()
	return &Config{
		FeatureArgs:     featureArgs,
		MaxWorkers:      2,
		CommandTemplate: template,
		PollInterval:    time.Millisecond,
		Strict:          strict,
		Log:             log.NewLogger(log.DiscardHandler()),
	}
}

func writeFeatures(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name+".feature")
		require.NoError(t, os.WriteFile(path, []byte("Feature: "+name+"\n"), 0644))
		paths = append(paths, path)
	}
	return paths
}

func TestAppRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "test")
	assert.Error(t, err)
}

func TestAppRunMissingFeatures(t *testing.T) {
	cfg := testConfig(t, []string{filepath.Join(t.TempDir(), "missing.feature")}, "echo %s %s", false)
	app, err := New(context.Background(), cfg, "test")
	require.NoError(t, err)
	app.stdout = &bytes.Buffer{}

	err = app.Run()
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Nil(t, app.Result())
}

func TestAppRunRendersReport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	paths := writeFeatures(t, "health", "apigee")
	cfg := testConfig(t, paths, "cat %s %s", false)
	app, err := New(context.Background(), cfg, "test")
	require.NoError(t, err)

	var buf bytes.Buffer
	app.stdout = &buf

	require.NoError(t, app.Run())

	result := app.Result()
	require.NotNil(t, result)
	require.Len(t, result.Entries, 2)

	out := buf.String()
	assert.Contains(t, out, "health")
	assert.Contains(t, out, "apigee")
	assert.Contains(t, out, "Took ")
}

func TestAppRunStrictPropagatesFailures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	paths := writeFeatures(t, "broken")
	// The substituted arguments are ignored; the command always exits 1.
	template := `sh -c "exit 1" ignored %s %s`

	t.Run("Strict", func(t *testing.T) {
		app, err := New(context.Background(), testConfig(t, paths, template, true), "test")
		require.NoError(t, err)
		app.stdout = &bytes.Buffer{}

		err = app.Run()
		require.Error(t, err)
		assert.True(t, IsFeatureFailureError(err))
		assert.False(t, IsRuntimeError(err))
	})

	t.Run("Non-strict", func(t *testing.T) {
		app, err := New(context.Background(), testConfig(t, paths, template, false), "test")
		require.NoError(t, err)
		app.stdout = &bytes.Buffer{}

		require.NoError(t, app.Run(), "feature failures are reported, not raised")
		require.NotNil(t, app.Result())
		assert.True(t, app.Result().Failed())
	})
}
