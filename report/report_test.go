package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"Zero", 0, "00h 00m 00s"},
		{"Seconds only", 5 * time.Second, "00h 00m 05s"},
		{"Minute rollover", 65 * time.Second, "00h 01m 05s"},
		{"Hour rollover", 3661 * time.Second, "01h 01m 01s"},
		{"Sub-second rounds", 400 * time.Millisecond, "00h 00m 00s"},
		{"Rounds up", 59*time.Second + 700*time.Millisecond, "00h 01m 00s"},
		{"Negative clamps", -3 * time.Second, "00h 00m 00s"},
		{"Many hours", 25*time.Hour + 6*time.Minute + 7*time.Second, "25h 06m 07s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestRunReportAccumulation(t *testing.T) {
	rep := New("run-1")
	require.False(t, rep.StartedAt.IsZero())

	rep.Append(Entry{Name: "fast", ExitCode: 0})
	rep.Append(Entry{Name: "slow", ExitCode: 0})
	rep.Finalize()

	require.Len(t, rep.Entries, 2)
	// Insertion order is completion order; it is never re-sorted.
	assert.Equal(t, "fast", rep.Entries[0].Name)
	assert.Equal(t, "slow", rep.Entries[1].Name)
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))
	assert.Contains(t, rep.String(), "Took ")
}

func TestRunReportFailed(t *testing.T) {
	t.Run("All passing", func(t *testing.T) {
		rep := New("run-1")
		rep.Append(Entry{Name: "a"})
		rep.Append(Entry{Name: "b"})
		assert.False(t, rep.Failed())
	})

	t.Run("Non-zero exit", func(t *testing.T) {
		rep := New("run-1")
		rep.Append(Entry{Name: "a", ExitCode: 1})
		assert.True(t, rep.Failed())
	})

	t.Run("Spawn error", func(t *testing.T) {
		rep := New("run-1")
		rep.Append(Entry{Name: "a", Err: errors.New("boom")})
		assert.True(t, rep.Failed())
	})
}

func TestRenderTable(t *testing.T) {
	rep := New("run-1")
	rep.Append(Entry{Name: "health", Duration: 2 * time.Second})
	rep.Append(Entry{Name: "apigee", Duration: 3 * time.Second, ExitCode: 1})
	rep.Append(Entry{Name: "broken", Err: errors.New("command not found")})
	rep.Finalize()

	var buf bytes.Buffer
	rep.RenderTable(&buf)
	out := buf.String()

	assert.Contains(t, out, "health")
	assert.Contains(t, out, "apigee")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, out, "✗ exit 1")
	assert.Contains(t, out, "✗ error")
	assert.Contains(t, out, "command not found")
	assert.Contains(t, out, "3 features")
}

func TestCleanOutput(t *testing.T) {
	colored := "\x1b[32mpassed\x1b[0m\n\n"
	assert.Equal(t, "passed\n", CleanOutput(colored))
	assert.Equal(t, "plain\n", CleanOutput("plain"))
}
