// Package report aggregates the results of one parallel run: per-feature
// captured output in completion order, plus overall wall-clock timing.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Entry holds the outcome of one feature. Entries are appended in the order
// features are reaped, which is completion order rather than submission order.
type Entry struct {
	Name     string
	Output   string
	Duration time.Duration
	ExitCode int
	Err      error // non-nil when the process could not be spawned or its output was lost
}

// RunReport captures the complete results of a run.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []Entry
}

// New creates a report with the start time set to now.
func New(runID string) *RunReport {
	return &RunReport{
		RunID:     runID,
		StartedAt: time.Now(),
	}
}

// Append records a completed feature.
func (r *RunReport) Append(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Finalize stamps the end time of the run.
func (r *RunReport) Finalize() {
	r.FinishedAt = time.Now()
}

// Elapsed returns the total wall-clock duration of the run.
func (r *RunReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed reports whether any entry carries a runner-level error or a
// non-zero exit code.
func (r *RunReport) Failed() bool {
	for _, e := range r.Entries {
		if e.Err != nil || e.ExitCode != 0 {
			return true
		}
	}
	return false
}

func (r *RunReport) String() string {
	return fmt.Sprintf("Took %s", FormatDuration(r.Elapsed()))
}

// FormatDuration renders a duration as "HHh MMm SSs".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, s)
}

// RenderTable writes a per-feature results table to w.
func (r *RunReport) RenderTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Parallel Feature Run Results (%s)", FormatDuration(r.Elapsed())))

	t.AppendHeader(table.Row{"Feature", "Duration", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Feature", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, e := range r.Entries {
		errMsg := ""
		if e.Err != nil {
			errMsg = stripansi.Strip(e.Err.Error())
		}
		t.AppendRow(table.Row{
			e.Name,
			FormatDuration(e.Duration),
			statusString(e),
			errMsg,
		})
	}

	t.AppendFooter(table.Row{"Total", FormatDuration(r.Elapsed()), fmt.Sprintf("%d features", len(r.Entries)), ""})
	t.Render()
}

// statusString returns a short result marker for an entry. A feature's own
// test failures show up as a non-zero exit code; spawn and capture failures
// carry an error instead.
func statusString(e Entry) string {
	switch {
	case e.Err != nil:
		return "✗ error"
	case e.ExitCode != 0:
		return fmt.Sprintf("✗ exit %d", e.ExitCode)
	default:
		return "✓ pass"
	}
}

// CleanOutput strips ANSI escape sequences from captured output so it can be
// embedded in plain-text artifacts.
func CleanOutput(s string) string {
	return strings.TrimRight(stripansi.Strip(s), "\n") + "\n"
}
