// Package runner implements the bounded-concurrency subprocess scheduler:
// a polling worker pool that dispatches feature files to an external command,
// captures each run's combined output, and reaps finished workers in
// completion order.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/borbamartin/behave-parallel-runner/featurelist"
	"github.com/borbamartin/behave-parallel-runner/logging"
	"github.com/borbamartin/behave-parallel-runner/metrics"
	"github.com/borbamartin/behave-parallel-runner/report"
)

// Config holds configuration for creating a new pool.
type Config struct {
	MaxWorkers      int           // concurrency ceiling, must be positive
	CommandTemplate string        // two substitution points: tag filter, feature path
	Tags            string        // tag filter passed through verbatim
	PollInterval    time.Duration // delay between polling passes when idle
	RunID           string        // identifier for this run; defaults to a fresh UUID
	Log             log.Logger
	Launcher        Launcher            // defaults to ExecLauncher
	Sinks           logging.SinkFactory // defaults to logging.NewTempFileSink
	Output          io.Writer           // destination for per-feature captured output; defaults to os.Stdout
}

// worker is the pool's record of one currently-executing feature: the
// process handle plus the sink receiving its combined output. A worker
// exists from dispatch until its process has exited and its output has been
// flushed and its sink released.
type worker struct {
	feature featurelist.Feature
	handle  Handle
	sink    logging.Sink
	started time.Time
}

// Pool drives execution of a feature queue to completion. It is
// single-threaded: concurrency comes entirely from the spawned OS processes,
// so pending and active are owned by the Run loop and need no locking.
type Pool struct {
	cfg   Config
	log   log.Logger
	runID string
}

// NewPool validates the configuration and creates a pool.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.MaxWorkers <= 0 {
		return nil, fmt.Errorf("max workers must be positive, got %d", cfg.MaxWorkers)
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.MaxWorkers > MaxReasonableWorkers {
		cfg.Log.Warn("Very high worker ceiling requested", "maxWorkers", cfg.MaxWorkers,
			"recommendation", "Consider using lower values to avoid resource exhaustion")
	}
	if cfg.CommandTemplate == "" {
		cfg.CommandTemplate = DefaultCommandTemplate
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if cfg.Launcher == nil {
		cfg.Launcher = ExecLauncher{}
	}
	if cfg.Sinks == nil {
		cfg.Sinks = logging.NewTempFileSink
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return &Pool{
		cfg:   cfg,
		log:   cfg.Log.New("component", "pool", "run_id", cfg.RunID),
		runID: cfg.RunID,
	}, nil
}

// RunID returns the identifier of the run this pool drives.
func (p *Pool) RunID() string {
	return p.runID
}

// Run executes all features and returns the run report. Dispatch order is
// strictly FIFO; report entries are appended in completion order. The number
// of simultaneously active workers never exceeds the configured ceiling:
// within each iteration the reap phase runs before the dispatch phase, so a
// just-vacated slot is visible before a new feature is launched.
//
// Cancelling ctx stops dispatching; features still queued are recorded as
// errored entries and the already-running processes are drained to
// completion. Running processes are not killed and there is no per-feature
// timeout, so a feature that never terminates stalls the run.
func (p *Pool) Run(ctx context.Context, features []featurelist.Feature) (*report.RunReport, error) {
	rep := report.New(p.runID)

	pending := make([]featurelist.Feature, len(features))
	copy(pending, features)
	active := make([]*worker, 0, p.cfg.MaxWorkers)

	p.log.Info("Enabled workers", "maxWorkers", p.cfg.MaxWorkers, "features", len(pending))

	for len(pending) > 0 || len(active) > 0 {
		progressed := false

		// Reap phase: finalize every worker whose process has exited.
		remaining := active[:0]
		for _, w := range active {
			if !w.handle.Exited() {
				remaining = append(remaining, w)
				continue
			}
			rep.Append(p.reap(w))
			progressed = true
		}
		active = remaining

		// Cancellation stops dispatch only; active workers drain above.
		if err := ctx.Err(); err != nil && len(pending) > 0 {
			p.log.Warn("Run cancelled, abandoning queued features", "queued", len(pending))
			for _, f := range pending {
				rep.Append(report.Entry{Name: f.Name(), Err: fmt.Errorf("not dispatched: %w", err)})
			}
			pending = nil
			progressed = true
		}

		// Dispatch phase: fill free slots from the head of the queue.
		for len(active) < p.cfg.MaxWorkers && len(pending) > 0 {
			feature := pending[0]
			pending = pending[1:]
			progressed = true

			w, err := p.dispatch(feature)
			if err != nil {
				// Spawn failure is contained to this feature; the rest of
				// the queue keeps running.
				p.log.Error("Failed to trigger feature", "feature", feature.Path, "error", err)
				metrics.RecordErrorDetails("spawn_failure", err)
				rep.Append(report.Entry{Name: feature.Name(), Err: err})
				continue
			}
			active = append(active, w)
		}

		if !progressed && (len(pending) > 0 || len(active) > 0) {
			time.Sleep(p.cfg.PollInterval)
		}
	}

	rep.Finalize()
	metrics.RecordRun(p.runID, len(rep.Entries), rep.Elapsed())
	p.log.Info("Run finished", "features", len(rep.Entries), "took", report.FormatDuration(rep.Elapsed()))
	return rep, nil
}

// dispatch starts one feature subprocess and wraps it in a worker.
// The sink acquired for the worker is released here if the launch fails.
func (p *Pool) dispatch(f featurelist.Feature) (*worker, error) {
	p.log.Info("Triggering feature", "feature", f.Path)

	sink, err := p.cfg.Sinks(f.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire capture sink for %q: %w", f.Path, err)
	}

	cmdline := fmt.Sprintf(p.cfg.CommandTemplate, p.cfg.Tags, f.Path)
	handle, err := p.cfg.Launcher.Launch(cmdline, sink)
	if err != nil {
		if rerr := sink.Release(); rerr != nil {
			p.log.Error("Failed to release capture sink", "sink", sink.Name(), "error", rerr)
		}
		return nil, err
	}

	metrics.RecordFeatureTriggered(p.runID)
	return &worker{feature: f, handle: handle, sink: sink, started: time.Now()}, nil
}

// reap finalizes a finished worker: flushes its captured output, echoes it,
// and releases the sink. Sink failures are contained to this feature; the
// sink is released regardless of whether its content could be read.
func (p *Pool) reap(w *worker) report.Entry {
	p.log.Info("Releasing worker", "feature", w.feature.Path, "exitCode", w.handle.ExitCode())

	entry := report.Entry{
		Name:     w.feature.Name(),
		Duration: time.Since(w.started),
		ExitCode: w.handle.ExitCode(),
	}

	data, err := w.sink.ReadAll()
	if err != nil {
		p.log.Error("Failed to read captured output", "sink", w.sink.Name(), "error", err)
		metrics.RecordErrorDetails("sink_read", err)
		entry.Err = fmt.Errorf("captured output lost: %w", err)
	} else {
		entry.Output = string(data)
		// The report keeps the raw capture; the echo is stripped of ANSI
		// escapes so it stays readable when redirected to a file.
		fmt.Fprintf(p.cfg.Output, "%s%s output:\n\n%s", w.feature.Name(), featurelist.FeatureExtension, report.CleanOutput(entry.Output))
	}

	if err := w.sink.Release(); err != nil {
		p.log.Error("Failed to release capture sink", "sink", w.sink.Name(), "error", err)
		metrics.RecordErrorDetails("sink_release", err)
	}

	result := "pass"
	if entry.Err != nil || entry.ExitCode != 0 {
		result = "fail"
	}
	metrics.RecordWorkerReleased(p.runID, result)
	return entry
}
