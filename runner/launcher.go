package runner

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// Handle is a reference to a running feature subprocess. It supports a
// non-blocking exited check and, once exited, access to the exit status.
type Handle interface {
	// Exited reports whether the process has terminated. It never blocks.
	Exited() bool

	// ExitCode returns the process exit code. It is only meaningful once
	// Exited returns true; before that it returns -1.
	ExitCode() int

	// ExitErr returns the error from waiting on the process, if any.
	// Only meaningful once Exited returns true.
	ExitErr() error
}

// Launcher starts one external command asynchronously with both of its
// output streams redirected into the given writer.
type Launcher interface {
	Launch(cmdline string, out io.Writer) (Handle, error)
}

// ExecLauncher launches commands via os/exec. The command line is split
// using shell word-splitting rules without actually invoking a shell.
type ExecLauncher struct{}

var _ Launcher = ExecLauncher{}

// Launch starts the command and returns immediately. Spawn failures
// (unparseable command line, binary not found) are returned synchronously;
// they are never discovered later via polling.
func (ExecLauncher) Launch(cmdline string, out io.Writer) (Handle, error) {
	argv, err := shellquote.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", cmdline, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// Combined stream: interleaving between stdout and stderr is best-effort.
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", cmdline, err)
	}

	h := &execHandle{done: make(chan struct{})}
	go func() {
		// Wait also drains any copy goroutines exec set up for non-file
		// writers, so once done is closed the sink holds the full output.
		h.waitErr = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

type execHandle struct {
	done    chan struct{}
	waitErr error
}

func (h *execHandle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *execHandle) ExitCode() int {
	if !h.Exited() {
		return -1
	}
	if h.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(h.waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (h *execHandle) ExitErr() error {
	if !h.Exited() {
		return nil
	}
	return h.waitErr
}
