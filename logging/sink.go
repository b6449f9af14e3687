// Package logging provides the capture sinks that receive the combined
// stdout/stderr stream of a feature subprocess.
package logging

import (
	"fmt"
	"io"
	"os"
)

// Sink is a writable destination for one feature's combined output.
// The scheduler writes to it for the lifetime of the subprocess, reads it
// back once the process has exited, and then releases it.
type Sink interface {
	io.Writer

	// Name returns an identifier for the sink's backing artifact, for logging.
	Name() string

	// ReadAll returns everything written so far. The scheduler only calls
	// this after the associated process has exited, so the result is the
	// complete captured output.
	ReadAll() ([]byte, error)

	// Release closes the sink and removes any backing artifact.
	// It must be called exactly once per sink.
	Release() error
}

// SinkFactory acquires a new sink. The hint is derived from the feature name
// and is not required to be unique; the factory must guarantee uniqueness of
// the backing artifact even when hints collide.
type SinkFactory func(hint string) (Sink, error)

// TempFileSink captures output in a uniquely-named temporary file.
type TempFileSink struct {
	file     *os.File
	released bool
}

var _ Sink = (*TempFileSink)(nil)

// NewTempFileSink creates a sink backed by a fresh temporary file.
// os.CreateTemp guarantees a unique name even when the hint collides across
// concurrently-running features.
func NewTempFileSink(hint string) (Sink, error) {
	f, err := os.CreateTemp("", hint+"-*.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file for %q: %w", hint, err)
	}
	return &TempFileSink{file: f}, nil
}

func (s *TempFileSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

func (s *TempFileSink) Name() string {
	return s.file.Name()
}

func (s *TempFileSink) ReadAll() ([]byte, error) {
	if s.released {
		return nil, fmt.Errorf("sink %s already released", s.file.Name())
	}
	if err := s.file.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync capture file %s: %w", s.file.Name(), err)
	}
	data, err := os.ReadFile(s.file.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file %s: %w", s.file.Name(), err)
	}
	return data, nil
}

func (s *TempFileSink) Release() error {
	if s.released {
		return fmt.Errorf("sink %s already released", s.file.Name())
	}
	s.released = true
	name := s.file.Name()
	closeErr := s.file.Close()
	removeErr := os.Remove(name)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}
