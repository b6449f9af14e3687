package bpr

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, unresolvable feature paths, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// FeatureFailureError signals that one or more feature subprocesses exited
// non-zero while --strict was set (exit code 1).
type FeatureFailureError struct {
	Message string
}

func (e *FeatureFailureError) Error() string {
	return fmt.Sprintf("feature failure: %s", e.Message)
}

// NewFeatureFailureError creates a new FeatureFailureError
func NewFeatureFailureError(message string) *FeatureFailureError {
	return &FeatureFailureError{Message: message}
}

// IsFeatureFailureError checks if the error is or wraps a FeatureFailureError
func IsFeatureFailureError(err error) bool {
	var featureErr *FeatureFailureError
	return err != nil && errors.As(err, &featureErr)
}
