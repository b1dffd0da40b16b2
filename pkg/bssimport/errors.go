package bssimport

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := loader.Load(ctx, cfg, records)
//	if errors.Is(err, bssimport.ErrMergeFailed) {
//	    // staging table was kept for inspection
//	}
var (
	// ErrInvalidConfig indicates the provided configuration or input is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrStagingFailed indicates the staging table could not be dropped or created.
	ErrStagingFailed = errors.New("staging reset failed")

	// ErrLoadFailed indicates at least one worker failed to stage its chunk.
	ErrLoadFailed = errors.New("load failed")

	// ErrMergeFailed indicates the merge into the target table failed.
	ErrMergeFailed = errors.New("merge failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// Component names the stage of an import job that produced an error.
type Component string

const (
	ComponentConfig  Component = "config"
	ComponentConnect Component = "connect"
	ComponentStaging Component = "staging"
	ComponentLoad    Component = "load"
	ComponentMerge   Component = "merge"
)

// sentinel returns the sentinel error matching the component.
func (c Component) sentinel() error {
	switch c {
	case ComponentConfig:
		return ErrInvalidConfig
	case ComponentConnect:
		return ErrConnectionFailed
	case ComponentStaging:
		return ErrStagingFailed
	case ComponentLoad:
		return ErrLoadFailed
	case ComponentMerge:
		return ErrMergeFailed
	}
	return nil
}

// JobError reports which component of an import job failed.
// It matches the component's sentinel error with errors.Is and unwraps to
// the underlying cause.
type JobError struct {
	Component Component
	Err       error
}

// NewJobError wraps err as a failure of component c.
func NewJobError(c Component, err error) *JobError {
	return &JobError{Component: c, Err: err}
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Component, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of the failing component.
func (e *JobError) Is(target error) bool {
	s := e.Component.sentinel()
	return s != nil && target == s
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrStagingFailed):
		return ExitStagingFailed
	case errors.Is(err, ErrMergeFailed):
		return ExitMergeFailed
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the argument errors produced by cobra.
func isUsageError(errStr string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	} {
		if strings.HasPrefix(errStr, prefix) {
			return true
		}
	}
	return false
}
