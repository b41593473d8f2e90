package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK       = 0 // success, no error findings
	ExitFindings = 1 // the command ran but reported errors (lint findings, invalid formula)
	ExitUsage    = 2 // bad flags, arguments or configuration
	ExitFailure  = 3 // the command could not run (I/O, store, cancellation)
)

// UsageError is a problem with flags, arguments or configuration.
type UsageError struct {
	Flag    string
	Message string
}

func (e *UsageError) Error() string {
	if e.Flag == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid --%s: %s", e.Flag, e.Message)
}

// CommandError is a failed command with the exit code it maps to.
type CommandError struct {
	Command string
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a UsageError.
func NewUsageError(flag, message string) *UsageError {
	return &UsageError{Flag: flag, Message: message}
}

// NewCommandError creates a CommandError that exits with ExitFailure.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Code: ExitFailure, Err: err}
}

// NewFindingsError creates a CommandError for a run that completed but
// found errors.
func NewFindingsError(command string, err error) *CommandError {
	return &CommandError{Command: command, Code: ExitFindings, Err: err}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	return ExitFailure
}
