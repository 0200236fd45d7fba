// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"
)

// Error types for container operations
var (
	// ErrNoContainer is returned when an operation needs a container that has
	// not been created yet
	ErrNoContainer = httperr.WithCode(fmt.Errorf("cannot stop container before starting it"), http.StatusPreconditionFailed)

	// ErrControllerConsumed is returned when a controller is started twice or
	// after its container was removed
	ErrControllerConsumed = httperr.WithCode(fmt.Errorf("controller already used for a run"), http.StatusPreconditionFailed)

	// ErrImageNotFound is returned when an image is not present locally
	ErrImageNotFound = httperr.WithCode(fmt.Errorf("image not found"), http.StatusNotFound)

	// ErrContainerNotFound is returned when a container is not found
	ErrContainerNotFound = httperr.WithCode(fmt.Errorf("container not found"), http.StatusNotFound)

	// ErrAlreadyStopped is returned when the engine reports that a stop or
	// remove had nothing left to do
	ErrAlreadyStopped = httperr.WithCode(fmt.Errorf("container already stopped or being removed"), http.StatusConflict)

	// ErrContainerExited is returned when a container exited with a non-zero
	// code or in an unexpected state
	ErrContainerExited = httperr.WithCode(fmt.Errorf("container exited unexpectedly"), http.StatusBadRequest)

	// ErrRuntimeNotFound is returned when no container runtime socket is available
	ErrRuntimeNotFound = httperr.WithCode(fmt.Errorf("container runtime not found"), http.StatusServiceUnavailable)

	// ErrAttachFailed is returned when attaching to a container fails
	ErrAttachFailed = fmt.Errorf("failed to attach to container")
)

// ContainerError represents an error related to container operations
type ContainerError struct {
	// Err is the underlying error
	Err error
	// ContainerID is the ID of the container
	ContainerID string
	// Message is an optional error message
	Message string
}

// Error returns the error message
func (e *ContainerError) Error() string {
	if e.Message != "" {
		if e.ContainerID != "" {
			return fmt.Sprintf("%s: %s (container: %s)", e.Err, e.Message, e.ContainerID)
		}
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}

	if e.ContainerID != "" {
		return fmt.Sprintf("%s (container: %s)", e.Err, e.ContainerID)
	}

	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ContainerError) Unwrap() error {
	return e.Err
}

// NewContainerError creates a new container error
func NewContainerError(err error, containerID, message string) *ContainerError {
	return &ContainerError{
		Err:         err,
		ContainerID: containerID,
		Message:     message,
	}
}

// executionFallbackMessage is used when the engine reports no error text.
const executionFallbackMessage = "Execution error."

// suppressedOutputHint is appended to the fallback when output was not attached.
const suppressedOutputHint = " If you need more details, enable container stdout."

// ExecutionError reports a container that finished without a clean exit.
type ExecutionError struct {
	// ContainerID is the ID of the container
	ContainerID string
	// ExitCode is the exit code reported by the engine
	ExitCode int
	// Message is the engine-reported error text, if any
	Message string
	// OutputAttached records whether container output was forwarded to a sink
	OutputAttached bool
}

// NewExecutionError builds an execution error from a terminal container state.
func NewExecutionError(containerID string, state ContainerState, outputAttached bool) *ExecutionError {
	return &ExecutionError{
		ContainerID:    containerID,
		ExitCode:       state.ExitCode,
		Message:        state.Error,
		OutputAttached: outputAttached,
	}
}

// Error returns the engine message, or a fixed fallback when there is none.
func (e *ExecutionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.OutputAttached {
		return executionFallbackMessage
	}
	return executionFallbackMessage + suppressedOutputHint
}

// Unwrap returns ErrContainerExited so callers can match with errors.Is.
func (*ExecutionError) Unwrap() error {
	return ErrContainerExited
}

// ExitCode extracts the container exit code carried by err, if any.
func ExitCode(err error) (int, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.ExitCode, true
	}
	return 0, false
}

// IsContainerNotFound checks if the error is a container not found error
func IsContainerNotFound(err error) bool {
	return errors.Is(err, ErrContainerNotFound)
}

// IsImageNotFound checks if the error is an image not found error
func IsImageNotFound(err error) bool {
	return errors.Is(err, ErrImageNotFound)
}

// IsIdempotentConflict reports whether err means a stop or remove had already
// taken effect. A container that no longer exists counts as removed.
func IsIdempotentConflict(err error) bool {
	return errors.Is(err, ErrAlreadyStopped) || errors.Is(err, ErrContainerNotFound)
}

// IsPrecondition reports whether err is a lifecycle precondition failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoContainer) || errors.Is(err, ErrControllerConsumed)
}
