// Package errors provides the coded error taxonomy shared by the supervisor,
// the orchestrator and the loopback sign-in flow.
//
// Codes follow the format {domain}.{error}. They are stable and are what the
// GUI layer switches on; the message is meant for humans.
package errors

import (
	"errors"
	"fmt"
)

const (
	// Config domain - persisted key/value store
	CodeConfigStore = "config.store_failed" // Store unreadable, corrupt or not writable

	// Port domain - contended local ports
	CodePortConflict = "port.conflict" // Port busy and could not be freed or reused
	CodePortInUse    = "port.in_use"   // Loopback listener could not bind its fixed port

	// Process domain - sidecar binaries and child processes
	CodeResourceNotFound = "process.resource_not_found" // Required binary or directory missing
	CodeInitFailed       = "process.init_failed"        // Database initialization exited non-zero
	CodeStartFailed      = "process.start_failed"       // Engine start failed and no compatible instance answered
	CodeSpawnFailed      = "process.spawn_failed"       // Could not launch a child process

	// Auth domain - loopback sign-in
	CodeTimeout          = "auth.timeout"           // No callback arrived within the window
	CodeAlreadyCompleted = "auth.already_completed" // Rendezvous already resolved
	CodeBrowserFailed    = "auth.browser_failed"    // System browser could not be launched

	// General
	CodeBadInput = "error.bad_input"
	CodeUnknown  = "error.unknown"
)

// CodedError wraps an error with a stable error code.
type CodedError struct {
	Code    string // Stable error code (e.g., "port.conflict")
	Message string // Human-readable error message
	Detail  string // Captured diagnostic text such as a child's stderr
	Cause   error  // Underlying error (may be nil)
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CodedError) Unwrap() error {
	return e.Cause
}

// New creates a new CodedError with the given code and message.
func New(code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Wrap creates a new CodedError wrapping an existing error.
func Wrap(code, message string, cause error) *CodedError {
	return &CodedError{Code: code, Message: message, Cause: cause}
}

// GetCode extracts the error code from an error chain.
// Falls back to CodeUnknown for unrecognized errors.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// UserMessage renders an error the way setup and status failures are shown to
// the user: the message plus any captured diagnostic text, without the code.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		if coded.Detail != "" {
			return coded.Message + ": " + coded.Detail
		}
		if coded.Cause != nil {
			return fmt.Sprintf("%s: %v", coded.Message, coded.Cause)
		}
		return coded.Message
	}
	return err.Error()
}

// ConfigStore creates a "config.store_failed" error.
func ConfigStore(op, path string, cause error) *CodedError {
	return Wrap(CodeConfigStore, fmt.Sprintf("failed to %s config store %s", op, path), cause)
}

// PortConflict creates a "port.conflict" error.
func PortConflict(service string, port int) *CodedError {
	return New(CodePortConflict, fmt.Sprintf("port %d required by %s is in use and could not be freed", port, service))
}

// PortInUse creates a "port.in_use" error.
func PortInUse(port int, cause error) *CodedError {
	return Wrap(CodePortInUse, fmt.Sprintf("port %d is already in use, another sign-in may be in progress", port), cause)
}

// ResourceNotFound creates a "process.resource_not_found" error.
func ResourceNotFound(what, path string) *CodedError {
	return New(CodeResourceNotFound, fmt.Sprintf("%s not found at %s", what, path))
}

// InitFailed creates a "process.init_failed" error carrying the captured stderr.
func InitFailed(stderr string, cause error) *CodedError {
	return &CodedError{Code: CodeInitFailed, Message: "database initialization failed", Detail: stderr, Cause: cause}
}

// StartFailed creates a "process.start_failed" error carrying the captured stderr.
func StartFailed(service, stderr string, cause error) *CodedError {
	return &CodedError{Code: CodeStartFailed, Message: fmt.Sprintf("failed to start %s", service), Detail: stderr, Cause: cause}
}

// SpawnFailed creates a "process.spawn_failed" error.
func SpawnFailed(binary string, cause error) *CodedError {
	return Wrap(CodeSpawnFailed, fmt.Sprintf("failed to launch %s", binary), cause)
}

// Timeout creates an "auth.timeout" error.
func Timeout(what string) *CodedError {
	return New(CodeTimeout, fmt.Sprintf("%s timed out", what))
}

// BadInput creates an "error.bad_input" error.
func BadInput(reason string) *CodedError {
	return New(CodeBadInput, reason)
}

// AlreadyCompleted creates an "auth.already_completed" error for a repeated callback.
func AlreadyCompleted(id string) *CodedError {
	return New(CodeAlreadyCompleted, fmt.Sprintf("sign-in %s already received its callback", id))
}
