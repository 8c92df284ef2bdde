// Package errors defines the structured error taxonomy used by the watcher:
// configuration, lifecycle, transient filesystem and compile failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeLifecycle ErrorType = "lifecycle"
	ErrorTypeTransient ErrorType = "transient"
	ErrorTypeCompile   ErrorType = "compile"
	ErrorTypeSecurity  ErrorType = "security"
)

// Common error codes.
const (
	ErrCodeEmptySourceRoot      = "EMPTY_SOURCE_ROOT"
	ErrCodeEmptyDestinationRoot = "EMPTY_DESTINATION_ROOT"
	ErrCodeEmptyNameFilters     = "EMPTY_NAME_FILTERS"
	ErrCodeInvalidNameFilter    = "INVALID_NAME_FILTER"
	ErrCodeMissingConfig        = "MISSING_CONFIG"
	ErrCodeMissingCompiler      = "MISSING_COMPILER"
	ErrCodeAlreadyStarted       = "ALREADY_STARTED"
	ErrCodeStatFailed           = "STAT_FAILED"
	ErrCodeArtifactDelete       = "ARTIFACT_DELETE_FAILED"
	ErrCodeCompileFailed        = "COMPILE_FAILED"
	ErrCodeCommandRejected      = "COMMAND_REJECTED"
)

// ErrAlreadyStarted is matched by the lifecycle error returned when Start is
// called on an active watcher.
var ErrAlreadyStarted = &WatchError{Type: ErrorTypeLifecycle, Code: ErrCodeAlreadyStarted}

// WatchError is a structured error type with context.
type WatchError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Component   string
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *WatchError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *WatchError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *WatchError) Is(target error) bool {
	var t *WatchError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithPath adds the filesystem path the error concerns.
func (e *WatchError) WithPath(path string) *WatchError {
	e.Path = path

	return e
}

// WithComponent adds component context.
func (e *WatchError) WithComponent(component string) *WatchError {
	e.Component = component

	return e
}

// NewConfigError creates a configuration error. Configuration errors are
// raised at construction time and are never recoverable.
func NewConfigError(code, message string) *WatchError {
	return &WatchError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewLifecycleError creates a lifecycle error.
func NewLifecycleError(code, message string) *WatchError {
	return &WatchError{
		Type:        ErrorTypeLifecycle,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewTransientError creates a transient filesystem error.
func NewTransientError(code, message string, cause error) *WatchError {
	return &WatchError{
		Type:        ErrorTypeTransient,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewCompileError creates a compile error for path.
func NewCompileError(path string, cause error) *WatchError {
	return &WatchError{
		Type:        ErrorTypeCompile,
		Code:        ErrCodeCompileFailed,
		Message:     "compile failed",
		Cause:       cause,
		Path:        path,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string, cause error) *WatchError {
	return &WatchError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var we *WatchError
	if errors.As(err, &we) {
		return we.Recoverable
	}

	return false
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsLifecycleError checks if an error is a lifecycle error.
func IsLifecycleError(err error) bool {
	return hasType(err, ErrorTypeLifecycle)
}

// IsTransient checks if an error is a transient filesystem error.
func IsTransient(err error) bool {
	return hasType(err, ErrorTypeTransient)
}

// IsCompileError checks if an error is a compile error.
func IsCompileError(err error) bool {
	return hasType(err, ErrorTypeCompile)
}

func hasType(err error, t ErrorType) bool {
	var we *WatchError
	if errors.As(err, &we) {
		return we.Type == t
	}

	return false
}
