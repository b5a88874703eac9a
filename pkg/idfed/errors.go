package idfed

import (
	"errors"
	"fmt"
)

// Kind classifies a federation error for handling and reporting.
type Kind string

const (
	// KindConfiguration indicates missing or invalid settings at construction.
	// Fatal: the adapter cannot be built, nothing to retry.
	KindConfiguration Kind = "configuration"
	// KindDirectory indicates a user-directory failure (duplicate username,
	// rejected password, transport fault).
	KindDirectory Kind = "directory"
	// KindAuthentication indicates invalid credentials, an unconfirmed user,
	// or a disabled account.
	KindAuthentication Kind = "authentication"
	// KindConfirmation indicates a reused, expired, or mismatched
	// confirmation code.
	KindConfirmation Kind = "confirmation"
	// KindUnknownProvider indicates a federation provider name outside the
	// configured set. Programmer error, detected before any network call.
	KindUnknownProvider Kind = "unknown_provider"
	// KindFederation indicates an identity allocation or credential
	// exchange failure.
	KindFederation Kind = "federation"
	// KindProvisioning wraps the error that triggered saga compensation.
	KindProvisioning Kind = "provisioning"
	// KindNotFound indicates a referenced resource does not exist.
	KindNotFound Kind = "not_found"
)

// Error is a structured error with kind and context.
type Error struct {
	// Kind classifies the error.
	Kind Kind

	// Message is a human-readable error message.
	Message string

	// Operation is the operation that failed (e.g. "sign_up", "get_id").
	Operation string

	// Resource identifies the subject of the failure (a username, an
	// identity handle). Never a secret.
	Resource string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Operation != "" {
		msg = fmt.Sprintf("[%s:%s] %s", e.Kind, e.Operation, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind.
func (e *Error) Is(target error) bool {
	var fe *Error
	if errors.As(target, &fe) {
		return e.Kind == fe.Kind
	}
	return false
}

// NewError creates a new Error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithOperation sets the failing operation.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithResource sets the resource identifier.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithCause sets the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Convenience constructors for common error kinds

// ErrConfiguration creates a configuration error.
func ErrConfiguration(message string) *Error {
	return NewError(KindConfiguration, message)
}

// ErrDirectory creates a directory error.
func ErrDirectory(message string) *Error {
	return NewError(KindDirectory, message)
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(message string) *Error {
	return NewError(KindAuthentication, message)
}

// ErrConfirmation creates a confirmation error.
func ErrConfirmation(message string) *Error {
	return NewError(KindConfirmation, message)
}

// ErrUnknownProvider creates an unknown-provider error.
func ErrUnknownProvider(name string) *Error {
	return NewError(KindUnknownProvider, fmt.Sprintf("unknown login provider: %s", name)).
		WithResource(name)
}

// ErrFederation creates a federation error.
func ErrFederation(message string) *Error {
	return NewError(KindFederation, message)
}

// ErrProvisioning creates a provisioning error wrapping the trigger.
func ErrProvisioning(message string, cause error) *Error {
	return NewError(KindProvisioning, message).WithCause(cause)
}

// ErrNotFound creates a not-found error.
func ErrNotFound(resource string) *Error {
	return NewError(KindNotFound, fmt.Sprintf("not found: %s", resource)).
		WithResource(resource)
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
