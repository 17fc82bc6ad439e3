// Package apperrors provides the coded error kinds surfaced by the mailer.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode identifies an error kind independent of its message.
type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeImportFormatInvalid  ErrorCode = "IMPORT_FORMAT_INVALID"
	ErrCodeTransportFailed      ErrorCode = "TRANSPORT_FAILED"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState         ErrorCode = "INVALID_STATE"
	ErrCodeStorageFailed        ErrorCode = "STORAGE_FAILED"
)

// StandardError is a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError reports invalid user input. Nothing was written.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Validation failed", details, false, nil)
}

// NewConfigurationError reports missing sender settings.
func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfigurationMissing, "Sender configuration incomplete", details, false, nil)
}

// NewImportFormatError reports a spreadsheet that lacks required columns.
func NewImportFormatError(details string) *StandardError {
	return newError(ErrCodeImportFormatInvalid, "Unsupported spreadsheet format", details, false, nil)
}

// NewTransportError wraps a failed delivery to one recipient.
func NewTransportError(recipient string, err error) *StandardError {
	details := recipient
	if err != nil {
		details = fmt.Sprintf("%s: %v", recipient, err)
	}
	return newError(ErrCodeTransportFailed, "Email delivery failed", details, true, err)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource, id string) *StandardError {
	return newError(ErrCodeNotFound, resource+" not found", id, false, nil)
}

// NewInvalidStateError reports an operation the current state forbids.
func NewInvalidStateError(details string) *StandardError {
	return newError(ErrCodeInvalidState, "Operation not allowed in current state", details, false, nil)
}

// NewStorageError wraps a store failure.
func NewStorageError(op string, err error) *StandardError {
	return newError(ErrCodeStorageFailed, "Storage operation failed", op, true, err)
}

// CodeOf returns the code of the first StandardError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
