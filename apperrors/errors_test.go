package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"validation", NewValidationError("subject is required"), ErrCodeValidationFailed, false},
		{"configuration", NewConfigurationError("senderEmail"), ErrCodeConfigurationMissing, false},
		{"import", NewImportFormatError("no email column"), ErrCodeImportFormatInvalid, false},
		{"transport", NewTransportError("a@x.org", cause), ErrCodeTransportFailed, true},
		{"not found", NewNotFoundError("Scheduled email", "abc"), ErrCodeNotFound, false},
		{"invalid state", NewInvalidStateError("already completed"), ErrCodeInvalidState, false},
		{"storage", NewStorageError("save contacts", cause), ErrCodeStorageFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestCodeOf_Wrapped(t *testing.T) {
	base := NewNotFoundError("Contact", "a@x.org")
	wrapped := fmt.Errorf("delete contact: %w", base)

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeValidationFailed))
	assert.False(t, HasCode(nil, ErrCodeNotFound))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestUnwrap_ReachesCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewTransportError("a@x.org", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a@x.org")
}
