package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	err := New(ErrorTypeConfiguration, "parse_config", "test message")
	expected := "[configuration] parse_config: test message"
	assert.Equal(t, expected, err.Error())

	cause := errors.New("underlying error")
	err = Wrap(cause, ErrorTypeConfiguration, "parse_config", "failed to parse")
	assert.Contains(t, err.Error(), "[configuration] parse_config: failed to parse")
	assert.Contains(t, err.Error(), "underlying error")
	assert.Equal(t, cause, err.Unwrap())
}

func TestErrorConstructors(t *testing.T) {
	assert.Equal(t, ErrorTypeConfiguration, NewConfigurationError("op", "msg").Type)
}

func TestErrorWrapping(t *testing.T) {
	originalErr := errors.New("original error")

	wrapped := WrapConfigurationError(originalErr, "validate", "validation failed")
	assert.Equal(t, ErrorTypeConfiguration, wrapped.Type)
	assert.Equal(t, "validate", wrapped.Operation)
	assert.Equal(t, "validation failed", wrapped.Message)
	assert.Equal(t, originalErr, wrapped.Unwrap())

	assert.Nil(t, Wrap(nil, ErrorTypeConfiguration, "op", "msg"))
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "configuration", string(ErrorTypeConfiguration))
}
