package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{ErrMissingField, "missing template field"},
		{ErrMismatchedPrefix, "template literal mismatch"},
		{ErrDelimiterNotFound, "template delimiter not found"},
		{ErrAmbiguousTemplate, "ambiguous template"},
		{ErrEmptyUpdate, "empty update"},
		{ErrTransportFailure, "batch transport failure"},
		{ErrUnprocessedExhausted, "batch unprocessed items exhausted retries"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestTemplateError(t *testing.T) {
	err := fmt.Errorf("build key: %w", &TemplateError{
		Kind:     ErrMissingField,
		Template: "USER#{{userId}}",
		Field:    "userId",
		Position: 5,
	})

	assert.ErrorIs(t, err, ErrMissingField)
	assert.NotErrorIs(t, err, ErrDelimiterNotFound)
	assert.True(t, IsTemplateError(err))

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "userId", te.Field)
	assert.Contains(t, err.Error(), `field "userId"`)

	noField := &TemplateError{Kind: ErrMismatchedPrefix, Template: "A#{{x}}"}
	assert.NotContains(t, noField.Error(), "field")

	var nilErr *TemplateError
	assert.Equal(t, "tablekit: template error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestBatchError(t *testing.T) {
	t.Run("exhausted", func(t *testing.T) {
		err := &BatchError{
			Kind:       ErrUnprocessedExhausted,
			Attempts:   2,
			Unresolved: 1,
			ChunkSize:  25,
		}
		assert.ErrorIs(t, err, ErrUnprocessedExhausted)
		assert.True(t, IsRetryable(err))
		assert.Contains(t, err.Error(), "1 unprocessed items remain after 2 attempts")
	})

	t.Run("transport failure keeps cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := &BatchError{Kind: ErrTransportFailure, Cause: cause, Attempts: 1, ChunkSize: 100}
		assert.ErrorIs(t, err, ErrTransportFailure)
		assert.ErrorIs(t, err, cause)
		assert.False(t, IsRetryable(err))
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestPathError(t *testing.T) {
	err := &PathError{Kind: ErrInvalidPath, Op: "Set"}
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Equal(t, "tablekit: Set: invalid attribute path", err.Error())

	named := &PathError{Kind: ErrInvalidPath, Op: "Remove", Path: "a"}
	assert.Equal(t, `tablekit: Remove("a"): invalid attribute path`, named.Error())
}
