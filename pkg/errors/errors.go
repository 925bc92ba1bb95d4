// Package errors defines error kinds and context-carrying error types for TableKit
package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on these with errors.Is.
var (
	// ErrMissingField is returned when a template build has no value for a field
	ErrMissingField = errors.New("missing template field")

	// ErrMismatchedPrefix is returned when a literal segment does not match during extraction
	ErrMismatchedPrefix = errors.New("template literal mismatch")

	// ErrDelimiterNotFound is returned when the literal following a field is absent from the input
	ErrDelimiterNotFound = errors.New("template delimiter not found")

	// ErrAmbiguousTemplate is returned when two field segments are adjacent with no delimiter
	ErrAmbiguousTemplate = errors.New("ambiguous template")

	// ErrDuplicateFieldMismatch is returned when a repeated field extracts to different values
	ErrDuplicateFieldMismatch = errors.New("duplicate template field values differ")

	// ErrEmptyUpdate is returned when an update carries no actions
	ErrEmptyUpdate = errors.New("empty update")

	// ErrEmptyComposite is returned when an and/or node has no operands
	ErrEmptyComposite = errors.New("composite condition requires at least one operand")

	// ErrInvalidCondition is returned for malformed condition nodes
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrInvalidPath is returned when an attribute path is empty
	ErrInvalidPath = errors.New("invalid attribute path")

	// ErrAliasConflict is returned when two alias maps define the same alias differently
	ErrAliasConflict = errors.New("expression alias conflict")

	// ErrTransportFailure is returned when the network adapter fails during a batch attempt
	ErrTransportFailure = errors.New("batch transport failure")

	// ErrUnprocessedExhausted is returned when batch retries run out with work remaining
	ErrUnprocessedExhausted = errors.New("batch unprocessed items exhausted retries")

	// ErrInvalidRetryOptions is returned when retry options are out of range
	ErrInvalidRetryOptions = errors.New("invalid retry options")

	// ErrInvalidKey is returned when a primary key cannot be resolved
	ErrInvalidKey = errors.New("invalid key")
)

// TemplateError carries the template and field involved in a build or extract failure.
type TemplateError struct {
	Kind     error
	Template string
	Field    string
	Position int
}

func (e *TemplateError) Error() string {
	if e == nil {
		return "tablekit: template error"
	}
	if e.Field == "" {
		return fmt.Sprintf("tablekit: %v in %q at offset %d", e.Kind, e.Template, e.Position)
	}
	return fmt.Sprintf("tablekit: %v: field %q in %q at offset %d", e.Kind, e.Field, e.Template, e.Position)
}

// Unwrap returns the error kind
func (e *TemplateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// BatchError reports a failed batch call.
//
// Kind is ErrTransportFailure or ErrUnprocessedExhausted. For exhaustion,
// Unresolved counts the work units still unprocessed in the failing chunk and
// Attempts is the attempt budget that was spent on it.
type BatchError struct {
	Kind       error
	Cause      error
	BatchID    string
	Attempts   int
	Unresolved int
	ChunkSize  int
	Chunk      int
}

func (e *BatchError) Error() string {
	if e == nil {
		return "tablekit: batch failed"
	}
	if errors.Is(e.Kind, ErrUnprocessedExhausted) {
		return fmt.Sprintf("tablekit: batch chunk %d (size %d): %d unprocessed items remain after %d attempts",
			e.Chunk, e.ChunkSize, e.Unresolved, e.Attempts)
	}
	if e.Cause != nil {
		return fmt.Sprintf("tablekit: batch chunk %d (size %d) failed on attempt %d: %v",
			e.Chunk, e.ChunkSize, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("tablekit: batch chunk %d (size %d) failed: %v", e.Chunk, e.ChunkSize, e.Kind)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// PathError reports an authoring mistake tied to an attribute path.
type PathError struct {
	Kind error
	Op   string
	Path string
}

func (e *PathError) Error() string {
	if e == nil {
		return "tablekit: path error"
	}
	if e.Path == "" {
		return fmt.Sprintf("tablekit: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("tablekit: %s(%q): %v", e.Op, e.Path, e.Kind)
}

// Unwrap returns the error kind
func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// IsTemplateError reports whether err came from the template engine
func IsTemplateError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te)
}

// IsRetryable reports whether a batch failure was caused by exhausted unprocessed retries
// rather than a transport failure. Transport failures are never retried by TableKit.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnprocessedExhausted)
}
