package redact

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMissingColumn indicates a column required by a rule is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrColumnType indicates a rule was bound to a column of the wrong type.
	ErrColumnType = errors.New("column type mismatch")

	// ErrInvalidRule indicates a redact tag has an invalid format or value.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidTag indicates a projection tag is malformed or unsupported.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidTable indicates columns of mismatched length or duplicate names.
	ErrInvalidTable = errors.New("invalid table")

	// ErrUnmaskable indicates a value does not have the shape its masker expects.
	ErrUnmaskable = errors.New("unmaskable value")

	// ErrTransform indicates a cell could not be parsed for coarsening or normalization.
	ErrTransform = errors.New("transform failed")

	// ErrDecode indicates a source document could not be decoded into records.
	ErrDecode = errors.New("decode failed")

	// ErrUnknownCodec indicates no codec is registered for an object.
	ErrUnknownCodec = errors.New("unknown codec")

	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// ConfigError represents a violation of the schema contract between the
// projection and the redactor. It is fatal.
type ConfigError struct {
	Err    error  // Underlying sentinel error (ErrMissingColumn, etc.)
	Column string // Column that triggered the error
	Rule   string // Rule bound to the column
}

func (e *ConfigError) Error() string {
	if e.Column != "" && e.Rule != "" {
		return fmt.Sprintf("%s %q (rule %s)", e.Err.Error(), e.Column, e.Rule)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.Column)
	}
	if e.Rule != "" {
		return fmt.Sprintf("%s (rule %s)", e.Err.Error(), e.Rule)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransformError represents a cell that could not be transformed.
type TransformError struct {
	Err    error  // Underlying sentinel error (ErrTransform)
	Column string // Column being transformed
	Row    int    // Zero-based row index
	Rule   string // Rule that failed
	Cause  error  // Original parse error
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s column %s row %d: %v", e.Rule, e.Column, e.Row, e.Cause)
	}
	return fmt.Sprintf("%s column %s row %d", e.Rule, e.Column, e.Row)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError represents a decode failure.
type CodecError struct {
	Err         error  // Underlying sentinel error (ErrDecode)
	ContentType string // Codec content type
	Cause       error  // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Err.Error(), e.ContentType, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.ContentType)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for schema contract violations.
func newConfigError(sentinel error, column string, rule Rule) error {
	return &ConfigError{
		Err:    sentinel,
		Column: column,
		Rule:   rule.String(),
	}
}

// newTransformError creates a TransformError for cell failures.
func newTransformError(column string, row int, rule Rule, cause error) error {
	return &TransformError{
		Err:    ErrTransform,
		Column: column,
		Row:    row,
		Rule:   rule.String(),
		Cause:  cause,
	}
}

// newCodecError creates a CodecError for decode failures.
func newCodecError(contentType string, cause error) error {
	return &CodecError{
		Err:         ErrDecode,
		ContentType: contentType,
		Cause:       cause,
	}
}
