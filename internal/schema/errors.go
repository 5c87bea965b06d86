package schema

import (
	"errors"
	"fmt"
)

// ValidationError describes one violation of the wire format.
type ValidationError struct {
	// Code identifies the violation category.
	Code ValidationErrorCode `json:"code"`

	// Line is the 1-based line number within a stream, 0 for a single line.
	Line int `json:"line,omitempty"`

	// Variant is the artifact kind being checked, when known.
	Variant string `json:"variant,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode string

const (
	// ErrCodeMalformed indicates the line is not a JSON object.
	ErrCodeMalformed ValidationErrorCode = "MALFORMED_JSON"

	// ErrCodeVariantCount indicates zero or several variants at a union site.
	ErrCodeVariantCount ValidationErrorCode = "VARIANT_COUNT"

	// ErrCodeSchemaMismatch indicates the line does not unify with #Envelope.
	ErrCodeSchemaMismatch ValidationErrorCode = "SCHEMA_MISMATCH"

	// ErrCodeMissingPreamble indicates the stream does not open with
	// schemaVersion at sequence number 0.
	ErrCodeMissingPreamble ValidationErrorCode = "MISSING_PREAMBLE"

	// ErrCodeSequenceGap indicates a sequence number that is not the previous
	// one plus one.
	ErrCodeSequenceGap ValidationErrorCode = "SEQUENCE_GAP"
)

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
