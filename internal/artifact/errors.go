package artifact

import (
	"errors"
	"fmt"
)

// SchemaError reports an artifact that violates its own schema.
//
// Schema errors are programming errors: a required field left unset, a value
// of a type the wire format cannot carry, or an out-of-range enum. Correct use
// of the public API never produces one.
type SchemaError struct {
	// Code identifies the violation category.
	Code SchemaErrorCode

	// Path is the dotted Go field path, e.g. "StepArtifact.Impl.Value".
	Path string

	// Message is a human-readable description.
	Message string
}

// SchemaErrorCode categorizes schema errors.
type SchemaErrorCode string

const (
	// ErrCodeMissingField indicates a required field has no value.
	ErrCodeMissingField SchemaErrorCode = "MISSING_FIELD"

	// ErrCodeUnsupportedType indicates a value with no serialization strategy.
	ErrCodeUnsupportedType SchemaErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeInvalidEnum indicates an enum value without a wire name.
	ErrCodeInvalidEnum SchemaErrorCode = "INVALID_ENUM"
)

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSchemaError returns true if err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func missingField(path string) *SchemaError {
	return &SchemaError{
		Code:    ErrCodeMissingField,
		Path:    path,
		Message: "required field is unset",
	}
}

func unsupportedType(path string, v any) *SchemaError {
	return &SchemaError{
		Code:    ErrCodeUnsupportedType,
		Path:    path,
		Message: fmt.Sprintf("no serialization for %T", v),
	}
}

// withPath prefixes the path of a SchemaError produced deeper in the tree.
func withPath(err error, prefix string) error {
	var se *SchemaError
	if !errors.As(err, &se) {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	out := *se
	if out.Path == "" {
		out.Path = prefix
	} else {
		out.Path = prefix + "." + out.Path
	}
	return &out
}
