package emitter

import (
	"errors"
	"fmt"
)

// SinkError reports that the Writer rejected a line.
//
// The artifact is lost; the emitter never retries or buffers. The sequence
// number it was given stays consumed.
type SinkError struct {
	// Code identifies the error category.
	Code SinkErrorCode

	// Sequence is the number assigned to the lost line.
	Sequence uint64

	// Err is the Writer's error.
	Err error
}

// SinkErrorCode categorizes sink errors.
type SinkErrorCode string

// ErrCodeWriteFailed indicates the Writer returned an error.
const ErrCodeWriteFailed SinkErrorCode = "WRITE_FAILED"

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: writing artifact %d: %v", e.Code, e.Sequence, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// IsSinkError returns true if err is or wraps a SinkError.
func IsSinkError(err error) bool {
	var se *SinkError
	return errors.As(err, &se)
}
