package schema

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxLineSize bounds a single artifact line.
const maxLineSize = 16 << 20

// Report summarizes a validated stream.
type Report struct {
	// Lines is the number of non-empty lines read.
	Lines int

	// Errors lists every violation found, in line order.
	Errors []*ValidationError
}

// OK reports whether the stream had no violations.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// ValidateStream checks every line of r and the stream-level invariants.
// All violations are collected; the returned error is only set when reading
// fails.
func (v *Validator) ValidateStream(r io.Reader) (*Report, error) {
	report := &Report{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		lineNo  int
		prevSeq uint64
		haveSeq bool
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		report.Lines++

		if err := v.ValidateLine(line); err != nil {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				return nil, err
			}
			ve.Line = lineNo
			report.Errors = append(report.Errors, ve)
		}

		var head struct {
			SchemaVersion  json.RawMessage `json:"schemaVersion"`
			SequenceNumber *uint64         `json:"sequenceNumber"`
		}
		if err := json.Unmarshal(line, &head); err != nil || head.SequenceNumber == nil {
			continue
		}
		seq := *head.SequenceNumber

		if report.Lines == 1 {
			if head.SchemaVersion == nil || seq != 0 {
				report.Errors = append(report.Errors, &ValidationError{
					Code:    ErrCodeMissingPreamble,
					Line:    lineNo,
					Message: "stream must start with schemaVersion at sequence number 0",
				})
			}
		} else if haveSeq && seq != prevSeq+1 {
			report.Errors = append(report.Errors, &ValidationError{
				Code:    ErrCodeSequenceGap,
				Line:    lineNo,
				Message: fmt.Sprintf("sequence number %d follows %d", seq, prevSeq),
			})
		}
		prevSeq, haveSeq = seq, true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}
	return report, nil
}
