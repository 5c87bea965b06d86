package store

import (
	"encoding/json"
	"fmt"
)

// envelope holds the root fields of one emitted line.
type envelope struct {
	SequenceNumber   *uint64                    `json:"sequenceNumber"`
	SchemaVersion    json.RawMessage            `json:"schemaVersion"`
	TestRunArtifact  map[string]json.RawMessage `json:"testRunArtifact"`
	TestStepArtifact map[string]json.RawMessage `json:"testStepArtifact"`
}

// parseEnvelope extracts the sequence number, artifact kind and step id.
func parseEnvelope(line string) (Artifact, error) {
	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return Artifact{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.SequenceNumber == nil {
		return Artifact{}, fmt.Errorf("parse envelope: missing sequenceNumber")
	}

	art := Artifact{Seq: *env.SequenceNumber, Line: line}
	switch {
	case env.SchemaVersion != nil:
		art.Kind = "schemaVersion"
	case env.TestRunArtifact != nil:
		art.Kind = soleKey(env.TestRunArtifact, "")
	case env.TestStepArtifact != nil:
		art.Kind = soleKey(env.TestStepArtifact, "testStepId")
		if raw, ok := env.TestStepArtifact["testStepId"]; ok {
			if err := json.Unmarshal(raw, &art.StepID); err != nil {
				return Artifact{}, fmt.Errorf("parse envelope: testStepId: %w", err)
			}
		}
	}
	if art.Kind == "" {
		return Artifact{}, fmt.Errorf("parse envelope: no artifact in line %d", art.Seq)
	}
	return art, nil
}

// soleKey returns the single key of m other than skip, or "" when there is
// not exactly one.
func soleKey(m map[string]json.RawMessage, skip string) string {
	var found string
	for k := range m {
		if k == skip {
			continue
		}
		if found != "" {
			return ""
		}
		found = k
	}
	return found
}
