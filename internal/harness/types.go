package harness

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TraceEvent is one decoded output line.
type TraceEvent struct {
	Seq uint64 `json:"seq"`

	// Kind is the innermost variant key: "schemaVersion", "testRunStart",
	// "measurement", ...
	Kind string `json:"kind"`

	// StepID is set for step artifacts.
	StepID string `json:"step_id,omitempty"`

	// Body is the decoded variant object.
	Body map[string]any `json:"body"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when execution succeeded and every assertion held.
	Pass bool `json:"pass"`

	// Lines are the raw output lines in emission order.
	Lines []string `json:"lines"`

	// Trace holds Lines decoded.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Lines:  []string{},
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddLine decodes line and appends it to the trace.
func (r *Result) AddLine(line string) error {
	ev, err := decodeEvent(line)
	if err != nil {
		return err
	}
	r.Lines = append(r.Lines, line)
	r.Trace = append(r.Trace, ev)
	return nil
}

// Kinds returns the Kind of every trace event in order.
func (r *Result) Kinds() []string {
	kinds := make([]string, len(r.Trace))
	for i, ev := range r.Trace {
		kinds[i] = ev.Kind
	}
	return kinds
}

func decodeEvent(line string) (TraceEvent, error) {
	var root map[string]any
	if err := json.Unmarshal([]byte(line), &root); err != nil {
		return TraceEvent{}, fmt.Errorf("decoding output line: %w", err)
	}

	ev := TraceEvent{}
	if seq, ok := root["sequenceNumber"].(float64); ok {
		ev.Seq = uint64(seq)
	}

	switch {
	case root["schemaVersion"] != nil:
		ev.Kind = "schemaVersion"
		ev.Body, _ = root["schemaVersion"].(map[string]any)
	case root["testRunArtifact"] != nil:
		run, _ := root["testRunArtifact"].(map[string]any)
		ev.Kind, ev.Body = innerVariant(run, "")
	case root["testStepArtifact"] != nil:
		step, _ := root["testStepArtifact"].(map[string]any)
		ev.StepID, _ = step["testStepId"].(string)
		ev.Kind, ev.Body = innerVariant(step, "testStepId")
	}
	if ev.Kind == "" {
		return TraceEvent{}, fmt.Errorf("output line has no known artifact: %s", truncate(line, 80))
	}
	return ev, nil
}

// innerVariant returns the single object-valued key of a wrapper, skipping
// skip.
func innerVariant(wrapper map[string]any, skip string) (string, map[string]any) {
	for k, v := range wrapper {
		if k == skip {
			continue
		}
		body, _ := v.(map[string]any)
		return k, body
	}
	return "", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
