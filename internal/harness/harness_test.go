package harness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/ocptv"
	"github.com/roach88/ocptv/internal/testutil"
)

func TestMain(m *testing.M) {
	time.Local = time.UTC
	goleak.VerifyTestMain(m)
}

func executeYAML(t *testing.T, data string, w ocptv.Writer) (*Result, error) {
	t.Helper()
	s, err := ParseScenario([]byte(data))
	require.NoError(t, err)
	clock := testutil.NewDeterministicClock()
	return Execute(s, w, ocptv.WithClock(clock.Now))
}

func TestExecute_TeesToWriter(t *testing.T) {
	buf := ocptv.NewBufferWriter()
	result, err := executeYAML(t, minimalScenario, buf)
	require.NoError(t, err)

	assert.Equal(t, buf.Lines(), result.Lines)
	assert.Equal(t, []string{
		"schemaVersion", "testRunStart", "testStepStart", "testStepEnd", "testRunEnd",
	}, result.Kinds())
	assert.True(t, result.Pass)
}

func TestExecute_TraceEvents(t *testing.T) {
	result, err := executeYAML(t, minimalScenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Trace, 5)

	for i, ev := range result.Trace {
		assert.Equal(t, uint64(i), ev.Seq)
	}
	assert.Equal(t, "", result.Trace[1].StepID)
	assert.Equal(t, "0", result.Trace[2].StepID)
	assert.Equal(t, "only", result.Trace[2].Body["name"])
	assert.Equal(t, map[string]any{"status": "COMPLETE", "result": "PASS"}, result.Trace[4].Body)
}

func TestExecute_OutcomeAndStepStatus(t *testing.T) {
	data := `
name: skipped
run: { name: diag, version: "1.0" }
dut: { id: dut0 }
steps:
  - name: a
    status: ERROR
  - name: b
outcome: { status: SKIP, result: NOT_APPLICABLE }
`
	result, err := executeYAML(t, data, nil)
	require.NoError(t, err)

	var ends []string
	for _, ev := range result.Trace {
		if ev.Kind == "testStepEnd" {
			ends = append(ends, ev.StepID+":"+ev.Body["status"].(string))
		}
	}
	assert.Equal(t, []string{"0:ERROR", "1:COMPLETE"}, ends)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, "testRunEnd", last.Kind)
	assert.Equal(t, map[string]any{"status": "SKIP", "result": "NOT_APPLICABLE"}, last.Body)
}

func TestExecute_StringListMeasurement(t *testing.T) {
	data := `
name: lists
run: { name: diag, version: "1.0" }
dut: { id: dut0 }
steps:
  - name: s
    artifacts:
      - measurement: { name: lanes, value: [x1, x4] }
      - measurement:
          name: speed
          value: 8
          validators:
            - { type: IN_SET, value: [4, 8, 16] }
`
	result, err := executeYAML(t, data, nil)
	require.NoError(t, err)

	var values []any
	for _, ev := range result.Trace {
		if ev.Kind == "measurement" {
			values = append(values, ev.Body["value"])
		}
	}
	assert.Equal(t, []any{[]any{"x1", "x4"}, float64(8)}, values)
	assert.Contains(t, result.Lines[4], `"validators":[{"type":"IN_SET","value":[4,8,16]}]`)
}

func TestExecute_SerializationFailureEndsRunWithError(t *testing.T) {
	data := `
name: bad
run: { name: diag, version: "1.0" }
dut: { id: dut0 }
steps:
  - name: s
    artifacts:
      - measurement: { name: m, value: { nested: map } }
`
	buf := ocptv.NewBufferWriter()
	_, err := executeYAML(t, data, buf)
	require.Error(t, err)
	assert.True(t, ocptv.IsSchemaError(err))

	lines := buf.Lines()
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-2], `"testStepEnd":{"status":"ERROR"}`)
	assert.Contains(t, lines[len(lines)-1], `"testRunEnd":{"status":"ERROR","result":"NOT_APPLICABLE"}`)
}

type failingWriter struct{}

func (failingWriter) Write(string) error { return errors.New("disk full") }

func TestExecute_WriterFailure(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	_, err = Execute(s, failingWriter{})
	require.Error(t, err)
	assert.True(t, ocptv.IsSinkError(err))
}

func TestExecute_AssertionFailuresRecorded(t *testing.T) {
	data := minimalScenario + `
assertions:
  - type: artifact_count
    kind: measurement
    count: 1
`
	result, err := executeYAML(t, data, nil)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "1 occurrences of measurement")
}

func TestExecute_SchemaValidationOption(t *testing.T) {
	s := loadTestdata(t, "memory_diagnostics")
	result, err := Execute(s, nil, ocptv.WithSchemaValidation())
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
}
