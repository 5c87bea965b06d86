package ocptv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/ocptv/internal/schema"
	"github.com/roach88/ocptv/internal/testutil"
)

func TestMain(m *testing.M) {
	time.Local = time.UTC
	goleak.VerifyTestMain(m)
}

func newTestRun(t *testing.T, opts ...RunOption) (*Run, *BufferWriter) {
	t.Helper()
	buf := NewBufferWriter()
	clock := testutil.NewDeterministicClock()
	base := []RunOption{
		WithWriter(buf),
		WithClock(clock.Now),
		WithCommandLine("cl"),
		WithParameters(map[string]any{"param": "test"}),
	}
	return NewRun("test", "1.0", append(base, opts...)...), buf
}

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	return out
}

// stepBody returns the inner artifact of a testStepArtifact line.
func stepBody(t *testing.T, line, kind string) map[string]any {
	t.Helper()
	step, ok := decode(t, line)["testStepArtifact"].(map[string]any)
	require.True(t, ok, "not a step artifact: %s", line)
	body, ok := step[kind].(map[string]any)
	require.True(t, ok, "no %s in %s", kind, line)
	return body
}

func TestRun_RoundTrip(t *testing.T) {
	run, buf := newTestRun(t)

	require.NoError(t, run.Start(NewDut("d0")))
	step := run.AddStep("step0")
	require.NoError(t, step.Start())
	require.NoError(t, step.AddMeasurement(Measurement{Name: "fan_speed", Value: "1200", Unit: "rpm"}))
	require.NoError(t, step.End(StatusComplete))
	require.NoError(t, run.End(StatusComplete, ResultPass))

	assert.Equal(t, []string{
		`{"schemaVersion":{"major":2,"minor":0},"sequenceNumber":0,"timestamp":"2024-01-01T00:00:00.000000Z"}`,
		`{"testRunArtifact":{"testRunStart":{"name":"test","version":"1.0","commandLine":"cl","parameters":{"param":"test"},"dutInfo":{"dutInfoId":"d0","platformInfos":[],"softwareInfos":[],"hardwareInfos":[]}}},"sequenceNumber":1,"timestamp":"2024-01-01T00:00:00.001000Z"}`,
		`{"testStepArtifact":{"testStepStart":{"name":"step0"},"testStepId":"0"},"sequenceNumber":2,"timestamp":"2024-01-01T00:00:00.002000Z"}`,
		`{"testStepArtifact":{"measurement":{"name":"fan_speed","value":"1200","unit":"rpm","validators":[]},"testStepId":"0"},"sequenceNumber":3,"timestamp":"2024-01-01T00:00:00.003000Z"}`,
		`{"testStepArtifact":{"testStepEnd":{"status":"COMPLETE"},"testStepId":"0"},"sequenceNumber":4,"timestamp":"2024-01-01T00:00:00.004000Z"}`,
		`{"testRunArtifact":{"testRunEnd":{"status":"COMPLETE","result":"PASS"}},"sequenceNumber":5,"timestamp":"2024-01-01T00:00:00.005000Z"}`,
	}, buf.Lines())
}

func TestRun_Accessors(t *testing.T) {
	run, _ := newTestRun(t)
	assert.Equal(t, "test", run.Name())
	assert.Equal(t, "1.0", run.Version())
	assert.Equal(t, "cl", run.CommandLine())
	assert.Equal(t, map[string]any{"param": "test"}, run.Parameters())
}

func TestRun_PreambleFirstWhateverEmitsFirst(t *testing.T) {
	run, buf := newTestRun(t)

	require.NoError(t, run.AddLog(SeverityWarning, "early"))

	lines := buf.Lines()
	require.Len(t, lines, 2)
	first := decode(t, lines[0])
	assert.Contains(t, first, "schemaVersion")
	assert.Equal(t, float64(0), first["sequenceNumber"])
	assert.Equal(t, float64(1), decode(t, lines[1])["sequenceNumber"])
}

func TestRun_ErrorBeforeStart(t *testing.T) {
	run, buf := newTestRun(t)

	require.NoError(t, run.AddError(ErrorInfo{Symptom: "x"}))

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `{"testRunArtifact":{"error":{"symptom":"x","softwareInfoIds":[]}},"sequenceNumber":1`)
}

func TestRun_StepIDsAreSequential(t *testing.T) {
	run, _ := newTestRun(t)

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, run.AddStep(fmt.Sprintf("s%d", i)).ID())
	}
	assert.Equal(t, []string{"0", "1", "2"}, ids)
}

func TestRun_ConcurrentSteps(t *testing.T) {
	run, buf := newTestRun(t)
	require.NoError(t, run.Start(NewDut("d0")))

	const steps = 8
	const perStep = 25

	var g errgroup.Group
	for i := 0; i < steps; i++ {
		step := run.AddStep(fmt.Sprintf("worker%d", i))
		g.Go(func() error {
			return step.Scope(func(s *Step) error {
				for j := 0; j < perStep; j++ {
					if err := s.AddMeasurement(Measurement{Name: "n", Value: j}); err != nil {
						return err
					}
				}
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())
	require.NoError(t, run.End(StatusComplete, ResultPass))

	lines := buf.Lines()
	require.Len(t, lines, 1+1+steps*(perStep+2)+1)
	for i, line := range lines {
		assert.Equal(t, float64(i), decode(t, line)["sequenceNumber"], "line %d", i)
	}
}

func TestRun_ScopeRunErrorSetsOutcome(t *testing.T) {
	run, buf := newTestRun(t)

	err := run.Scope(NewDut("d0"), func(r *Run) error {
		return fmt.Errorf("no dimms: %w", &RunError{Status: StatusSkip, Result: ResultNotApplicable})
	})
	require.NoError(t, err)

	lines := buf.Lines()
	assert.Contains(t, lines[len(lines)-1], `"testRunEnd":{"status":"SKIP","result":"NOT_APPLICABLE"}`)
}

func TestRun_ScopeOutcomes(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(*Run) error
		wantEnd string
		wantErr error
	}{
		{"nil", func(*Run) error { return nil }, `"testRunEnd":{"status":"COMPLETE","result":"PASS"}`, nil},
		{"run error", func(*Run) error { return &RunError{Status: StatusComplete, Result: ResultFail} }, `"testRunEnd":{"status":"COMPLETE","result":"FAIL"}`, nil},
		{"fault", func(*Run) error { return boom }, `"testRunEnd":{"status":"ERROR","result":"NOT_APPLICABLE"}`, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, buf := newTestRun(t)
			err := run.Scope(NewDut("d0"), tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			lines := buf.Lines()
			require.Len(t, lines, 3)
			assert.Contains(t, lines[2], tt.wantEnd)
		})
	}
}

func TestRun_ScopePanicEndsRunAndRepanics(t *testing.T) {
	run, buf := newTestRun(t)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = run.Scope(NewDut("d0"), func(r *Run) error {
			panic("kaboom")
		})
	})

	lines := buf.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], `"testRunEnd":{"status":"ERROR","result":"NOT_APPLICABLE"}`)
}

// flakyWriter fails every write after the first n.
type flakyWriter struct {
	buf *BufferWriter
	n   int
}

func (w *flakyWriter) Write(line string) error {
	if w.buf.Len() >= w.n {
		return errors.New("disk full")
	}
	return w.buf.Write(line)
}

func TestRun_ScopeJoinsFaultAndEndFailure(t *testing.T) {
	w := &flakyWriter{buf: NewBufferWriter(), n: 2}
	run := NewRun("test", "1.0", WithWriter(w))
	boom := errors.New("boom")

	err := run.Scope(NewDut("d0"), func(r *Run) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsSinkError(err))
}

func TestRun_SinkErrorSurfaces(t *testing.T) {
	w := &flakyWriter{buf: NewBufferWriter(), n: 0}
	run := NewRun("test", "1.0", WithWriter(w))

	err := run.Start(NewDut("d0"))
	require.Error(t, err)
	assert.True(t, IsSinkError(err))
	var sinkErr *SinkError
	assert.ErrorAs(t, err, &sinkErr)
}

func TestRun_SchemaErrorSurfaces(t *testing.T) {
	run, buf := newTestRun(t)
	step := run.AddStep("s")

	err := step.AddMeasurement(Measurement{Name: "m", Value: struct{}{}})
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Zero(t, buf.Len())
}

func TestRun_SchemaValidationOption(t *testing.T) {
	run, buf := newTestRun(t, WithSchemaValidation())

	err := run.Scope(NewDut("d0"), func(r *Run) error {
		return r.AddStep("s").Scope(func(s *Step) error {
			return s.AddMeasurement(Measurement{Name: "m", Value: 1.5, Unit: "V"})
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 6, buf.Len())
}

func TestRun_SchemaValidationNestedValidatorValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"flat", []any{1, 2}},
		{"two levels", []any{[]any{1}, 2}},
		{"three levels", []any{[]any{[]any{1}}}},
		{"mixed", []any{"a", []any{true, []any{1.5, "b"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, buf := newTestRun(t, WithSchemaValidation())
			step := run.AddStep("s")
			require.NoError(t, step.AddMeasurement(Measurement{
				Name:       "m",
				Value:      1,
				Validators: []Validator{{Type: ValidatorInSet, Value: tt.value}},
			}))

			report, err := schema.MustDefault().ValidateStream(strings.NewReader(strings.Join(buf.Lines(), "\n")))
			require.NoError(t, err)
			assert.True(t, report.OK(), "%v", report.Errors)
		})
	}
}

func TestConfigOutput_CapturedAtConstruction(t *testing.T) {
	prev := DefaultWriter()
	t.Cleanup(func() { ConfigOutput(prev) })

	first := NewBufferWriter()
	ConfigOutput(first)
	run := NewRun("test", "1.0")

	second := NewBufferWriter()
	ConfigOutput(second)
	require.NoError(t, run.AddLog(SeverityInfo, "m"))

	assert.Equal(t, 2, first.Len())
	assert.Zero(t, second.Len())
	assert.Same(t, second, DefaultWriter())
}
