package ocptv

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/ocptv/internal/artifact"
	"github.com/roach88/ocptv/internal/emitter"
	"github.com/roach88/ocptv/internal/schema"
)

// Run is one test run. It owns the emitter shared by its steps and series.
//
// Start and End emit testRunStart and testRunEnd. Nothing prevents calling
// either twice; use Scope to get exactly one of each.
type Run struct {
	name        string
	version     string
	commandLine string
	parameters  map[string]any

	writer   Writer
	validate bool
	now      func() time.Time
	logger   zerolog.Logger
	emitter  *emitter.Emitter

	stepMu   sync.Mutex
	nextStep int
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithCommandLine sets the recorded command line.
// Default: the process arguments after the program name, joined by spaces.
func WithCommandLine(cmdline string) RunOption {
	return func(r *Run) {
		r.commandLine = cmdline
	}
}

// WithParameters sets the run parameters recorded in testRunStart.
func WithParameters(params map[string]any) RunOption {
	return func(r *Run) {
		r.parameters = params
	}
}

// WithWriter sets the output Writer. Default: DefaultWriter() at the time
// NewRun is called.
func WithWriter(w Writer) RunOption {
	return func(r *Run) {
		r.writer = w
	}
}

// WithClock sets the timestamp source for envelopes and series elements.
// Default: time.Now.
func WithClock(now func() time.Time) RunOption {
	return func(r *Run) {
		r.now = now
	}
}

// WithLogger sets the diagnostic logger. Default: zerolog.Nop().
func WithLogger(logger zerolog.Logger) RunOption {
	return func(r *Run) {
		r.logger = logger
	}
}

// WithSchemaValidation checks every line against the output schema before
// it is numbered. A violation is returned from the emitting call and takes
// no sequence number.
func WithSchemaValidation() RunOption {
	return func(r *Run) {
		r.validate = true
	}
}

// NewRun creates a Run. Nothing is emitted until the first artifact.
func NewRun(name, version string, opts ...RunOption) *Run {
	r := &Run{
		name:        name,
		version:     version,
		commandLine: strings.Join(os.Args[1:], " "),
		writer:      DefaultWriter(),
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	eopts := []emitter.Option{
		emitter.WithClock(r.now),
		emitter.WithLogger(r.logger.With().Str("run", r.name).Logger()),
	}
	if r.validate {
		eopts = append(eopts, emitter.WithLineCheck(schema.MustDefault().ValidateLine))
	}
	r.emitter = emitter.New(r.writer, eopts...)
	return r
}

func (r *Run) Name() string               { return r.name }
func (r *Run) Version() string            { return r.version }
func (r *Run) CommandLine() string        { return r.commandLine }
func (r *Run) Parameters() map[string]any { return r.parameters }

// Start emits testRunStart with the current state of dut.
func (r *Run) Start(dut *Dut) error {
	start := &artifact.RunStart{
		Name:        r.name,
		Version:     r.version,
		CommandLine: r.commandLine,
		Parameters:  r.parameters,
	}
	if dut != nil {
		start.DutInfo = dut.toArtifact()
	}
	return r.emit(start)
}

// End emits testRunEnd.
func (r *Run) End(status TestStatus, result TestResult) error {
	return r.emit(&artifact.RunEnd{Status: status, Result: result})
}

// AddStep allocates the next step id and returns the step. Nothing is
// emitted until the step is started.
func (r *Run) AddStep(name string) *Step {
	r.stepMu.Lock()
	id := strconv.Itoa(r.nextStep)
	r.nextStep++
	r.stepMu.Unlock()

	return &Step{run: r, id: id, name: name}
}

// AddLog emits a run-level log.
func (r *Run) AddLog(severity LogSeverity, message string) error {
	return r.emit(&artifact.Log{Severity: severity, Message: message})
}

// AddError emits a run-level error. It may be called before Start, e.g.
// when discovering the Dut fails.
func (r *Run) AddError(info ErrorInfo) error {
	return r.emit(info.toArtifact())
}

// Scope starts the run, calls fn and ends the run on every exit path.
//
// fn returning nil ends the run COMPLETE/PASS. A *RunError ends it with the
// carried status and result and is not returned. Any other error ends the
// run ERROR/NOT_APPLICABLE and is returned. A panic ends the run
// ERROR/NOT_APPLICABLE and is re-raised. If ending fails as well, both
// errors are returned joined.
func (r *Run) Scope(dut *Dut, fn func(*Run) error) error {
	if err := r.Start(dut); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if err := r.End(StatusError, ResultNotApplicable); err != nil {
				r.logger.Error().Err(err).Msg("ending run after panic")
			}
			panic(p)
		}
	}()

	err := fn(r)

	status, result := StatusComplete, ResultPass
	var runErr *RunError
	switch {
	case err == nil:
	case errors.As(err, &runErr):
		status, result = runErr.Status, runErr.Result
		err = nil
	default:
		status, result = StatusError, ResultNotApplicable
	}

	r.logger.Debug().
		Stringer("status", status).
		Stringer("result", result).
		Uint64("last_seq", r.emitter.LastSequence()).
		Msg("ending run scope")

	if endErr := r.End(status, result); endErr != nil {
		if err == nil {
			return endErr
		}
		return errors.Join(err, endErr)
	}
	return err
}

func (r *Run) emit(impl artifact.RunArtifactImpl) error {
	return r.emitter.Emit(&artifact.RunArtifact{Impl: impl})
}

// ErrorInfo describes an error artifact.
type ErrorInfo struct {
	Symptom string
	Message string

	// SoftwareInfos are referenced by id.
	SoftwareInfos []*SoftwareInfo
}

func (e ErrorInfo) toArtifact() *artifact.Error {
	return &artifact.Error{
		Symptom:         e.Symptom,
		Message:         e.Message,
		SoftwareInfoIDs: softwareInfoIDs(e.SoftwareInfos),
	}
}
