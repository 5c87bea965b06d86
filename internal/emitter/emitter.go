package emitter

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/ocptv/internal/artifact"
)

// Writer receives one encoded artifact per call, without a trailing newline.
// Implementations decide framing and durability.
type Writer interface {
	Write(line string) error
}

// Emitter is the per-run artifact emitter.
type Emitter struct {
	w      Writer
	seq    *Sequence
	now    func() time.Time
	check  func(line []byte) error
	logger zerolog.Logger

	// mu serializes numbering, timestamping and writing.
	mu      sync.Mutex
	started bool
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithClock sets the timestamp source. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) {
		e.now = now
	}
}

// WithLogger sets the logger. Default: zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithLineCheck runs check on every encoded line before its sequence number
// is taken. A rejected line is not written, consumes no number and its error
// is returned unchanged.
func WithLineCheck(check func(line []byte) error) Option {
	return func(e *Emitter) {
		e.check = check
	}
}

// New creates an Emitter writing to w.
func New(w Writer, opts ...Option) *Emitter {
	e := &Emitter{
		w:      w,
		seq:    NewSequence(),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit serializes impl, wraps it in a Root envelope and writes it.
//
// The first successful Emit is preceded by the schema version preamble.
// A SchemaError or a line check failure is returned before any sequence
// number is taken. A Writer failure is returned as *SinkError and keeps its
// number consumed.
func (e *Emitter) Emit(impl artifact.RootImpl) error {
	frozen, err := artifact.Freeze(impl)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		preamble, err := artifact.Freeze(artifact.CurrentSchemaVersion())
		if err != nil {
			return err
		}
		line, err := e.render(preamble, 0)
		if err != nil {
			return err
		}
		if err := e.write(line, preamble, 0); err != nil {
			return err
		}
		e.started = true
	}

	seq := e.seq.Current() + 1
	line, err := e.render(frozen, seq)
	if err != nil {
		return err
	}
	e.seq.Next()
	return e.write(line, frozen, seq)
}

// LastSequence returns the number of the most recent artifact.
func (e *Emitter) LastSequence() uint64 {
	return e.seq.Current()
}

// render encodes and checks one envelope. Must be called with mu held.
func (e *Emitter) render(frozen *artifact.Frozen, seq uint64) ([]byte, error) {
	obj, err := artifact.Serialize(&artifact.Root{
		Impl:           frozen,
		SequenceNumber: seq,
		Timestamp:      e.now(),
	})
	if err != nil {
		return nil, err
	}
	line, err := artifact.Encode(obj)
	if err != nil {
		return nil, err
	}
	if e.check != nil {
		if err := e.check(line); err != nil {
			e.logger.Error().
				Err(err).
				Uint64("seq", seq).
				Str("artifact", frozen.WireTag()).
				Msg("line check rejected artifact")
			return nil, err
		}
	}
	return line, nil
}

// write must be called with mu held.
func (e *Emitter) write(line []byte, frozen *artifact.Frozen, seq uint64) error {
	if err := e.w.Write(string(line)); err != nil {
		e.logger.Error().
			Err(err).
			Uint64("seq", seq).
			Str("artifact", frozen.WireTag()).
			Msg("writer rejected artifact")
		return &SinkError{Code: ErrCodeWriteFailed, Sequence: seq, Err: err}
	}

	e.logger.Debug().
		Uint64("seq", seq).
		Str("artifact", frozen.WireTag()).
		Msg("emitted artifact")
	return nil
}
