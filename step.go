package ocptv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/ocptv/internal/artifact"
)

// Step is one test step of a Run. Its methods may be called from several
// goroutines.
type Step struct {
	run  *Run
	id   string
	name string

	seriesMu   sync.Mutex
	nextSeries int
}

// ID returns the step id, unique within the run.
func (s *Step) ID() string { return s.id }

// Name returns the step name.
func (s *Step) Name() string { return s.name }

// Start emits testStepStart.
func (s *Step) Start() error {
	return s.emit(&artifact.StepStart{Name: s.name})
}

// End emits testStepEnd.
func (s *Step) End(status TestStatus) error {
	return s.emit(&artifact.StepEnd{Status: status})
}

// Measurement describes a single measurement.
type Measurement struct {
	Name string

	// Value is a float, integer, bool, string or []string.
	Value any

	Unit         string
	Validators   []Validator
	HardwareInfo *HardwareInfo
	Subcomponent *Subcomponent
	Metadata     Metadata
}

// AddMeasurement emits a measurement.
func (s *Step) AddMeasurement(m Measurement) error {
	return s.emit(&artifact.Measurement{
		Name:           m.Name,
		Value:          m.Value,
		Unit:           m.Unit,
		Validators:     m.Validators,
		HardwareInfoID: hardwareInfoID(m.HardwareInfo),
		Subcomponent:   m.Subcomponent,
		Metadata:       m.Metadata,
	})
}

// MeasurementSeriesInfo describes a measurement series.
type MeasurementSeriesInfo struct {
	Name         string
	Unit         string
	Validators   []Validator
	HardwareInfo *HardwareInfo
	Subcomponent *Subcomponent
	Metadata     Metadata
}

// StartMeasurementSeries allocates the next series id ("{stepId}_{n}") and
// emits measurementSeriesStart. The id is consumed even if emitting fails.
func (s *Step) StartMeasurementSeries(info MeasurementSeriesInfo) (*MeasurementSeries, error) {
	s.seriesMu.Lock()
	id := fmt.Sprintf("%s_%d", s.id, s.nextSeries)
	s.nextSeries++
	s.seriesMu.Unlock()

	err := s.emit(&artifact.MeasurementSeriesStart{
		Name:           info.Name,
		Unit:           info.Unit,
		SeriesID:       id,
		Validators:     info.Validators,
		HardwareInfoID: hardwareInfoID(info.HardwareInfo),
		Subcomponent:   info.Subcomponent,
		Metadata:       info.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &MeasurementSeries{step: s, id: id}, nil
}

// Diagnosis describes a diagnosis.
type Diagnosis struct {
	Verdict      string
	Type         DiagnosisType
	Message      string
	HardwareInfo *HardwareInfo
	Subcomponent *Subcomponent
}

// AddDiagnosis emits a diagnosis.
func (s *Step) AddDiagnosis(d Diagnosis) error {
	return s.emit(&artifact.Diagnosis{
		Verdict:        d.Verdict,
		Type:           d.Type,
		Message:        d.Message,
		HardwareInfoID: hardwareInfoID(d.HardwareInfo),
		Subcomponent:   d.Subcomponent,
	})
}

// File describes an output file produced by the step.
type File struct {
	DisplayName string
	URI         string
	IsSnapshot  bool
	Description string
	ContentType string
	Metadata    Metadata
}

// AddFile emits a file reference.
func (s *Step) AddFile(f File) error {
	return s.emit(&artifact.File{
		DisplayName: f.DisplayName,
		URI:         f.URI,
		IsSnapshot:  f.IsSnapshot,
		Description: f.Description,
		ContentType: f.ContentType,
		Metadata:    f.Metadata,
	})
}

// AddExtension emits tool-specific content: a string identifier or any
// JSON-shaped value (maps, slices, scalars).
func (s *Step) AddExtension(name string, content any) error {
	return s.emit(&artifact.Extension{Name: name, Content: content})
}

// AddLog emits a step-level log.
func (s *Step) AddLog(severity LogSeverity, message string) error {
	return s.emit(&artifact.Log{Severity: severity, Message: message})
}

// AddError emits a step-level error.
func (s *Step) AddError(info ErrorInfo) error {
	return s.emit(info.toArtifact())
}

// Scope starts the step, calls fn and ends the step on every exit path.
//
// nil ends COMPLETE. A *StepError ends with its status and is not returned.
// Any other error ends ERROR and is returned; a panic ends ERROR and is
// re-raised.
func (s *Step) Scope(fn func(*Step) error) error {
	if err := s.Start(); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if err := s.End(StatusError); err != nil {
				s.run.logger.Error().Err(err).Str("step", s.id).Msg("ending step after panic")
			}
			panic(p)
		}
	}()

	err := fn(s)

	status := StatusComplete
	var stepErr *StepError
	switch {
	case err == nil:
	case errors.As(err, &stepErr):
		status = stepErr.Status
		err = nil
	default:
		status = StatusError
	}

	if endErr := s.End(status); endErr != nil {
		if err == nil {
			return endErr
		}
		return errors.Join(err, endErr)
	}
	return err
}

func (s *Step) emit(impl artifact.StepArtifactImpl) error {
	return s.run.emitter.Emit(&artifact.StepArtifact{ID: s.id, Impl: impl})
}
