package artifact

import (
	"time"
)

// Schema version emitted in the stream preamble.
const (
	SchemaMajor = 2
	SchemaMinor = 0
)

// Union sites. Each is a sealed interface; the marker methods restrict
// which variants may appear where.

// RootImpl is the payload of a Root envelope.
type RootImpl interface {
	Tagged
	rootArtifact()
}

// RunArtifactImpl is the payload of a RunArtifact.
type RunArtifactImpl interface {
	Tagged
	runArtifact()
}

// StepArtifactImpl is the payload of a StepArtifact.
type StepArtifactImpl interface {
	Tagged
	stepArtifact()
}

// MeasurementSeriesImpl is any of the three measurement series records.
type MeasurementSeriesImpl interface {
	StepArtifactImpl
	measurementSeries()
}

// Root is the envelope written as one output line.
type Root struct {
	Impl           RootImpl
	SequenceNumber uint64
	Timestamp      time.Time
}

var rootDescriptor = Descriptor[Root]{
	{Name: "Impl", Kind: Union, Get: func(r *Root) any { return r.Impl }},
	{Name: "SequenceNumber", Wire: "sequenceNumber", Get: func(r *Root) any { return r.SequenceNumber }},
	{Name: "Timestamp", Wire: "timestamp", Format: formatTimestampField, Get: func(r *Root) any { return r.Timestamp }},
}

func (r *Root) recordName() string   { return "Root" }
func (r *Root) fields() []boundField { return rootDescriptor.bind(r) }

// SchemaVersion identifies the wire format version.
type SchemaVersion struct {
	Major int
	Minor int
}

// CurrentSchemaVersion returns the version this package emits.
func CurrentSchemaVersion() *SchemaVersion {
	return &SchemaVersion{Major: SchemaMajor, Minor: SchemaMinor}
}

var schemaVersionDescriptor = Descriptor[SchemaVersion]{
	{Name: "Major", Wire: "major", Get: func(s *SchemaVersion) any { return s.Major }},
	{Name: "Minor", Wire: "minor", Get: func(s *SchemaVersion) any { return s.Minor }},
}

func (s *SchemaVersion) recordName() string   { return "SchemaVersion" }
func (s *SchemaVersion) fields() []boundField { return schemaVersionDescriptor.bind(s) }
func (s *SchemaVersion) WireTag() string      { return "schemaVersion" }
func (s *SchemaVersion) rootArtifact()        {}

// RunArtifact wraps a run-scoped record.
type RunArtifact struct {
	Impl RunArtifactImpl
}

var runArtifactDescriptor = Descriptor[RunArtifact]{
	{Name: "Impl", Kind: Union, Get: func(r *RunArtifact) any { return r.Impl }},
}

func (r *RunArtifact) recordName() string   { return "RunArtifact" }
func (r *RunArtifact) fields() []boundField { return runArtifactDescriptor.bind(r) }
func (r *RunArtifact) WireTag() string      { return "testRunArtifact" }
func (r *RunArtifact) rootArtifact()        {}

// StepArtifact wraps a step-scoped record with the owning step id.
type StepArtifact struct {
	ID   string
	Impl StepArtifactImpl
}

var stepArtifactDescriptor = Descriptor[StepArtifact]{
	{Name: "Impl", Kind: Union, Get: func(s *StepArtifact) any { return s.Impl }},
	{Name: "ID", Wire: "testStepId", Get: func(s *StepArtifact) any { return s.ID }},
}

func (s *StepArtifact) recordName() string   { return "StepArtifact" }
func (s *StepArtifact) fields() []boundField { return stepArtifactDescriptor.bind(s) }
func (s *StepArtifact) WireTag() string      { return "testStepArtifact" }
func (s *StepArtifact) rootArtifact()        {}

// RunStart opens a test run.
type RunStart struct {
	Name        string
	Version     string
	CommandLine string
	Parameters  map[string]any
	DutInfo     *DutInfo
}

var runStartDescriptor = Descriptor[RunStart]{
	{Name: "Name", Wire: "name", Get: func(r *RunStart) any { return r.Name }},
	{Name: "Version", Wire: "version", Get: func(r *RunStart) any { return r.Version }},
	{Name: "CommandLine", Wire: "commandLine", Get: func(r *RunStart) any { return r.CommandLine }},
	{Name: "Parameters", Wire: "parameters", Get: func(r *RunStart) any {
		if r.Parameters == nil {
			return map[string]any{}
		}
		return r.Parameters
	}},
	{Name: "DutInfo", Wire: "dutInfo", Get: func(r *RunStart) any { return optional(r.DutInfo) }},
}

func (r *RunStart) recordName() string   { return "RunStart" }
func (r *RunStart) fields() []boundField { return runStartDescriptor.bind(r) }
func (r *RunStart) WireTag() string      { return "testRunStart" }
func (r *RunStart) runArtifact()         {}

// RunEnd closes a test run.
type RunEnd struct {
	Status TestStatus
	Result TestResult
}

var runEndDescriptor = Descriptor[RunEnd]{
	{Name: "Status", Wire: "status", Format: FormatEnum, Get: func(r *RunEnd) any { return r.Status }},
	{Name: "Result", Wire: "result", Format: FormatEnum, Get: func(r *RunEnd) any { return r.Result }},
}

func (r *RunEnd) recordName() string   { return "RunEnd" }
func (r *RunEnd) fields() []boundField { return runEndDescriptor.bind(r) }
func (r *RunEnd) WireTag() string      { return "testRunEnd" }
func (r *RunEnd) runArtifact()         {}

// StepStart opens a test step.
type StepStart struct {
	Name string
}

var stepStartDescriptor = Descriptor[StepStart]{
	{Name: "Name", Wire: "name", Get: func(s *StepStart) any { return s.Name }},
}

func (s *StepStart) recordName() string   { return "StepStart" }
func (s *StepStart) fields() []boundField { return stepStartDescriptor.bind(s) }
func (s *StepStart) WireTag() string      { return "testStepStart" }
func (s *StepStart) stepArtifact()        {}

// StepEnd closes a test step.
type StepEnd struct {
	Status TestStatus
}

var stepEndDescriptor = Descriptor[StepEnd]{
	{Name: "Status", Wire: "status", Format: FormatEnum, Get: func(s *StepEnd) any { return s.Status }},
}

func (s *StepEnd) recordName() string   { return "StepEnd" }
func (s *StepEnd) fields() []boundField { return stepEndDescriptor.bind(s) }
func (s *StepEnd) WireTag() string      { return "testStepEnd" }
func (s *StepEnd) stepArtifact()        {}

// Log is a free-text message. It may appear at run or step level.
type Log struct {
	Severity LogSeverity
	Message  string
}

var logDescriptor = Descriptor[Log]{
	{Name: "Severity", Wire: "severity", Format: FormatEnum, Get: func(l *Log) any { return l.Severity }},
	{Name: "Message", Wire: "message", Get: func(l *Log) any { return l.Message }},
}

func (l *Log) recordName() string   { return "Log" }
func (l *Log) fields() []boundField { return logDescriptor.bind(l) }
func (l *Log) WireTag() string      { return "log" }
func (l *Log) runArtifact()         {}
func (l *Log) stepArtifact()        {}

// Error reports a failure symptom. It may appear at run or step level.
type Error struct {
	Symptom         string
	Message         string
	SoftwareInfoIDs []string
}

var errorDescriptor = Descriptor[Error]{
	{Name: "Symptom", Wire: "symptom", Get: func(e *Error) any { return e.Symptom }},
	{Name: "Message", Wire: "message", Kind: Optional, Get: func(e *Error) any { return e.Message }},
	{Name: "SoftwareInfoIDs", Wire: "softwareInfoIds", Get: func(e *Error) any { return stringList(e.SoftwareInfoIDs) }},
}

func (e *Error) recordName() string   { return "Error" }
func (e *Error) fields() []boundField { return errorDescriptor.bind(e) }
func (e *Error) WireTag() string      { return "error" }
func (e *Error) runArtifact()         {}
func (e *Error) stepArtifact()        {}

// File references an output file produced by a step.
type File struct {
	DisplayName string
	URI         string
	IsSnapshot  bool
	Description string
	ContentType string
	Metadata    Metadata
}

var fileDescriptor = Descriptor[File]{
	{Name: "DisplayName", Wire: "displayName", Get: func(f *File) any { return f.DisplayName }},
	{Name: "URI", Wire: "uri", Get: func(f *File) any { return f.URI }},
	{Name: "IsSnapshot", Wire: "isSnapshot", Get: func(f *File) any { return f.IsSnapshot }},
	{Name: "Description", Wire: "description", Kind: Optional, Get: func(f *File) any { return f.Description }},
	{Name: "ContentType", Wire: "contentType", Kind: Optional, Get: func(f *File) any { return f.ContentType }},
	{Name: "Metadata", Wire: "metadata", Kind: Optional, Get: func(f *File) any { return f.Metadata }},
}

func (f *File) recordName() string   { return "File" }
func (f *File) fields() []boundField { return fileDescriptor.bind(f) }
func (f *File) WireTag() string      { return "file" }
func (f *File) stepArtifact()        {}

// Extension carries tool-specific content. Content is either an opaque
// string identifier or any JSON-shaped value.
type Extension struct {
	Name    string
	Content any
}

var extensionDescriptor = Descriptor[Extension]{
	{Name: "Name", Wire: "name", Get: func(e *Extension) any { return e.Name }},
	{Name: "Content", Wire: "content", Kind: Nullable, Format: formatPlain, Get: func(e *Extension) any { return e.Content }},
}

func (e *Extension) recordName() string   { return "Extension" }
func (e *Extension) fields() []boundField { return extensionDescriptor.bind(e) }
func (e *Extension) WireTag() string      { return "extension" }
func (e *Extension) stepArtifact()        {}

// Diagnosis is a verdict about the DUT.
type Diagnosis struct {
	Verdict        string
	Type           DiagnosisType
	Message        string
	HardwareInfoID string
	Subcomponent   *Subcomponent
}

var diagnosisDescriptor = Descriptor[Diagnosis]{
	{Name: "Verdict", Wire: "verdict", Get: func(d *Diagnosis) any { return d.Verdict }},
	{Name: "Type", Wire: "type", Format: FormatEnum, Get: func(d *Diagnosis) any { return d.Type }},
	{Name: "Message", Wire: "message", Kind: Optional, Get: func(d *Diagnosis) any { return d.Message }},
	{Name: "HardwareInfoID", Wire: "hardwareInfoId", Kind: Optional, Get: func(d *Diagnosis) any { return d.HardwareInfoID }},
	{Name: "Subcomponent", Wire: "subcomponent", Kind: Optional, Get: func(d *Diagnosis) any { return optional(d.Subcomponent) }},
}

func (d *Diagnosis) recordName() string   { return "Diagnosis" }
func (d *Diagnosis) fields() []boundField { return diagnosisDescriptor.bind(d) }
func (d *Diagnosis) WireTag() string      { return "diagnosis" }
func (d *Diagnosis) stepArtifact()        {}

// Validator is a named assertion recorded alongside a measurement.
type Validator struct {
	Name     string
	Type     ValidatorType
	Value    any
	Metadata Metadata
}

var validatorDescriptor = Descriptor[Validator]{
	{Name: "Name", Wire: "name", Kind: Optional, Get: func(v *Validator) any { return v.Name }},
	{Name: "Type", Wire: "type", Format: FormatEnum, Get: func(v *Validator) any { return v.Type }},
	{Name: "Value", Wire: "value", Format: formatValidatorValue, Get: func(v *Validator) any { return v.Value }},
	{Name: "Metadata", Wire: "metadata", Kind: Optional, Get: func(v *Validator) any { return v.Metadata }},
}

func (v *Validator) recordName() string   { return "Validator" }
func (v *Validator) fields() []boundField { return validatorDescriptor.bind(v) }

// Measurement is a single named value.
type Measurement struct {
	Name           string
	Value          any
	Unit           string
	Validators     []Validator
	HardwareInfoID string
	Subcomponent   *Subcomponent
	Metadata       Metadata
}

var measurementDescriptor = Descriptor[Measurement]{
	{Name: "Name", Wire: "name", Get: func(m *Measurement) any { return m.Name }},
	{Name: "Value", Wire: "value", Format: formatMeasurementValue, Get: func(m *Measurement) any { return m.Value }},
	{Name: "Unit", Wire: "unit", Kind: Optional, Get: func(m *Measurement) any { return m.Unit }},
	{Name: "Validators", Wire: "validators", Get: func(m *Measurement) any { return records(m.Validators) }},
	{Name: "HardwareInfoID", Wire: "hardwareInfoId", Kind: Optional, Get: func(m *Measurement) any { return m.HardwareInfoID }},
	{Name: "Subcomponent", Wire: "subcomponent", Kind: Optional, Get: func(m *Measurement) any { return optional(m.Subcomponent) }},
	{Name: "Metadata", Wire: "metadata", Kind: Optional, Get: func(m *Measurement) any { return m.Metadata }},
}

func (m *Measurement) recordName() string   { return "Measurement" }
func (m *Measurement) fields() []boundField { return measurementDescriptor.bind(m) }
func (m *Measurement) WireTag() string      { return "measurement" }
func (m *Measurement) stepArtifact()        {}

// MeasurementSeriesStart opens a measurement series.
type MeasurementSeriesStart struct {
	Name           string
	Unit           string
	SeriesID       string
	Validators     []Validator
	HardwareInfoID string
	Subcomponent   *Subcomponent
	Metadata       Metadata
}

var seriesStartDescriptor = Descriptor[MeasurementSeriesStart]{
	{Name: "Name", Wire: "name", Get: func(m *MeasurementSeriesStart) any { return m.Name }},
	{Name: "Unit", Wire: "unit", Kind: Optional, Get: func(m *MeasurementSeriesStart) any { return m.Unit }},
	{Name: "SeriesID", Wire: "measurementSeriesId", Get: func(m *MeasurementSeriesStart) any { return m.SeriesID }},
	{Name: "Validators", Wire: "validators", Get: func(m *MeasurementSeriesStart) any { return records(m.Validators) }},
	{Name: "HardwareInfoID", Wire: "hardwareInfoId", Kind: Optional, Get: func(m *MeasurementSeriesStart) any { return m.HardwareInfoID }},
	{Name: "Subcomponent", Wire: "subcomponent", Kind: Optional, Get: func(m *MeasurementSeriesStart) any { return optional(m.Subcomponent) }},
	{Name: "Metadata", Wire: "metadata", Kind: Optional, Get: func(m *MeasurementSeriesStart) any { return m.Metadata }},
}

func (m *MeasurementSeriesStart) recordName() string   { return "MeasurementSeriesStart" }
func (m *MeasurementSeriesStart) fields() []boundField { return seriesStartDescriptor.bind(m) }
func (m *MeasurementSeriesStart) WireTag() string      { return "measurementSeriesStart" }
func (m *MeasurementSeriesStart) stepArtifact()        {}
func (m *MeasurementSeriesStart) measurementSeries()   {}

// MeasurementSeriesElement is one value of a series.
type MeasurementSeriesElement struct {
	Index     int
	Value     any
	Timestamp time.Time
	SeriesID  string
	Metadata  Metadata
}

var seriesElementDescriptor = Descriptor[MeasurementSeriesElement]{
	{Name: "Index", Wire: "index", Get: func(m *MeasurementSeriesElement) any { return m.Index }},
	{Name: "Value", Wire: "value", Format: formatMeasurementValue, Get: func(m *MeasurementSeriesElement) any { return m.Value }},
	{Name: "Timestamp", Wire: "timestamp", Format: formatTimestampField, Get: func(m *MeasurementSeriesElement) any { return m.Timestamp }},
	{Name: "SeriesID", Wire: "measurementSeriesId", Get: func(m *MeasurementSeriesElement) any { return m.SeriesID }},
	{Name: "Metadata", Wire: "metadata", Kind: Optional, Get: func(m *MeasurementSeriesElement) any { return m.Metadata }},
}

func (m *MeasurementSeriesElement) recordName() string   { return "MeasurementSeriesElement" }
func (m *MeasurementSeriesElement) fields() []boundField { return seriesElementDescriptor.bind(m) }
func (m *MeasurementSeriesElement) WireTag() string      { return "measurementSeriesElement" }
func (m *MeasurementSeriesElement) stepArtifact()        {}
func (m *MeasurementSeriesElement) measurementSeries()   {}

// MeasurementSeriesEnd closes a series with the number of elements emitted.
type MeasurementSeriesEnd struct {
	SeriesID   string
	TotalCount int
}

var seriesEndDescriptor = Descriptor[MeasurementSeriesEnd]{
	{Name: "SeriesID", Wire: "measurementSeriesId", Get: func(m *MeasurementSeriesEnd) any { return m.SeriesID }},
	{Name: "TotalCount", Wire: "totalCount", Get: func(m *MeasurementSeriesEnd) any { return m.TotalCount }},
}

func (m *MeasurementSeriesEnd) recordName() string   { return "MeasurementSeriesEnd" }
func (m *MeasurementSeriesEnd) fields() []boundField { return seriesEndDescriptor.bind(m) }
func (m *MeasurementSeriesEnd) WireTag() string      { return "measurementSeriesEnd" }
func (m *MeasurementSeriesEnd) stepArtifact()        {}
func (m *MeasurementSeriesEnd) measurementSeries()   {}
