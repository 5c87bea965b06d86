package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ocptv/internal/artifact"
)

// Scenario describes one complete test run: the DUT, the steps and what
// each step reports.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	Run RunSpec `yaml:"run"`
	Dut DutSpec `yaml:"dut"`

	// Errors are reported at run level before the run starts, e.g. DUT
	// discovery problems.
	Errors []ErrorSpec `yaml:"errors,omitempty"`

	// Logs are reported at run level right after the run starts.
	Logs []LogSpec `yaml:"logs,omitempty"`

	// Steps run in order inside the run scope.
	Steps []StepSpec `yaml:"steps"`

	// Outcome is the terminal run status and result. Default COMPLETE/PASS.
	Outcome OutcomeSpec `yaml:"outcome,omitempty"`

	// Assertions are checked against the emitted stream.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RunSpec holds the run identity.
type RunSpec struct {
	Name        string         `yaml:"name"`
	Version     string         `yaml:"version"`
	CommandLine string         `yaml:"command_line,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty"`
}

// DutSpec describes the device under test.
type DutSpec struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name,omitempty"`
	Metadata      map[string]any `yaml:"metadata,omitempty"`
	PlatformInfos []string       `yaml:"platform_infos,omitempty"`
	SoftwareInfos []SoftwareSpec `yaml:"software_infos,omitempty"`
	HardwareInfos []HardwareSpec `yaml:"hardware_infos,omitempty"`
}

// SoftwareSpec describes one software info. Errors refer to it by Name.
type SoftwareSpec struct {
	Name           string `yaml:"name"`
	Version        string `yaml:"version,omitempty"`
	Revision       string `yaml:"revision,omitempty"`
	Type           string `yaml:"type,omitempty"`
	ComputerSystem string `yaml:"computer_system,omitempty"`
}

// HardwareSpec describes one hardware info. Measurements and diagnoses refer
// to it by Name.
type HardwareSpec struct {
	Name                   string `yaml:"name"`
	Version                string `yaml:"version,omitempty"`
	Revision               string `yaml:"revision,omitempty"`
	Location               string `yaml:"location,omitempty"`
	SerialNumber           string `yaml:"serial_number,omitempty"`
	PartNumber             string `yaml:"part_number,omitempty"`
	PartType               string `yaml:"part_type,omitempty"`
	Manufacturer           string `yaml:"manufacturer,omitempty"`
	ManufacturerPartNumber string `yaml:"manufacturer_part_number,omitempty"`
	OdataID                string `yaml:"odata_id,omitempty"`
	ComputerSystem         string `yaml:"computer_system,omitempty"`
	Manager                string `yaml:"manager,omitempty"`
}

// StepSpec describes one step.
type StepSpec struct {
	Name string `yaml:"name"`

	// Status is the terminal step status. Default COMPLETE.
	Status string `yaml:"status,omitempty"`

	// Artifacts are emitted in order. Each entry sets exactly one field.
	Artifacts []StepArtifactSpec `yaml:"artifacts,omitempty"`
}

// StepArtifactSpec is one step-level report.
type StepArtifactSpec struct {
	Measurement *MeasurementSpec `yaml:"measurement,omitempty"`
	Series      *SeriesSpec      `yaml:"series,omitempty"`
	Diagnosis   *DiagnosisSpec   `yaml:"diagnosis,omitempty"`
	Log         *LogSpec         `yaml:"log,omitempty"`
	Error       *ErrorSpec       `yaml:"error,omitempty"`
	File        *FileSpec        `yaml:"file,omitempty"`
	Extension   *ExtensionSpec   `yaml:"extension,omitempty"`
}

// kinds returns the names of the fields that are set.
func (a *StepArtifactSpec) kinds() []string {
	var set []string
	if a.Measurement != nil {
		set = append(set, "measurement")
	}
	if a.Series != nil {
		set = append(set, "series")
	}
	if a.Diagnosis != nil {
		set = append(set, "diagnosis")
	}
	if a.Log != nil {
		set = append(set, "log")
	}
	if a.Error != nil {
		set = append(set, "error")
	}
	if a.File != nil {
		set = append(set, "file")
	}
	if a.Extension != nil {
		set = append(set, "extension")
	}
	return set
}

type ValidatorSpec struct {
	Name     string         `yaml:"name,omitempty"`
	Type     string         `yaml:"type"`
	Value    any            `yaml:"value"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type SubcomponentSpec struct {
	Type     string `yaml:"type,omitempty"`
	Name     string `yaml:"name"`
	Location string `yaml:"location,omitempty"`
	Version  string `yaml:"version,omitempty"`
	Revision string `yaml:"revision,omitempty"`
}

type MeasurementSpec struct {
	Name         string            `yaml:"name"`
	Value        any               `yaml:"value"`
	Unit         string            `yaml:"unit,omitempty"`
	Validators   []ValidatorSpec   `yaml:"validators,omitempty"`
	Hardware     string            `yaml:"hardware,omitempty"`
	Subcomponent *SubcomponentSpec `yaml:"subcomponent,omitempty"`
	Metadata     map[string]any    `yaml:"metadata,omitempty"`
}

type SeriesSpec struct {
	Name         string            `yaml:"name"`
	Unit         string            `yaml:"unit,omitempty"`
	Validators   []ValidatorSpec   `yaml:"validators,omitempty"`
	Hardware     string            `yaml:"hardware,omitempty"`
	Subcomponent *SubcomponentSpec `yaml:"subcomponent,omitempty"`
	Metadata     map[string]any    `yaml:"metadata,omitempty"`
	Elements     []ElementSpec     `yaml:"elements"`
}

type ElementSpec struct {
	Value    any            `yaml:"value"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type DiagnosisSpec struct {
	Verdict      string            `yaml:"verdict"`
	Type         string            `yaml:"type"`
	Message      string            `yaml:"message,omitempty"`
	Hardware     string            `yaml:"hardware,omitempty"`
	Subcomponent *SubcomponentSpec `yaml:"subcomponent,omitempty"`
}

type LogSpec struct {
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
}

type ErrorSpec struct {
	Symptom  string   `yaml:"symptom"`
	Message  string   `yaml:"message,omitempty"`
	Software []string `yaml:"software,omitempty"`
}

type FileSpec struct {
	DisplayName string         `yaml:"display_name"`
	URI         string         `yaml:"uri"`
	IsSnapshot  bool           `yaml:"is_snapshot,omitempty"`
	Description string         `yaml:"description,omitempty"`
	ContentType string         `yaml:"content_type,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
}

type ExtensionSpec struct {
	Name    string `yaml:"name"`
	Content any    `yaml:"content"`
}

// OutcomeSpec is the terminal run status and result.
type OutcomeSpec struct {
	Status string `yaml:"status,omitempty"`
	Result string `yaml:"result,omitempty"`
}

// Assertion checks the emitted stream.
type Assertion struct {
	// Type specifies the assertion type:
	// - "artifact_contains": an artifact of Kind whose body has Fields
	// - "artifact_order": the Kinds appear in this order
	// - "artifact_count": Kind appears exactly Count times
	Type string `yaml:"type"`

	// Kind is the innermost variant key, e.g. "measurement" or "testRunEnd".
	Kind string `yaml:"kind,omitempty"`

	// Fields are matched against the artifact body (subset match).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Count is the expected number of occurrences (artifact_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected order (artifact_order).
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertArtifactContains = "artifact_contains"
	AssertArtifactOrder    = "artifact_order"
	AssertArtifactCount    = "artifact_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "artifact:" vs "artifacts:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields, enum names and references so
// that execution only fails on emission errors.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Run.Name == "" {
		return fmt.Errorf("run.name is required")
	}
	if s.Run.Version == "" {
		return fmt.Errorf("run.version is required")
	}
	if s.Dut.ID == "" {
		return fmt.Errorf("dut.id is required")
	}

	hardware := make(map[string]bool)
	for i, h := range s.Dut.HardwareInfos {
		if h.Name == "" {
			return fmt.Errorf("dut.hardware_infos[%d]: name is required", i)
		}
		if hardware[h.Name] {
			return fmt.Errorf("dut.hardware_infos[%d]: duplicate name %q", i, h.Name)
		}
		hardware[h.Name] = true
	}
	software := make(map[string]bool)
	for i, sw := range s.Dut.SoftwareInfos {
		if sw.Name == "" {
			return fmt.Errorf("dut.software_infos[%d]: name is required", i)
		}
		if software[sw.Name] {
			return fmt.Errorf("dut.software_infos[%d]: duplicate name %q", i, sw.Name)
		}
		software[sw.Name] = true
		if sw.Type != "" {
			if _, err := artifact.ParseSoftwareType(sw.Type); err != nil {
				return fmt.Errorf("dut.software_infos[%d]: %w", i, err)
			}
		}
	}

	for i, e := range s.Errors {
		if err := validateError(&e, software); err != nil {
			return fmt.Errorf("errors[%d]: %w", i, err)
		}
	}
	for i, l := range s.Logs {
		if err := validateLog(&l); err != nil {
			return fmt.Errorf("logs[%d]: %w", i, err)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i := range s.Steps {
		if err := validateStep(&s.Steps[i], hardware, software); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	if s.Outcome.Status != "" {
		if _, err := artifact.ParseTestStatus(s.Outcome.Status); err != nil {
			return fmt.Errorf("outcome: %w", err)
		}
	}
	if s.Outcome.Result != "" {
		if _, err := artifact.ParseTestResult(s.Outcome.Result); err != nil {
			return fmt.Errorf("outcome: %w", err)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step *StepSpec, hardware, software map[string]bool) error {
	if step.Name == "" {
		return fmt.Errorf("name is required")
	}
	if step.Status != "" {
		if _, err := artifact.ParseTestStatus(step.Status); err != nil {
			return err
		}
	}

	for i := range step.Artifacts {
		a := &step.Artifacts[i]
		kinds := a.kinds()
		if len(kinds) != 1 {
			return fmt.Errorf("artifacts[%d]: exactly one artifact kind must be set, got %v", i, kinds)
		}

		var err error
		switch {
		case a.Measurement != nil:
			err = validateMeasurement(a.Measurement.Name, a.Measurement.Value, a.Measurement.Validators,
				a.Measurement.Hardware, a.Measurement.Subcomponent, hardware)
		case a.Series != nil:
			err = validateMeasurement(a.Series.Name, "", a.Series.Validators,
				a.Series.Hardware, a.Series.Subcomponent, hardware)
			for j, el := range a.Series.Elements {
				if el.Value == nil && err == nil {
					err = fmt.Errorf("elements[%d]: value is required", j)
				}
			}
		case a.Diagnosis != nil:
			err = validateDiagnosis(a.Diagnosis, hardware)
		case a.Log != nil:
			err = validateLog(a.Log)
		case a.Error != nil:
			err = validateError(a.Error, software)
		case a.File != nil:
			if a.File.DisplayName == "" || a.File.URI == "" {
				err = fmt.Errorf("display_name and uri are required")
			}
		case a.Extension != nil:
			if a.Extension.Name == "" {
				err = fmt.Errorf("name is required")
			}
		}
		if err != nil {
			return fmt.Errorf("artifacts[%d].%s: %w", i, kinds[0], err)
		}
	}
	return nil
}

func validateMeasurement(name string, value any, validators []ValidatorSpec, hw string, sub *SubcomponentSpec, hardware map[string]bool) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if value == nil {
		return fmt.Errorf("value is required")
	}
	for i, v := range validators {
		if _, err := artifact.ParseValidatorType(v.Type); err != nil {
			return fmt.Errorf("validators[%d]: %w", i, err)
		}
		if v.Value == nil {
			return fmt.Errorf("validators[%d]: value is required", i)
		}
	}
	if hw != "" && !hardware[hw] {
		return fmt.Errorf("unknown hardware %q", hw)
	}
	return validateSubcomponent(sub)
}

func validateDiagnosis(d *DiagnosisSpec, hardware map[string]bool) error {
	if d.Verdict == "" {
		return fmt.Errorf("verdict is required")
	}
	if _, err := artifact.ParseDiagnosisType(d.Type); err != nil {
		return err
	}
	if d.Hardware != "" && !hardware[d.Hardware] {
		return fmt.Errorf("unknown hardware %q", d.Hardware)
	}
	return validateSubcomponent(d.Subcomponent)
}

func validateSubcomponent(sub *SubcomponentSpec) error {
	if sub == nil {
		return nil
	}
	if sub.Name == "" {
		return fmt.Errorf("subcomponent.name is required")
	}
	if sub.Type != "" {
		if _, err := artifact.ParseSubcomponentType(sub.Type); err != nil {
			return fmt.Errorf("subcomponent: %w", err)
		}
	}
	return nil
}

func validateLog(l *LogSpec) error {
	if _, err := artifact.ParseLogSeverity(l.Severity); err != nil {
		return err
	}
	return nil
}

func validateError(e *ErrorSpec, software map[string]bool) error {
	if e.Symptom == "" {
		return fmt.Errorf("symptom is required")
	}
	for _, name := range e.Software {
		if !software[name] {
			return fmt.Errorf("unknown software %q", name)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertArtifactContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for artifact_contains", index)
		}
	case AssertArtifactOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for artifact_order", index)
		}
	case AssertArtifactCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for artifact_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
