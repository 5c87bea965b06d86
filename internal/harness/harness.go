package harness

import (
	"fmt"

	"github.com/roach88/ocptv"
	"github.com/roach88/ocptv/internal/artifact"
)

// teeWriter forwards every line to a buffer and, when set, a second Writer.
type teeWriter struct {
	buf  *ocptv.BufferWriter
	next ocptv.Writer
}

func (t *teeWriter) Write(line string) error {
	if t.next != nil {
		if err := t.next.Write(line); err != nil {
			return err
		}
	}
	return t.buf.Write(line)
}

// Execute runs the scenario, writing every line to w (which may be nil) and
// returning the decoded stream. opts are applied after the scenario's own
// run options, so callers can override the clock or add schema validation.
//
// Execution flow:
//  1. Build the DUT and resolve named hardware and software infos
//  2. Emit pre-start run errors
//  3. Run the steps inside Run.Scope
//  4. Decode the stream and evaluate assertions
func Execute(s *Scenario, w ocptv.Writer, opts ...ocptv.RunOption) (*Result, error) {
	dut, refs, err := buildDut(&s.Dut)
	if err != nil {
		return nil, err
	}

	tee := &teeWriter{buf: ocptv.NewBufferWriter(), next: w}
	runOpts := []ocptv.RunOption{
		ocptv.WithCommandLine(s.Run.CommandLine),
		ocptv.WithParameters(s.Run.Parameters),
		ocptv.WithWriter(tee),
	}
	run := ocptv.NewRun(s.Run.Name, s.Run.Version, append(runOpts, opts...)...)

	for i, e := range s.Errors {
		if err := run.AddError(refs.errorInfo(&e)); err != nil {
			return nil, fmt.Errorf("run error %d: %w", i, err)
		}
	}

	outcome, err := parseOutcome(s.Outcome)
	if err != nil {
		return nil, err
	}

	err = run.Scope(dut, func(r *ocptv.Run) error {
		for i, l := range s.Logs {
			sev, err := artifact.ParseLogSeverity(l.Severity)
			if err != nil {
				return fmt.Errorf("logs[%d]: %w", i, err)
			}
			if err := r.AddLog(sev, l.Message); err != nil {
				return fmt.Errorf("logs[%d]: %w", i, err)
			}
		}

		for i := range s.Steps {
			if err := executeStep(r, &s.Steps[i], refs); err != nil {
				return fmt.Errorf("steps[%d] %q: %w", i, s.Steps[i].Name, err)
			}
		}

		if outcome != nil {
			return outcome
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("executing scenario %q: %w", s.Name, err)
	}

	result := NewResult()
	for _, line := range tee.buf.Lines() {
		if err := result.AddLine(line); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// parseOutcome returns the RunError that ends the run, or nil for
// COMPLETE/PASS.
func parseOutcome(o OutcomeSpec) (*ocptv.RunError, error) {
	status, result := ocptv.StatusComplete, ocptv.ResultPass
	var err error
	if o.Status != "" {
		if status, err = artifact.ParseTestStatus(o.Status); err != nil {
			return nil, err
		}
	}
	if o.Result != "" {
		if result, err = artifact.ParseTestResult(o.Result); err != nil {
			return nil, err
		}
	}
	if status == ocptv.StatusComplete && result == ocptv.ResultPass {
		return nil, nil
	}
	return &ocptv.RunError{Status: status, Result: result}, nil
}

// dutRefs resolves scenario names to registered infos.
type dutRefs struct {
	hardware map[string]*ocptv.HardwareInfo
	software map[string]*ocptv.SoftwareInfo
}

func (d *dutRefs) errorInfo(e *ErrorSpec) ocptv.ErrorInfo {
	info := ocptv.ErrorInfo{Symptom: e.Symptom, Message: e.Message}
	for _, name := range e.Software {
		info.SoftwareInfos = append(info.SoftwareInfos, d.software[name])
	}
	return info
}

func buildDut(ds *DutSpec) (*ocptv.Dut, *dutRefs, error) {
	dut := ocptv.NewDut(ds.ID)
	dut.Name = ds.Name
	if ds.Metadata != nil {
		dut.Metadata = ocptv.Metadata(ds.Metadata)
	}
	for _, p := range ds.PlatformInfos {
		dut.AddPlatformInfo(p)
	}

	refs := &dutRefs{
		hardware: make(map[string]*ocptv.HardwareInfo),
		software: make(map[string]*ocptv.SoftwareInfo),
	}
	for i, sw := range ds.SoftwareInfos {
		info := ocptv.SoftwareInfo{
			Name:           sw.Name,
			Version:        sw.Version,
			Revision:       sw.Revision,
			ComputerSystem: sw.ComputerSystem,
		}
		if sw.Type != "" {
			t, err := artifact.ParseSoftwareType(sw.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("dut.software_infos[%d]: %w", i, err)
			}
			info.Type = t
		}
		refs.software[sw.Name] = dut.AddSoftwareInfo(info)
	}
	for _, hw := range ds.HardwareInfos {
		refs.hardware[hw.Name] = dut.AddHardwareInfo(ocptv.HardwareInfo{
			Name:                   hw.Name,
			Version:                hw.Version,
			Revision:               hw.Revision,
			Location:               hw.Location,
			SerialNumber:           hw.SerialNumber,
			PartNumber:             hw.PartNumber,
			PartType:               hw.PartType,
			Manufacturer:           hw.Manufacturer,
			ManufacturerPartNumber: hw.ManufacturerPartNumber,
			OdataID:                hw.OdataID,
			ComputerSystem:         hw.ComputerSystem,
			Manager:                hw.Manager,
		})
	}
	return dut, refs, nil
}

func executeStep(r *ocptv.Run, ss *StepSpec, refs *dutRefs) error {
	status := ocptv.StatusComplete
	if ss.Status != "" {
		var err error
		if status, err = artifact.ParseTestStatus(ss.Status); err != nil {
			return err
		}
	}

	return r.AddStep(ss.Name).Scope(func(st *ocptv.Step) error {
		for i := range ss.Artifacts {
			if err := emitStepArtifact(st, &ss.Artifacts[i], refs); err != nil {
				return fmt.Errorf("artifacts[%d]: %w", i, err)
			}
		}
		if status != ocptv.StatusComplete {
			return &ocptv.StepError{Status: status}
		}
		return nil
	})
}

func emitStepArtifact(st *ocptv.Step, a *StepArtifactSpec, refs *dutRefs) error {
	switch {
	case a.Measurement != nil:
		m := a.Measurement
		validators, err := buildValidators(m.Validators)
		if err != nil {
			return err
		}
		sub, err := buildSubcomponent(m.Subcomponent)
		if err != nil {
			return err
		}
		return st.AddMeasurement(ocptv.Measurement{
			Name:         m.Name,
			Value:        measurementValue(m.Value),
			Unit:         m.Unit,
			Validators:   validators,
			HardwareInfo: refs.hardware[m.Hardware],
			Subcomponent: sub,
			Metadata:     metadata(m.Metadata),
		})

	case a.Series != nil:
		return emitSeries(st, a.Series, refs)

	case a.Diagnosis != nil:
		d := a.Diagnosis
		typ, err := artifact.ParseDiagnosisType(d.Type)
		if err != nil {
			return err
		}
		sub, err := buildSubcomponent(d.Subcomponent)
		if err != nil {
			return err
		}
		return st.AddDiagnosis(ocptv.Diagnosis{
			Verdict:      d.Verdict,
			Type:         typ,
			Message:      d.Message,
			HardwareInfo: refs.hardware[d.Hardware],
			Subcomponent: sub,
		})

	case a.Log != nil:
		sev, err := artifact.ParseLogSeverity(a.Log.Severity)
		if err != nil {
			return err
		}
		return st.AddLog(sev, a.Log.Message)

	case a.Error != nil:
		return st.AddError(refs.errorInfo(a.Error))

	case a.File != nil:
		f := a.File
		return st.AddFile(ocptv.File{
			DisplayName: f.DisplayName,
			URI:         f.URI,
			IsSnapshot:  f.IsSnapshot,
			Description: f.Description,
			ContentType: f.ContentType,
			Metadata:    metadata(f.Metadata),
		})

	case a.Extension != nil:
		return st.AddExtension(a.Extension.Name, a.Extension.Content)
	}
	return fmt.Errorf("empty artifact")
}

func emitSeries(st *ocptv.Step, s *SeriesSpec, refs *dutRefs) error {
	validators, err := buildValidators(s.Validators)
	if err != nil {
		return err
	}
	sub, err := buildSubcomponent(s.Subcomponent)
	if err != nil {
		return err
	}
	series, err := st.StartMeasurementSeries(ocptv.MeasurementSeriesInfo{
		Name:         s.Name,
		Unit:         s.Unit,
		Validators:   validators,
		HardwareInfo: refs.hardware[s.Hardware],
		Subcomponent: sub,
		Metadata:     metadata(s.Metadata),
	})
	if err != nil {
		return err
	}
	return series.Scope(func(ms *ocptv.MeasurementSeries) error {
		for i, el := range s.Elements {
			err := ms.AddMeasurement(ocptv.SeriesElement{
				Value:    measurementValue(el.Value),
				Metadata: metadata(el.Metadata),
			})
			if err != nil {
				return fmt.Errorf("elements[%d]: %w", i, err)
			}
		}
		return nil
	})
}

func buildValidators(vs []ValidatorSpec) ([]ocptv.Validator, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]ocptv.Validator, len(vs))
	for i, v := range vs {
		typ, err := artifact.ParseValidatorType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("validators[%d]: %w", i, err)
		}
		out[i] = ocptv.Validator{
			Name:     v.Name,
			Type:     typ,
			Value:    v.Value,
			Metadata: metadata(v.Metadata),
		}
	}
	return out, nil
}

func buildSubcomponent(sc *SubcomponentSpec) (*ocptv.Subcomponent, error) {
	if sc == nil {
		return nil, nil
	}
	sub := &ocptv.Subcomponent{
		Name:     sc.Name,
		Location: sc.Location,
		Version:  sc.Version,
		Revision: sc.Revision,
	}
	if sc.Type != "" {
		t, err := artifact.ParseSubcomponentType(sc.Type)
		if err != nil {
			return nil, fmt.Errorf("subcomponent: %w", err)
		}
		sub.Type = t
	}
	return sub, nil
}

// measurementValue turns a YAML list of strings into []string. Anything
// else is passed through for the serializer to accept or reject.
func measurementValue(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return v
		}
		out[i] = s
	}
	return out
}

func metadata(m map[string]any) ocptv.Metadata {
	if m == nil {
		return nil
	}
	return ocptv.Metadata(m)
}
