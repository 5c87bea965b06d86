// Package ocptv emits OCP Test & Validation diagnostic output: a stream of
// JSON lines describing one test run, its steps, measurements, diagnoses
// and logs.
//
// A Run owns one emitter. Steps and measurement series created from it share
// that emitter and may be used from different goroutines:
//
//	dut := ocptv.NewDut("dut0")
//	run := ocptv.NewRun("mlc", "1.0")
//	err := run.Scope(dut, func(r *ocptv.Run) error {
//		step := r.AddStep("read bandwidth")
//		return step.Scope(func(s *ocptv.Step) error {
//			return s.AddMeasurement(ocptv.Measurement{Name: "bw", Value: 12.5, Unit: "GB/s"})
//		})
//	})
//
// Output goes to the Writer given with WithWriter, or to the process default
// (standard output unless changed with ConfigOutput) captured when the Run is
// created.
package ocptv
