// Package harness drives the ocptv API from declarative YAML scenarios and
// checks the emitted stream with assertions and golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario exercises"
//	run:
//	  name: mem-stress
//	  version: "1.0"
//	  command_line: "mem-stress --pattern=all"
//	  parameters: { pattern: all }
//	dut:
//	  id: dut0
//	  hardware_infos:
//	    - name: dimm0
//	      location: A1
//	  software_infos:
//	    - name: bios
//	      type: FIRMWARE
//	errors:                      # run-level, emitted before the run starts
//	  - symptom: discovery-warning
//	logs:
//	  - severity: INFO
//	    message: starting
//	steps:
//	  - name: read-speed
//	    status: COMPLETE           # default
//	    artifacts:
//	      - measurement: { name: speed, value: 3200, unit: MT/s, hardware: dimm0 }
//	      - series:
//	          name: temperature
//	          elements: [ { value: 40 }, { value: 41 } ]
//	      - diagnosis: { verdict: mem-ok, type: PASS }
//	outcome: { status: COMPLETE, result: PASS }
//	assertions:
//	  - type: artifact_contains
//	    kind: measurement
//	    fields: { name: speed }
//
// Hardware and software infos are referenced by name; the harness resolves
// them to the ids the Dut assigns.
//
// # Assertion Types
//
//   - artifact_contains: an artifact of the given kind whose body has the fields
//   - artifact_order: the kinds appear in this order, not necessarily adjacent
//   - artifact_count: an artifact kind appears exactly N times
//
// # Deterministic Output
//
// RunWithGolden executes with testutil.DeterministicClock so timestamps are
// reproducible, then compares the raw lines against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
