package ocptv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDut_IDDerivation(t *testing.T) {
	dut := NewDut("d0")

	a := dut.AddHardwareInfo(HardwareInfo{Name: "A"})
	b := dut.AddHardwareInfo(HardwareInfo{Name: "B"})
	bios := dut.AddSoftwareInfo(SoftwareInfo{Name: "bios", Type: SoftwareFirmware})
	c := dut.AddHardwareInfo(HardwareInfo{Name: "C"})
	kernel := dut.AddSoftwareInfo(SoftwareInfo{Name: "kernel"})

	assert.Equal(t, []string{"d0_0", "d0_1", "d0_2"}, []string{a.ID(), b.ID(), c.ID()})
	assert.Equal(t, []string{"d0_0", "d0_1"}, []string{bios.ID(), kernel.ID()})
}

func TestDut_AddCopiesInfo(t *testing.T) {
	dut := NewDut("d0")
	info := HardwareInfo{Name: "dimm0"}
	h := dut.AddHardwareInfo(info)

	info.Name = "changed"
	assert.Equal(t, "dimm0", h.Name)
	assert.Empty(t, info.ID())
}

func TestDut_InRunStart(t *testing.T) {
	dut := NewDut("d0")
	dut.Name = "host-a"
	dut.Metadata = Metadata{"rack": "r1"}
	dut.AddPlatformInfo("memory-optimized")
	dut.AddSoftwareInfo(SoftwareInfo{Name: "bios", Version: "1.2", Type: SoftwareFirmware})
	dut.AddHardwareInfo(HardwareInfo{Name: "dimm0", SerialNumber: "S1"})

	run, buf := newTestRun(t)
	require.NoError(t, run.Start(dut))

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"dutInfo":{"dutInfoId":"d0","name":"host-a",`+
		`"platformInfos":[{"info":"memory-optimized"}],`+
		`"softwareInfos":[{"softwareInfoId":"d0_0","name":"bios","version":"1.2","softwareType":"FIRMWARE"}],`+
		`"hardwareInfos":[{"hardwareInfoId":"d0_0","name":"dimm0","serialNumber":"S1"}],`+
		`"metadata":{"rack":"r1"}}`)
}

func TestErrorInfo_ReferencesSoftware(t *testing.T) {
	dut := NewDut("d0")
	dut.AddSoftwareInfo(SoftwareInfo{Name: "bios"})
	kernel := dut.AddSoftwareInfo(SoftwareInfo{Name: "kernel"})

	run, buf := newTestRun(t)
	step := run.AddStep("s")
	require.NoError(t, step.AddError(ErrorInfo{
		Symptom:       "oops",
		Message:       "panic in driver",
		SoftwareInfos: []*SoftwareInfo{kernel, nil},
	}))

	body := stepBody(t, buf.Lines()[1], "error")
	assert.Equal(t, map[string]any{
		"symptom":         "oops",
		"message":         "panic in driver",
		"softwareInfoIds": []any{"d0_1"},
	}, body)
}
