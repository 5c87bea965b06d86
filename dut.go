package ocptv

import (
	"fmt"
	"sync"

	"github.com/roach88/ocptv/internal/artifact"
)

// Dut is the device under test. Populate it fully before Run.Start; the run
// start artifact captures its state at that moment.
type Dut struct {
	id string

	// Name is an optional human-readable name.
	Name string

	// Metadata is attached to the dutInfo record when set.
	Metadata Metadata

	mu            sync.Mutex
	platformInfos []*PlatformInfo
	softwareInfos []*SoftwareInfo
	hardwareInfos []*HardwareInfo
}

// NewDut creates a Dut with the given id.
func NewDut(id string) *Dut {
	return &Dut{id: id}
}

// ID returns the Dut id.
func (d *Dut) ID() string {
	return d.id
}

// AddPlatformInfo records a free-form platform tag.
func (d *Dut) AddPlatformInfo(info string) *PlatformInfo {
	p := &PlatformInfo{Info: info}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.platformInfos = append(d.platformInfos, p)
	return p
}

// AddSoftwareInfo records a copy of info and assigns it the id
// "{dutId}_{n}", n counting software infos only.
func (d *Dut) AddSoftwareInfo(info SoftwareInfo) *SoftwareInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := info
	s.id = fmt.Sprintf("%s_%d", d.id, len(d.softwareInfos))
	d.softwareInfos = append(d.softwareInfos, &s)
	return &s
}

// AddHardwareInfo records a copy of info and assigns it the id
// "{dutId}_{n}", n counting hardware infos only.
func (d *Dut) AddHardwareInfo(info HardwareInfo) *HardwareInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := info
	h.id = fmt.Sprintf("%s_%d", d.id, len(d.hardwareInfos))
	d.hardwareInfos = append(d.hardwareInfos, &h)
	return &h
}

func (d *Dut) toArtifact() *artifact.DutInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	info := &artifact.DutInfo{
		ID:            d.id,
		Name:          d.Name,
		Metadata:      d.Metadata,
		PlatformInfos: make([]artifact.PlatformInfo, len(d.platformInfos)),
		SoftwareInfos: make([]artifact.SoftwareInfo, len(d.softwareInfos)),
		HardwareInfos: make([]artifact.HardwareInfo, len(d.hardwareInfos)),
	}
	for i, p := range d.platformInfos {
		info.PlatformInfos[i] = artifact.PlatformInfo{Info: p.Info}
	}
	for i, s := range d.softwareInfos {
		info.SoftwareInfos[i] = s.toArtifact()
	}
	for i, h := range d.hardwareInfos {
		info.HardwareInfos[i] = h.toArtifact()
	}
	return info
}

// PlatformInfo is a platform tag such as "memory-optimized".
type PlatformInfo struct {
	Info string
}

// SoftwareInfo describes software running on the Dut. Obtain one from
// Dut.AddSoftwareInfo to get an id; Error artifacts reference it by that id.
type SoftwareInfo struct {
	id string

	Name           string
	Version        string
	Revision       string
	Type           SoftwareType
	ComputerSystem string
}

// ID returns the id assigned by Dut.AddSoftwareInfo.
func (s *SoftwareInfo) ID() string {
	return s.id
}

func (s *SoftwareInfo) toArtifact() artifact.SoftwareInfo {
	return artifact.SoftwareInfo{
		ID:             s.id,
		Name:           s.Name,
		Version:        s.Version,
		Revision:       s.Revision,
		Type:           s.Type,
		ComputerSystem: s.ComputerSystem,
	}
}

// HardwareInfo describes a hardware component of the Dut. Obtain one from
// Dut.AddHardwareInfo to get an id; measurements and diagnoses reference it
// by that id.
type HardwareInfo struct {
	id string

	Name                   string
	Version                string
	Revision               string
	Location               string
	SerialNumber           string
	PartNumber             string
	PartType               string
	Manufacturer           string
	ManufacturerPartNumber string
	OdataID                string
	ComputerSystem         string
	Manager                string
}

// ID returns the id assigned by Dut.AddHardwareInfo.
func (h *HardwareInfo) ID() string {
	return h.id
}

func (h *HardwareInfo) toArtifact() artifact.HardwareInfo {
	return artifact.HardwareInfo{
		ID:                     h.id,
		Name:                   h.Name,
		Version:                h.Version,
		Revision:               h.Revision,
		Location:               h.Location,
		SerialNumber:           h.SerialNumber,
		PartNumber:             h.PartNumber,
		PartType:               h.PartType,
		Manufacturer:           h.Manufacturer,
		ManufacturerPartNumber: h.ManufacturerPartNumber,
		OdataID:                h.OdataID,
		ComputerSystem:         h.ComputerSystem,
		Manager:                h.Manager,
	}
}

// hardwareInfoID returns the id of h, or "" for nil.
func hardwareInfoID(h *HardwareInfo) string {
	if h == nil {
		return ""
	}
	return h.id
}

func softwareInfoIDs(infos []*SoftwareInfo) []string {
	ids := make([]string, 0, len(infos))
	for _, s := range infos {
		if s != nil {
			ids = append(ids, s.id)
		}
	}
	return ids
}
