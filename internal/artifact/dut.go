package artifact

// Metadata is free-form key/value data attached to a record. It is emitted
// as a JSON object with its pairs unchanged.
type Metadata map[string]any

// DutInfo describes the device under test.
type DutInfo struct {
	ID            string
	Name          string
	PlatformInfos []PlatformInfo
	SoftwareInfos []SoftwareInfo
	HardwareInfos []HardwareInfo
	Metadata      Metadata
}

var dutInfoDescriptor = Descriptor[DutInfo]{
	{Name: "ID", Wire: "dutInfoId", Get: func(d *DutInfo) any { return d.ID }},
	{Name: "Name", Wire: "name", Kind: Optional, Get: func(d *DutInfo) any { return d.Name }},
	{Name: "PlatformInfos", Wire: "platformInfos", Get: func(d *DutInfo) any { return records(d.PlatformInfos) }},
	{Name: "SoftwareInfos", Wire: "softwareInfos", Get: func(d *DutInfo) any { return records(d.SoftwareInfos) }},
	{Name: "HardwareInfos", Wire: "hardwareInfos", Get: func(d *DutInfo) any { return records(d.HardwareInfos) }},
	{Name: "Metadata", Wire: "metadata", Kind: Optional, Get: func(d *DutInfo) any { return d.Metadata }},
}

func (d *DutInfo) recordName() string   { return "DutInfo" }
func (d *DutInfo) fields() []boundField { return dutInfoDescriptor.bind(d) }

// PlatformInfo is a free-form platform tag, e.g. "memory-optimized".
type PlatformInfo struct {
	Info string
}

var platformInfoDescriptor = Descriptor[PlatformInfo]{
	{Name: "Info", Wire: "info", Get: func(p *PlatformInfo) any { return p.Info }},
}

func (p *PlatformInfo) recordName() string   { return "PlatformInfo" }
func (p *PlatformInfo) fields() []boundField { return platformInfoDescriptor.bind(p) }

// SoftwareInfo describes one piece of software on the DUT.
type SoftwareInfo struct {
	ID             string
	Name           string
	Version        string
	Revision       string
	Type           SoftwareType
	ComputerSystem string
}

var softwareInfoDescriptor = Descriptor[SoftwareInfo]{
	{Name: "ID", Wire: "softwareInfoId", Get: func(s *SoftwareInfo) any { return s.ID }},
	{Name: "Name", Wire: "name", Get: func(s *SoftwareInfo) any { return s.Name }},
	{Name: "Version", Wire: "version", Kind: Optional, Get: func(s *SoftwareInfo) any { return s.Version }},
	{Name: "Revision", Wire: "revision", Kind: Optional, Get: func(s *SoftwareInfo) any { return s.Revision }},
	{Name: "Type", Wire: "softwareType", Kind: Optional, Format: FormatEnum, Get: func(s *SoftwareInfo) any { return s.Type }},
	{Name: "ComputerSystem", Wire: "computerSystem", Kind: Optional, Get: func(s *SoftwareInfo) any { return s.ComputerSystem }},
}

func (s *SoftwareInfo) recordName() string   { return "SoftwareInfo" }
func (s *SoftwareInfo) fields() []boundField { return softwareInfoDescriptor.bind(s) }

// HardwareInfo describes one hardware component of the DUT.
type HardwareInfo struct {
	ID                     string
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

var hardwareInfoDescriptor = Descriptor[HardwareInfo]{
	{Name: "ID", Wire: "hardwareInfoId", Get: func(h *HardwareInfo) any { return h.ID }},
	{Name: "Name", Wire: "name", Get: func(h *HardwareInfo) any { return h.Name }},
	{Name: "Version", Wire: "version", Kind: Optional, Get: func(h *HardwareInfo) any { return h.Version }},
	{Name: "Revision", Wire: "revision", Kind: Optional, Get: func(h *HardwareInfo) any { return h.Revision }},
	{Name: "Location", Wire: "location", Kind: Optional, Get: func(h *HardwareInfo) any { return h.Location }},
	{Name: "SerialNumber", Wire: "serialNumber", Kind: Optional, Get: func(h *HardwareInfo) any { return h.SerialNumber }},
	{Name: "PartNumber", Wire: "partNumber", Kind: Optional, Get: func(h *HardwareInfo) any { return h.PartNumber }},
	{Name: "PartType", Wire: "partType", Kind: Optional, Get: func(h *HardwareInfo) any { return h.PartType }},
	{Name: "Manufacturer", Wire: "manufacturer", Kind: Optional, Get: func(h *HardwareInfo) any { return h.Manufacturer }},
	{Name: "ManufacturerPartNumber", Wire: "manufacturerPartNumber", Kind: Optional, Get: func(h *HardwareInfo) any { return h.ManufacturerPartNumber }},
	{Name: "OdataID", Wire: "odataId", Kind: Optional, Get: func(h *HardwareInfo) any { return h.OdataID }},
	{Name: "ComputerSystem", Wire: "computerSystem", Kind: Optional, Get: func(h *HardwareInfo) any { return h.ComputerSystem }},
	{Name: "Manager", Wire: "manager", Kind: Optional, Get: func(h *HardwareInfo) any { return h.Manager }},
}

func (h *HardwareInfo) recordName() string   { return "HardwareInfo" }
func (h *HardwareInfo) fields() []boundField { return hardwareInfoDescriptor.bind(h) }

// Subcomponent narrows a measurement or diagnosis to part of a hardware
// component.
type Subcomponent struct {
	Type     SubcomponentType
	Name     string
	Location string
	Version  string
	Revision string
}

var subcomponentDescriptor = Descriptor[Subcomponent]{
	{Name: "Type", Wire: "type", Kind: Optional, Format: FormatEnum, Get: func(s *Subcomponent) any { return s.Type }},
	{Name: "Name", Wire: "name", Get: func(s *Subcomponent) any { return s.Name }},
	{Name: "Location", Wire: "location", Kind: Optional, Get: func(s *Subcomponent) any { return s.Location }},
	{Name: "Version", Wire: "version", Kind: Optional, Get: func(s *Subcomponent) any { return s.Version }},
	{Name: "Revision", Wire: "revision", Kind: Optional, Get: func(s *Subcomponent) any { return s.Revision }},
}

func (s *Subcomponent) recordName() string   { return "Subcomponent" }
func (s *Subcomponent) fields() []boundField { return subcomponentDescriptor.bind(s) }
