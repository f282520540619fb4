package summary

type PowerState string

const (
	PoweredOn  PowerState = "poweredOn"
	PoweredOff PowerState = "poweredOff"
	PowerOther PowerState = "other"
)

// VM is derived from one vInfo row.
type VM struct {
	Name            string     `json:"name"`
	PowerState      PowerState `json:"powerState"`
	RawPowerState   string     `json:"rawPowerState"`
	Template        bool       `json:"template"`
	Active          bool       `json:"active"`
	VCPUs           int        `json:"vcpus"`
	MemoryMiB       float64    `json:"memoryMib"`
	ProvisionedMiB  float64    `json:"provisionedMib"`
	Cluster         string     `json:"cluster"`
	Host            string     `json:"host"`
	HardwareVersion string     `json:"hardwareVersion"`
	OS              string     `json:"os"`
	OSShort         string     `json:"osShort"`
}

func (v VM) MemoryGiB() float64 {
	return MiBToGiB(v.MemoryMiB)
}

func (v VM) ProvisionedGiB() float64 {
	return MiBToGiB(v.ProvisionedMiB)
}

// Host is derived from one vHost row.
type Host struct {
	Name      string  `json:"name"`
	Cluster   string  `json:"cluster"`
	Sockets   int     `json:"sockets"`
	Cores     int     `json:"cores"`
	MemoryMiB float64 `json:"memoryMib"`
	VCPUs     int     `json:"vcpus"`
	VMCount   int     `json:"vmCount"`
	Version   string  `json:"version"`
}

func (h Host) MemoryGiB() float64 {
	return MiBToGiB(h.MemoryMiB)
}

// ClusterRollup aggregates the VMs and hosts sharing a cluster name.
type ClusterRollup struct {
	Name          string  `json:"name"`
	VMCount       int     `json:"vmCount"`
	ActiveVMs     int     `json:"activeVms"`
	VCPUs         int     `json:"vcpus"`
	MemoryMiB     float64 `json:"memoryMib"`
	PhysicalCores int     `json:"physicalCores"`
	HostCount     int     `json:"hostCount"`
	HostMemoryMiB float64 `json:"hostMemoryMib"`

	MemoryGiB     float64 `json:"memoryGib"`
	VCPUCoreRatio Ratio   `json:"vcpuCoreRatio"`
}

type KPI struct {
	ActiveVMs             int     `json:"activeVms"`
	TotalVMs              int     `json:"totalVms"`
	TemplateVMs           int     `json:"templateVms"`
	Hosts                 int     `json:"hosts"`
	Clusters              int     `json:"clusters"`
	TotalVCPUs            int     `json:"totalVcpus"`
	PhysicalCores         int     `json:"physicalCores"`
	PhysicalMemoryGiB     float64 `json:"physicalMemoryGib"`
	VirtualMemoryGiB      float64 `json:"virtualMemoryGib"`
	StorageProvisionedTiB float64 `json:"storageProvisionedTib"`
	StorageCapacityTiB    float64 `json:"storageCapacityTib"`
}

// Ratios are zero when their denominator is zero.
type Ratios struct {
	CoreToVCPU float64 `json:"coreToVcpu"`
	VRAMToPRAM float64 `json:"vramToPram"`
	VMDensity  float64 `json:"vmDensity"`
}

type HistogramEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type StorageGroup struct {
	Name        string  `json:"name"`
	Disks       int     `json:"disks"`
	VMs         int     `json:"vms"`
	CapacityMiB float64 `json:"capacityMib"`
	CapacityGiB float64 `json:"capacityGib"`
}

type StorageBreakdown struct {
	Disks       int            `json:"disks"`
	CapacityGiB float64        `json:"capacityGib"`
	ByCluster   []StorageGroup `json:"byCluster"`
	ByHost      []StorageGroup `json:"byHost"`
}

// Summary is derived from its input buckets alone, so equal input builds equal values.
// It is never modified after Build returns.
type Summary struct {
	KPI              KPI              `json:"kpi"`
	Ratios           Ratios           `json:"ratios"`
	TopVMs           []VM             `json:"topVms"`
	Clusters         []ClusterRollup  `json:"clusters"`
	PowerStates      []HistogramEntry `json:"powerStates"`
	OperatingSystems []HistogramEntry `json:"operatingSystems"`
	HardwareVersions []HistogramEntry `json:"hardwareVersions"`
	Storage          StorageBreakdown `json:"storage"`
	VMs              []VM             `json:"vms"`
	Hosts            []Host           `json:"hosts"`
}

// Cluster returns the rollup with the given name.
func (s *Summary) Cluster(name string) (ClusterRollup, bool) {
	for _, c := range s.Clusters {
		if c.Name == name {
			return c, true
		}
	}
	return ClusterRollup{}, false
}
