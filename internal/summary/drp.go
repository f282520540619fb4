package summary

import (
	"fmt"
	"math"
)

// Scenario caps the overcommit a cluster may reach while absorbing failed-over load.
type Scenario struct {
	ID        int     `json:"id"`
	VCPULimit float64 `json:"vcpuLimit"`
	VRAMLimit float64 `json:"vramLimit"`
}

var scenarios = []Scenario{
	{ID: 1, VCPULimit: 2.0, VRAMLimit: 1.0},
	{ID: 2, VCPULimit: 1.5, VRAMLimit: 0.8},
	{ID: 3, VCPULimit: 1.0, VRAMLimit: 0.6},
}

func Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

func ScenarioByID(id int) (Scenario, error) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown scenario %d", id)
}

type ClusterDRP struct {
	Cluster       string  `json:"cluster"`
	Hosts         int     `json:"hosts"`
	ActiveVMs     int     `json:"activeVms"`
	PhysicalCores int     `json:"physicalCores"`
	VCPUs         int     `json:"vcpus"`
	HostMemoryGiB float64 `json:"hostMemoryGib"`
	VMMemoryGiB   float64 `json:"vmMemoryGib"`

	VCPURatio float64 `json:"vcpuRatio"`
	VRAMRatio float64 `json:"vramRatio"`
	CanAbsorb bool    `json:"canAbsorb"`
	// Slots is how many average-sized active VMs the physical cores could host.
	Slots int `json:"slots"`

	MaxVCPUs         int     `json:"maxVcpus"`
	MaxVRAMGiB       float64 `json:"maxVramGib"`
	ActiveVMsAfter   int     `json:"activeVmsAfter"`
	VCPUsAfter       float64 `json:"vcpusAfter"`
	VMMemoryGiBAfter float64 `json:"vmMemoryGibAfter"`
}

type DRPResult struct {
	Scenario Scenario     `json:"scenario"`
	Clusters []ClusterDRP `json:"clusters"`
	// Absorbing counts clusters able to take the simulated load.
	Absorbing int `json:"absorbing"`
}

// SimulateDRP evaluates every cluster of s against the scenario limits.
func SimulateDRP(s *Summary, scenario Scenario) DRPResult {
	result := DRPResult{Scenario: scenario, Clusters: []ClusterDRP{}}
	if s == nil {
		return result
	}

	for _, c := range s.Clusters {
		hostMemGiB := MiBToGiB(c.HostMemoryMiB)
		vmMemGiB := MiBToGiB(c.MemoryMiB)

		row := ClusterDRP{
			Cluster:       c.Name,
			Hosts:         c.HostCount,
			ActiveVMs:     c.ActiveVMs,
			PhysicalCores: c.PhysicalCores,
			VCPUs:         c.VCPUs,
			HostMemoryGiB: hostMemGiB,
			VMMemoryGiB:   vmMemGiB,
			VCPURatio:     safeDiv(float64(c.VCPUs), float64(c.PhysicalCores), 2),
			VRAMRatio:     safeDiv(vmMemGiB, hostMemGiB, 2),

			MaxVCPUs:         int(math.Floor(float64(c.PhysicalCores) * scenario.VCPULimit)),
			MaxVRAMGiB:       round(hostMemGiB*scenario.VRAMLimit, 0),
			ActiveVMsAfter:   int(math.Round(float64(c.ActiveVMs) * 1.2)),
			VMMemoryGiBAfter: round(vmMemGiB*1.1, 0),
		}
		row.VCPUsAfter = math.Min(float64(row.MaxVCPUs), float64(c.VCPUs)*1.2)
		row.CanAbsorb = c.PhysicalCores > 0 && c.HostMemoryMiB > 0 &&
			row.VCPURatio <= scenario.VCPULimit && row.VRAMRatio <= scenario.VRAMLimit

		perVM := float64(c.VCPUs) / math.Max(float64(c.ActiveVMs), 1)
		if c.PhysicalCores > 0 && perVM > 0 {
			row.Slots = int(math.Floor(float64(c.PhysicalCores) / perVM))
		}

		if row.CanAbsorb {
			result.Absorbing++
		}
		result.Clusters = append(result.Clusters, row)
	}
	return result
}
