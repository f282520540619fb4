package summary

import "math"

// DensityBucket counts hosts by declared VM count, and the VMs placed on them.
type DensityBucket struct {
	Label       string `json:"label"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Hosts       int    `json:"hosts"`
	ActiveVMs   int    `json:"activeVms"`
	InactiveVMs int    `json:"inactiveVms"`
}

var densityBuckets = []DensityBucket{
	{Label: "Very Large", Min: 41, Max: math.MaxInt},
	{Label: "Large", Min: 21, Max: 40},
	{Label: "Medium", Min: 11, Max: 20},
	{Label: "Small", Min: 0, Max: 10},
}

// HostDensity places every host of s into a density bucket using its "# VMs" value.
func HostDensity(s *Summary) []DensityBucket {
	buckets := make([]DensityBucket, len(densityBuckets))
	copy(buckets, densityBuckets)
	if s == nil {
		return buckets
	}

	hostBucket := make(map[string]int, len(s.Hosts))
	for _, h := range s.Hosts {
		for i := range buckets {
			if h.VMCount >= buckets[i].Min && h.VMCount <= buckets[i].Max {
				buckets[i].Hosts++
				hostBucket[h.Name] = i
				break
			}
		}
	}

	for _, vm := range s.VMs {
		i, ok := hostBucket[vm.Host]
		if !ok {
			continue
		}
		if vm.Active {
			buckets[i].ActiveVMs++
		} else {
			buckets[i].InactiveVMs++
		}
	}
	return buckets
}
