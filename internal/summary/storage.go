package summary

import (
	"sort"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
)

type storageAccumulator struct {
	group StorageGroup
	vms   map[string]struct{}
}

// storageBreakdown groups vDisk capacity by the cluster and host of the owning VM.
// Disks whose VM is absent from vInfo land in the Unknown group.
func storageBreakdown(disks []rvtools.Row, vms []VM) StorageBreakdown {
	owners := make(map[string]VM, len(vms))
	for _, vm := range vms {
		if _, exists := owners[vm.Name]; !exists {
			owners[vm.Name] = vm
		}
	}

	byCluster := make(map[string]*storageAccumulator)
	byHost := make(map[string]*storageAccumulator)
	var totalMiB float64

	for _, row := range disks {
		vmName := rvtools.SafeString(row.Get("VM"))
		capacity := rvtools.ParseNumber(row.Get("Capacity MiB"))
		totalMiB += capacity

		cluster, host := rvtools.UnknownValue, rvtools.UnknownValue
		if vm, ok := owners[vmName]; ok {
			cluster, host = vm.Cluster, vm.Host
		}
		addDisk(byCluster, cluster, vmName, capacity)
		addDisk(byHost, host, vmName, capacity)
	}

	return StorageBreakdown{
		Disks:       len(disks),
		CapacityGiB: MiBToGiB(totalMiB),
		ByCluster:   storageGroups(byCluster),
		ByHost:      storageGroups(byHost),
	}
}

func addDisk(groups map[string]*storageAccumulator, key, vmName string, capacity float64) {
	acc, ok := groups[key]
	if !ok {
		acc = &storageAccumulator{group: StorageGroup{Name: key}, vms: make(map[string]struct{})}
		groups[key] = acc
	}
	acc.group.Disks++
	acc.group.CapacityMiB += capacity
	acc.vms[vmName] = struct{}{}
}

func storageGroups(groups map[string]*storageAccumulator) []StorageGroup {
	result := make([]StorageGroup, 0, len(groups))
	for _, acc := range groups {
		g := acc.group
		g.VMs = len(acc.vms)
		g.CapacityGiB = MiBToGiB(g.CapacityMiB)
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CapacityMiB != result[j].CapacityMiB {
			return result[i].CapacityMiB > result[j].CapacityMiB
		}
		return result[i].Name < result[j].Name
	})
	return result
}
