package summary

import "strings"

// VMFilter selects VMs from a Summary. Empty fields match everything.
type VMFilter struct {
	// Query is matched case-insensitively against name, cluster, OS and host.
	Query string `json:"q" validate:"max=256"`
	// PowerState is compared case-insensitively with the raw power state.
	PowerState string `json:"power" validate:"max=64"`
}

// FilterVMs returns the VMs of s matching f, in ingestion order.
func FilterVMs(s *Summary, f VMFilter) []VM {
	if s == nil {
		return nil
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	power := strings.ToLower(strings.TrimSpace(f.PowerState))

	result := make([]VM, 0)
	for _, vm := range s.VMs {
		if power != "" && strings.ToLower(vm.RawPowerState) != power {
			continue
		}
		if query != "" && !vm.matches(query) {
			continue
		}
		result = append(result, vm)
	}
	return result
}

func (v VM) matches(query string) bool {
	for _, field := range []string{v.Name, v.Cluster, v.OS, v.Host} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
