package lifecycle

import (
	"strings"

	"github.com/kubev2v/rvtools-summary/internal/summary"
)

type Family string

const (
	Windows     Family = "windows"
	Linux       Family = "linux"
	ESX         Family = "esx"
	OtherFamily Family = "other"
)

var linuxMarkers = []string{"linux", "ubuntu", "centos", "suse", "red hat", "debian"}

func FamilyOf(descriptor string) Family {
	d := strings.ToLower(descriptor)
	switch {
	case strings.Contains(d, "windows"):
		return Windows
	case strings.Contains(d, "esxi"), strings.Contains(d, "vmkernel"):
		return ESX
	}
	for _, marker := range linuxMarkers {
		if strings.Contains(d, marker) {
			return Linux
		}
	}
	return OtherFamily
}

type AssetKind string

const (
	VMAsset   AssetKind = "vm"
	HostAsset AssetKind = "host"
)

// Asset is anything carrying a platform descriptor: a VM's guest OS or a host's hypervisor version.
type Asset struct {
	Name       string    `json:"name"`
	Kind       AssetKind `json:"kind"`
	Cluster    string    `json:"cluster"`
	Descriptor string    `json:"descriptor"`
	Family     Family    `json:"family"`
}

// AssetsFromSummary lists every VM then every host of s.
func AssetsFromSummary(s *summary.Summary) []Asset {
	if s == nil {
		return nil
	}
	assets := make([]Asset, 0, len(s.VMs)+len(s.Hosts))
	for _, vm := range s.VMs {
		assets = append(assets, Asset{
			Name:       vm.Name,
			Kind:       VMAsset,
			Cluster:    vm.Cluster,
			Descriptor: vm.OS,
			Family:     FamilyOf(vm.OS),
		})
	}
	for _, h := range s.Hosts {
		assets = append(assets, Asset{
			Name:       h.Name,
			Kind:       HostAsset,
			Cluster:    h.Cluster,
			Descriptor: h.Version,
			Family:     ESX,
		})
	}
	return assets
}
