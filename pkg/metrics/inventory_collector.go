package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryStats is a point-in-time view of the currently served summary.
type InventoryStats struct {
	TotalVMs      int
	ActiveVMs     int
	Hosts         int
	Clusters      int
	VCPUs         int
	PhysicalCores int
	VMsByOS       map[string]int
	AssetsByState map[string]int
}

// StatsProvider returns the current stats, or false when nothing is loaded yet.
type StatsProvider func() (InventoryStats, bool)

type inventoryStatsCollector struct {
	provider        StatsProvider
	totalVm         *prometheus.Desc
	activeVm        *prometheus.Desc
	totalHosts      *prometheus.Desc
	totalClusters   *prometheus.Desc
	totalVcpus      *prometheus.Desc
	totalCores      *prometheus.Desc
	totalVmByOs     *prometheus.Desc
	assetsBySupport *prometheus.Desc
}

func NewInventoryStatsCollector(provider StatsProvider) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_inventory_%s", rvtoolsSummary, name)
	}

	return &inventoryStatsCollector{
		provider: provider,
		totalVm: prometheus.NewDesc(
			fqName("vms_total"),
			"Total number of vms.",
			nil,
			prometheus.Labels{},
		),
		activeVm: prometheus.NewDesc(
			fqName("active_vms_total"),
			"Number of powered on vms that are not templates.",
			nil,
			prometheus.Labels{},
		),
		totalHosts: prometheus.NewDesc(
			fqName("hosts_total"),
			"Total number of hosts.",
			nil,
			prometheus.Labels{},
		),
		totalClusters: prometheus.NewDesc(
			fqName("clusters_total"),
			"Total number of clusters.",
			nil,
			prometheus.Labels{},
		),
		totalVcpus: prometheus.NewDesc(
			fqName("vcpus_total"),
			"Total number of allocated vCPUs.",
			nil,
			prometheus.Labels{},
		),
		totalCores: prometheus.NewDesc(
			fqName("physical_cores_total"),
			"Total number of physical cores.",
			nil,
			prometheus.Labels{},
		),
		totalVmByOs: prometheus.NewDesc(
			fqName("vms_by_os_total"),
			"Total VMs by OS, top entries only",
			[]string{"os"},
			prometheus.Labels{},
		),
		assetsBySupport: prometheus.NewDesc(
			fqName("assets_by_support_status"),
			"VMs and hosts by lifecycle support status",
			[]string{"status"},
			prometheus.Labels{},
		),
	}
}

func (c *inventoryStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalVm
	ch <- c.activeVm
	ch <- c.totalHosts
	ch <- c.totalClusters
	ch <- c.totalVcpus
	ch <- c.totalCores
	ch <- c.totalVmByOs
	ch <- c.assetsBySupport
}

// Collect implements Collector.
func (c *inventoryStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, ok := c.provider()
	if !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalVm, prometheus.GaugeValue, float64(stats.TotalVMs))
	ch <- prometheus.MustNewConstMetric(c.activeVm, prometheus.GaugeValue, float64(stats.ActiveVMs))
	ch <- prometheus.MustNewConstMetric(c.totalHosts, prometheus.GaugeValue, float64(stats.Hosts))
	ch <- prometheus.MustNewConstMetric(c.totalClusters, prometheus.GaugeValue, float64(stats.Clusters))
	ch <- prometheus.MustNewConstMetric(c.totalVcpus, prometheus.GaugeValue, float64(stats.VCPUs))
	ch <- prometheus.MustNewConstMetric(c.totalCores, prometheus.GaugeValue, float64(stats.PhysicalCores))

	for osType, total := range stats.VMsByOS {
		ch <- prometheus.MustNewConstMetric(c.totalVmByOs, prometheus.GaugeValue, float64(total), osType)
	}

	for status, total := range stats.AssetsByState {
		ch <- prometheus.MustNewConstMetric(c.assetsBySupport, prometheus.GaugeValue, float64(total), status)
	}
}
