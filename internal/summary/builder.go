package summary

import (
	"errors"
	"sort"
	"strings"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"go.uber.org/zap"
)

const (
	DefaultTopVMs         = 10
	DefaultHistogramLimit = 8

	osDisplayLimit = 42
	osDisplayKeep  = 40
)

var ErrNoBuckets = errors.New("no accumulated tables to aggregate")

type Options struct {
	TopVMs         int
	HistogramLimit int
}

func DefaultOptions() Options {
	return Options{
		TopVMs:         DefaultTopVMs,
		HistogramLimit: DefaultHistogramLimit,
	}
}

func (o Options) withDefaults() Options {
	if o.TopVMs <= 0 {
		o.TopVMs = DefaultTopVMs
	}
	if o.HistogramLimit <= 0 {
		o.HistogramLimit = DefaultHistogramLimit
	}
	return o
}

type aggregator struct {
	vms   []VM
	hosts []Host

	clusters map[string]*ClusterRollup
	powers   map[string]int
	systems  map[string]int
	hardware map[string]int

	activeVMs      int
	templateVMs    int
	vcpus          int
	vmMemoryMiB    float64
	provisionedMiB float64

	cores         int
	hostMemoryMiB float64
	capacityMiB   float64

	storage StorageBreakdown
}

// Build folds the vInfo, vHost, vDatastore and vDisk buckets into a new Summary.
// Malformed cells never fail the build; only missing buckets do.
func Build(b *rvtools.Buckets, opts Options) (*Summary, error) {
	if b == nil {
		return nil, ErrNoBuckets
	}
	opts = opts.withDefaults()

	agg := &aggregator{
		clusters: make(map[string]*ClusterRollup),
		powers:   make(map[string]int),
		systems:  make(map[string]int),
		hardware: make(map[string]int),
	}

	for _, row := range b.VMs() {
		agg.addVM(row)
	}
	for _, row := range b.Hosts() {
		agg.addHost(row)
	}
	for _, row := range b.Datastores() {
		agg.capacityMiB += rvtools.ParseNumber(row.Get("Capacity MiB"))
	}
	agg.storage = storageBreakdown(b.Disks(), agg.vms)

	s := agg.summary(opts)
	zap.S().Named("summary").Infof("Built summary: %d VMs, %d hosts, %d clusters",
		s.KPI.TotalVMs, s.KPI.Hosts, s.KPI.Clusters)
	return s, nil
}

func (a *aggregator) cluster(name string) *ClusterRollup {
	c, ok := a.clusters[name]
	if !ok {
		c = &ClusterRollup{Name: name}
		a.clusters[name] = c
	}
	return c
}

func (a *aggregator) addVM(row rvtools.Row) {
	rawPower := rvtools.SafeString(row.Get("Powerstate"))
	os := rvtools.SafeString(row.Get("OS according to the VMware Tools", "OS according to the configuration file"))

	vm := VM{
		Name:            rvtools.SafeString(row.Get("VM")),
		PowerState:      parsePowerState(rawPower),
		RawPowerState:   rawPower,
		Template:        rvtools.ParseBooleanValue(row.Get("Template")),
		VCPUs:           rvtools.ParseCount(row.Get("CPUs")),
		MemoryMiB:       rvtools.ParseNumber(row.Get("Memory", "Memory MiB")),
		ProvisionedMiB:  rvtools.ParseNumber(row.Get("Provisioned MiB")),
		Cluster:         rvtools.SafeString(row.Get("Cluster")),
		Host:            rvtools.SafeString(row.Get("Host")),
		HardwareVersion: rvtools.SafeString(row.Get("HW version", "HW Version")),
		OS:              os,
		OSShort:         rvtools.Truncate(os, osDisplayLimit, osDisplayKeep),
	}
	vm.Active = vm.PowerState == PoweredOn && !vm.Template

	a.vms = append(a.vms, vm)
	a.vcpus += vm.VCPUs
	a.vmMemoryMiB += vm.MemoryMiB
	a.provisionedMiB += vm.ProvisionedMiB
	if vm.Active {
		a.activeVMs++
	}
	if vm.Template {
		a.templateVMs++
	}

	c := a.cluster(vm.Cluster)
	c.VMCount++
	c.VCPUs += vm.VCPUs
	c.MemoryMiB += vm.MemoryMiB
	if vm.Active {
		c.ActiveVMs++
	}

	a.powers[vm.RawPowerState]++
	a.systems[vm.OSShort]++
	a.hardware[vm.HardwareVersion]++
}

func (a *aggregator) addHost(row rvtools.Row) {
	sockets := rvtools.ParseCount(row.Get("# CPU", "#CPU"))
	cores := rvtools.ParseCount(row.Get("# Cores"))
	if cores == 0 {
		cores = sockets * rvtools.ParseCount(row.Get("Cores per CPU"))
	}

	host := Host{
		Name:      rvtools.SafeString(row.Get("Host")),
		Cluster:   rvtools.SafeString(row.Get("Cluster")),
		Sockets:   sockets,
		Cores:     cores,
		MemoryMiB: rvtools.ParseNumber(row.Get("# Memory")),
		VCPUs:     rvtools.ParseCount(row.Get("# vCPUs")),
		VMCount:   rvtools.ParseCount(row.Get("# VMs")),
		Version:   rvtools.SafeString(row.Get("ESX Version")),
	}

	a.hosts = append(a.hosts, host)
	a.cores += host.Cores
	a.hostMemoryMiB += host.MemoryMiB

	c := a.cluster(host.Cluster)
	c.PhysicalCores += host.Cores
	c.HostCount++
	c.HostMemoryMiB += host.MemoryMiB
}

func (a *aggregator) summary(opts Options) *Summary {
	clusters := make([]ClusterRollup, 0, len(a.clusters))
	for _, c := range a.clusters {
		rollup := *c
		rollup.MemoryGiB = MiBToGiB(rollup.MemoryMiB)
		rollup.VCPUCoreRatio = NewRatio(float64(rollup.VCPUs), float64(rollup.PhysicalCores), 2)
		clusters = append(clusters, rollup)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].VCPUs != clusters[j].VCPUs {
			return clusters[i].VCPUs > clusters[j].VCPUs
		}
		return clusters[i].Name < clusters[j].Name
	})

	top := make([]VM, len(a.vms))
	copy(top, a.vms)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].VCPUs > top[j].VCPUs
	})
	if len(top) > opts.TopVMs {
		top = top[:opts.TopVMs]
	}

	hosts := len(a.hosts)
	return &Summary{
		KPI: KPI{
			ActiveVMs:             a.activeVMs,
			TotalVMs:              len(a.vms),
			TemplateVMs:           a.templateVMs,
			Hosts:                 hosts,
			Clusters:              len(clusters),
			TotalVCPUs:            a.vcpus,
			PhysicalCores:         a.cores,
			PhysicalMemoryGiB:     MiBToGiB(a.hostMemoryMiB),
			VirtualMemoryGiB:      MiBToGiB(a.vmMemoryMiB),
			StorageProvisionedTiB: MiBToTiB(a.provisionedMiB),
			StorageCapacityTiB:    MiBToTiB(a.capacityMiB),
		},
		Ratios: Ratios{
			CoreToVCPU: safeDiv(float64(a.vcpus), float64(a.cores), 2),
			VRAMToPRAM: safeDiv(a.vmMemoryMiB, a.hostMemoryMiB, 2),
			VMDensity:  safeDiv(float64(a.activeVMs), float64(hosts), 1),
		},
		TopVMs:           top,
		Clusters:         clusters,
		PowerStates:      histogram(a.powers, 0),
		OperatingSystems: histogram(a.systems, opts.HistogramLimit),
		HardwareVersions: histogram(a.hardware, opts.HistogramLimit),
		Storage:          a.storage,
		VMs:              a.vms,
		Hosts:            a.hosts,
	}
}

func parsePowerState(raw string) PowerState {
	switch strings.ToLower(raw) {
	case "poweredon":
		return PoweredOn
	case "poweredoff":
		return PoweredOff
	default:
		return PowerOther
	}
}

// histogram sorts by descending count, then key. A limit of 0 keeps every entry.
func histogram(counts map[string]int, limit int) []HistogramEntry {
	entries := make([]HistogramEntry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, HistogramEntry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
