package summary_test

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

var _ = Describe("Build", func() {
	It("rejects missing buckets", func() {
		_, err := summary.Build(nil, summary.DefaultOptions())
		Expect(err).To(MatchError(summary.ErrNoBuckets))
	})

	It("builds an empty summary from empty buckets", func() {
		s := build()
		Expect(s.KPI.TotalVMs).To(BeZero())
		Expect(s.Clusters).To(BeEmpty())
		Expect(s.Ratios).To(Equal(summary.Ratios{}))
	})

	Context("a powered on VM", func() {
		It("contributes its vCPUs, memory and cluster membership", func() {
			s := build(vInfo(vmRow("vm-1", "4", "8192", "poweredOn", "ClusterA")))

			Expect(s.KPI.TotalVCPUs).To(Equal(4))
			Expect(s.KPI.VirtualMemoryGiB).To(Equal(8.0))
			Expect(s.KPI.ActiveVMs).To(Equal(1))

			cluster, ok := s.Cluster("ClusterA")
			Expect(ok).To(BeTrue())
			Expect(cluster.VMCount).To(Equal(1))
			Expect(cluster.ActiveVMs).To(Equal(1))
			Expect(cluster.MemoryGiB).To(Equal(8.0))
		})
	})

	Context("hosts", func() {
		It("derives cores from sockets and cores per socket", func() {
			s := build(vHost(hostRow("esx-1", "ClusterA", "2", "10", "131072")))

			Expect(s.KPI.PhysicalCores).To(Equal(20))
			Expect(s.Hosts[0].Cores).To(Equal(20))
			Expect(s.KPI.PhysicalMemoryGiB).To(Equal(128.0))
		})

		It("prefers an explicit core count", func() {
			row := hostRow("esx-1", "ClusterA", "2", "10", "0")
			row["# Cores"] = "24"
			s := build(vHost(row))

			Expect(s.KPI.PhysicalCores).To(Equal(24))
		})

		It("creates a rollup for a cluster that only has hosts", func() {
			s := build(vHost(hostRow("esx-1", "Empty", "2", "8", "65536")))

			cluster, ok := s.Cluster("Empty")
			Expect(ok).To(BeTrue())
			Expect(cluster.HostCount).To(Equal(1))
			Expect(cluster.VMCount).To(BeZero())
			Expect(cluster.PhysicalCores).To(Equal(16))
		})
	})

	It("leaves the vCPU to core ratio undefined for a cluster without cores", func() {
		s := build(vInfo(vmRow("vm-1", "8", "4096", "poweredOn", "NoHosts")))

		cluster, _ := s.Cluster("NoHosts")
		Expect(cluster.VCPUCoreRatio.Defined()).To(BeFalse())
		Expect(cluster.VCPUCoreRatio.String()).To(Equal("–"))

		encoded, err := json.Marshal(cluster)
		Expect(err).To(BeNil())
		Expect(string(encoded)).To(ContainSubstring(`"vcpuCoreRatio":null`))

		Expect(s.Ratios.CoreToVCPU).To(BeZero())
		Expect(s.Ratios.VMDensity).To(BeZero())
	})

	It("computes the global ratios", func() {
		s := build(
			vInfo(
				vmRow("vm-1", "20", "16384", "poweredOn", "A"),
				vmRow("vm-2", "20", "16384", "poweredOn", "A"),
				vmRow("vm-3", "10", "8192", "poweredOff", "A"),
			),
			vHost(
				hostRow("esx-1", "A", "2", "10", "32768"),
				hostRow("esx-2", "A", "1", "5", "32768"),
			),
		)

		Expect(s.Ratios.CoreToVCPU).To(Equal(2.0))
		Expect(s.Ratios.VRAMToPRAM).To(Equal(0.63))
		Expect(s.Ratios.VMDensity).To(Equal(1.0))

		cluster, _ := s.Cluster("A")
		value, defined := cluster.VCPUCoreRatio.Value()
		Expect(defined).To(BeTrue())
		Expect(value).To(Equal(2.0))
	})

	It("counts every VM in exactly one cluster", func() {
		s := build(vInfo(
			vmRow("vm-1", "1", "1024", "poweredOn", "A"),
			vmRow("vm-2", "1", "1024", "poweredOff", "B"),
			vmRow("vm-3", "1", "1024", "poweredOn", ""),
			vmRow("vm-4", "1", "1024", "suspended", "A"),
		))

		total := 0
		for _, c := range s.Clusters {
			total += c.VMCount
		}
		Expect(total).To(Equal(s.KPI.TotalVMs))

		_, ok := s.Cluster(rvtools.UnknownValue)
		Expect(ok).To(BeTrue())
	})

	It("tolerates malformed cells", func() {
		s := build(vInfo(rvtools.Row{"VM": "", "CPUs": "many", "Memory": "-5", "Powerstate": ""}))

		vm := s.VMs[0]
		Expect(vm.Name).To(Equal(rvtools.UnknownValue))
		Expect(vm.VCPUs).To(BeZero())
		Expect(vm.MemoryMiB).To(BeZero())
		Expect(vm.PowerState).To(Equal(summary.PowerOther))
		Expect(vm.Cluster).To(Equal(rvtools.UnknownValue))
	})

	It("does not count powered on templates as active", func() {
		template := vmRow("tpl", "2", "2048", "poweredOn", "A")
		template["Template"] = "True"
		s := build(vInfo(template, vmRow("vm-1", "2", "2048", "poweredOn", "A")))

		Expect(s.KPI.ActiveVMs).To(Equal(1))
		Expect(s.KPI.TemplateVMs).To(Equal(1))
	})

	It("sorts clusters by vCPUs then name", func() {
		s := build(vInfo(
			vmRow("vm-1", "4", "1024", "poweredOn", "Beta"),
			vmRow("vm-2", "4", "1024", "poweredOn", "Alpha"),
			vmRow("vm-3", "8", "1024", "poweredOn", "Gamma"),
		))

		names := []string{}
		for _, c := range s.Clusters {
			names = append(names, c.Name)
		}
		Expect(names).To(Equal([]string{"Gamma", "Alpha", "Beta"}))
	})

	It("keeps the ten largest VMs in ingestion order on ties", func() {
		rows := []rvtools.Row{}
		for i := 0; i < 12; i++ {
			cpus := "2"
			if i == 5 {
				cpus = "16"
			}
			rows = append(rows, vmRow(fmt.Sprintf("vm-%02d", i), cpus, "1024", "poweredOn", "A"))
		}
		s := build(vInfo(rows...))

		Expect(s.TopVMs).To(HaveLen(10))
		Expect(s.TopVMs[0].Name).To(Equal("vm-05"))
		Expect(s.TopVMs[1].Name).To(Equal("vm-00"))
		Expect(s.TopVMs[9].Name).To(Equal("vm-09"))
	})

	It("honours custom limits", func() {
		rows := []rvtools.Row{}
		for i := 0; i < 5; i++ {
			row := vmRow(fmt.Sprintf("vm-%d", i), "1", "1024", "poweredOn", "A")
			row["OS according to the VMware Tools"] = fmt.Sprintf("OS %d", i)
			rows = append(rows, row)
		}
		s, err := summary.Build(bucketsOf(vInfo(rows...)), summary.Options{TopVMs: 2, HistogramLimit: 3})
		Expect(err).To(BeNil())
		Expect(s.TopVMs).To(HaveLen(2))
		Expect(s.OperatingSystems).To(HaveLen(3))
	})

	Context("histograms", func() {
		It("orders by count then key and truncates operating systems", func() {
			rows := []rvtools.Row{}
			for i := 0; i < 10; i++ {
				row := vmRow(fmt.Sprintf("vm-%d", i), "1", "1024", "poweredOn", "A")
				row["OS according to the VMware Tools"] = fmt.Sprintf("OS %c", 'J'-i)
				rows = append(rows, row)
			}
			extra := vmRow("vm-x", "1", "1024", "poweredOn", "A")
			extra["OS according to the VMware Tools"] = "OS J"
			rows = append(rows, extra)

			s := build(vInfo(rows...))
			Expect(s.OperatingSystems).To(HaveLen(8))
			Expect(s.OperatingSystems[0]).To(Equal(summary.HistogramEntry{Key: "OS J", Count: 2}))
			Expect(s.OperatingSystems[1]).To(Equal(summary.HistogramEntry{Key: "OS A", Count: 1}))
			Expect(s.OperatingSystems[7].Key).To(Equal("OS G"))
		})

		It("never truncates power states", func() {
			rows := []rvtools.Row{}
			for i := 0; i < 10; i++ {
				rows = append(rows, vmRow(fmt.Sprintf("vm-%d", i), "1", "1024", fmt.Sprintf("state-%d", i), "A"))
			}
			s := build(vInfo(rows...))
			Expect(s.PowerStates).To(HaveLen(10))
		})

		It("shortens long operating system names for display", func() {
			long := strings.Repeat("x", 43)
			row := vmRow("vm-1", "1", "1024", "poweredOn", "A")
			row["OS according to the VMware Tools"] = long
			s := build(vInfo(row))

			expected := strings.Repeat("x", 40) + "…"
			Expect(s.VMs[0].OS).To(Equal(long))
			Expect(s.VMs[0].OSShort).To(Equal(expected))
			Expect(s.OperatingSystems[0].Key).To(Equal(expected))
		})

		It("falls back to the configuration file OS", func() {
			row := vmRow("vm-1", "1", "1024", "poweredOn", "A")
			row["OS according to the configuration file"] = "Ubuntu Linux (64-bit)"
			s := build(vInfo(row))
			Expect(s.VMs[0].OS).To(Equal("Ubuntu Linux (64-bit)"))
		})
	})

	It("sums datastore capacity", func() {
		s := build(rvtools.Table{Label: "vDatastore", Rows: []rvtools.Row{
			{"Name": "ds-1", "Capacity MiB": "1,048,576"},
			{"Name": "ds-2", "Capacity MiB": "524288"},
		}})
		Expect(s.KPI.StorageCapacityTiB).To(Equal(1.5))
	})

	It("produces the same summary twice for the same input", func() {
		tables := []rvtools.Table{
			vInfo(
				vmRow("vm-1", "4", "8192", "poweredOn", "A"),
				vmRow("vm-2", "2", "2048", "poweredOff", "B"),
			),
			vHost(hostRow("esx-1", "A", "2", "8", "65536")),
		}

		first := build(tables...)
		second := build(tables...)
		Expect(reflect.DeepEqual(*first, *second)).To(BeTrue())
		Expect(*first).To(Equal(*second))
	})

	It("does not depend on the order tables were accumulated in", func() {
		vm := func(name, cluster, power, os, hw string) rvtools.Row {
			row := vmRow(name, "2", "4096", power, cluster)
			row["OS according to the VMware Tools"] = os
			row["HW version"] = hw
			return row
		}
		first := vInfo(
			vm("vm-1", "A", "poweredOn", "Microsoft Windows Server 2019 (64-bit)", "vmx-19"),
			vm("vm-2", "B", "poweredOff", "CentOS 7 (64-bit)", "vmx-14"),
		)
		second := vInfo(
			vm("vm-3", "B", "poweredOn", "CentOS 7 (64-bit)", "vmx-14"),
			vm("vm-4", "A", "poweredOff", "Microsoft Windows Server 2019 (64-bit)", "vmx-19"),
		)
		hosts := vHost(
			hostRow("esx-2", "B", "2", "8", "65536"),
			hostRow("esx-1", "A", "2", "8", "65536"),
		)

		forward := build(first, second, hosts)
		backward := build(hosts, second, first)

		Expect(backward.KPI).To(Equal(forward.KPI))
		Expect(backward.Ratios).To(Equal(forward.Ratios))
		Expect(backward.Clusters).To(Equal(forward.Clusters))
		Expect(backward.PowerStates).To(Equal(forward.PowerStates))
		Expect(backward.OperatingSystems).To(Equal(forward.OperatingSystems))
		Expect(backward.HardwareVersions).To(Equal(forward.HardwareVersions))

		Expect(forward.Clusters).To(HaveLen(2))
		Expect(forward.Clusters[0].VCPUs).To(Equal(forward.Clusters[1].VCPUs))
		Expect(forward.Clusters[0].Name).To(Equal("A"))
		Expect(forward.HardwareVersions).To(Equal([]summary.HistogramEntry{{Key: "vmx-14", Count: 2}, {Key: "vmx-19", Count: 2}}))
		Expect(forward.PowerStates).To(HaveLen(2))
		Expect(forward.PowerStates[0].Count).To(Equal(forward.PowerStates[1].Count))
		Expect(forward.PowerStates[0].Key < forward.PowerStates[1].Key).To(BeTrue())
		Expect(forward.OperatingSystems[0].Key < forward.OperatingSystems[1].Key).To(BeTrue())
	})
})
