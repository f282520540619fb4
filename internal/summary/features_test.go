package summary_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

var _ = Describe("FilterVMs", func() {
	var s *summary.Summary

	BeforeEach(func() {
		web := vmRow("web-01", "2", "2048", "poweredOn", "Prod")
		web["Host"] = "esx-a"
		web["OS according to the VMware Tools"] = "Ubuntu Linux (64-bit)"
		db := vmRow("db-01", "8", "16384", "poweredOff", "Prod")
		db["OS according to the VMware Tools"] = "Microsoft Windows Server 2019 (64-bit)"
		test := vmRow("test-01", "1", "1024", "poweredOn", "Lab")
		s = build(vInfo(web, db, test))
	})

	It("returns every VM for an empty filter", func() {
		Expect(summary.FilterVMs(s, summary.VMFilter{})).To(HaveLen(3))
	})

	It("matches the query against name, cluster, OS and host", func() {
		Expect(summary.FilterVMs(s, summary.VMFilter{Query: "WEB"})).To(HaveLen(1))
		Expect(summary.FilterVMs(s, summary.VMFilter{Query: "prod"})).To(HaveLen(2))
		Expect(summary.FilterVMs(s, summary.VMFilter{Query: "windows"})).To(HaveLen(1))
		Expect(summary.FilterVMs(s, summary.VMFilter{Query: "esx-a"})).To(HaveLen(1))
		Expect(summary.FilterVMs(s, summary.VMFilter{Query: "nothing"})).To(BeEmpty())
	})

	It("combines the query with the power state", func() {
		vms := summary.FilterVMs(s, summary.VMFilter{Query: "prod", PowerState: "poweredOn"})
		Expect(vms).To(HaveLen(1))
		Expect(vms[0].Name).To(Equal("web-01"))
	})

	It("handles a missing summary", func() {
		Expect(summary.FilterVMs(nil, summary.VMFilter{})).To(BeNil())
	})
})

var _ = Describe("HostDensity", func() {
	It("places hosts by their declared VM count", func() {
		small := hostRow("esx-small", "A", "1", "8", "0")
		small["# VMs"] = "3"
		medium := hostRow("esx-medium", "A", "1", "8", "0")
		medium["# VMs"] = "11"
		large := hostRow("esx-large", "A", "1", "8", "0")
		large["# VMs"] = "40"
		huge := hostRow("esx-huge", "A", "1", "8", "0")
		huge["# VMs"] = "41"

		on := vmRow("vm-on", "1", "1024", "poweredOn", "A")
		on["Host"] = "esx-small"
		off := vmRow("vm-off", "1", "1024", "poweredOff", "A")
		off["Host"] = "esx-small"

		buckets := summary.HostDensity(build(vInfo(on, off), vHost(small, medium, large, huge)))

		Expect(buckets).To(HaveLen(4))
		counts := map[string]int{}
		for _, b := range buckets {
			counts[b.Label] = b.Hosts
		}
		Expect(counts).To(Equal(map[string]int{"Very Large": 1, "Large": 1, "Medium": 1, "Small": 1}))

		smallBucket := buckets[3]
		Expect(smallBucket.Label).To(Equal("Small"))
		Expect(smallBucket.ActiveVMs).To(Equal(1))
		Expect(smallBucket.InactiveVMs).To(Equal(1))
	})

	It("returns empty buckets without a summary", func() {
		for _, b := range summary.HostDensity(nil) {
			Expect(b.Hosts).To(BeZero())
		}
	})
})

var _ = Describe("AssessRatios", func() {
	DescribeTable("labels overcommit levels",
		func(r summary.Ratios, expected summary.RatioAssessment) {
			Expect(summary.AssessRatios(r)).To(Equal(expected))
		},
		Entry("low values", summary.Ratios{CoreToVCPU: 1, VRAMToPRAM: 0.5, VMDensity: 5},
			summary.RatioAssessment{CPU: summary.AssessmentConservative, Memory: summary.AssessmentConservative, Density: summary.AssessmentLowDensity}),
		Entry("middle values", summary.Ratios{CoreToVCPU: 4, VRAMToPRAM: 1.2, VMDensity: 20},
			summary.RatioAssessment{CPU: summary.AssessmentModerate, Memory: summary.AssessmentModerate, Density: summary.AssessmentModerateDensity}),
		Entry("high values", summary.Ratios{CoreToVCPU: 8, VRAMToPRAM: 2, VMDensity: 40},
			summary.RatioAssessment{CPU: summary.AssessmentAggressive, Memory: summary.AssessmentAggressive, Density: summary.AssessmentHighDensity}),
	)
})

var _ = Describe("SimulateDRP", func() {
	var s *summary.Summary

	BeforeEach(func() {
		s = build(
			vInfo(
				vmRow("vm-1", "16", "65536", "poweredOn", "Roomy"),
				vmRow("vm-2", "16", "65536", "poweredOn", "Roomy"),
				vmRow("vm-3", "64", "262144", "poweredOn", "Crowded"),
				vmRow("vm-4", "4", "4096", "poweredOn", "NoHosts"),
			),
			vHost(
				hostRow("esx-1", "Roomy", "2", "16", "524288"),
				hostRow("esx-2", "Crowded", "1", "16", "262144"),
			),
		)
	})

	It("flags clusters able to absorb load in the first scenario", func() {
		scenario, err := summary.ScenarioByID(1)
		Expect(err).To(BeNil())

		result := summary.SimulateDRP(s, scenario)
		Expect(result.Clusters).To(HaveLen(3))

		byName := map[string]summary.ClusterDRP{}
		for _, c := range result.Clusters {
			byName[c.Cluster] = c
		}

		roomy := byName["Roomy"]
		Expect(roomy.VCPURatio).To(Equal(1.0))
		Expect(roomy.VRAMRatio).To(Equal(0.25))
		Expect(roomy.CanAbsorb).To(BeTrue())
		Expect(roomy.MaxVCPUs).To(Equal(64))
		Expect(roomy.Slots).To(Equal(2))

		crowded := byName["Crowded"]
		Expect(crowded.VCPURatio).To(Equal(4.0))
		Expect(crowded.CanAbsorb).To(BeFalse())

		noHosts := byName["NoHosts"]
		Expect(noHosts.CanAbsorb).To(BeFalse())
		Expect(noHosts.Slots).To(BeZero())

		Expect(result.Absorbing).To(Equal(1))
	})

	It("applies stricter limits in later scenarios", func() {
		scenario, _ := summary.ScenarioByID(3)
		result := summary.SimulateDRP(s, scenario)
		for _, c := range result.Clusters {
			if c.Cluster == "Roomy" {
				Expect(c.CanAbsorb).To(BeTrue())
				Expect(c.MaxVCPUs).To(Equal(32))
			}
		}
	})

	It("rejects unknown scenarios", func() {
		_, err := summary.ScenarioByID(7)
		Expect(err).To(HaveOccurred())
		Expect(summary.Scenarios()).To(HaveLen(3))
	})
})

var _ = Describe("Storage breakdown", func() {
	It("groups disk capacity by the owning VM's cluster and host", func() {
		vm1 := vmRow("vm-1", "1", "1024", "poweredOn", "A")
		vm1["Host"] = "esx-1"
		vm2 := vmRow("vm-2", "1", "1024", "poweredOn", "B")
		vm2["Host"] = "esx-2"

		disks := rvtools.Table{Label: "vDisk", Rows: []rvtools.Row{
			{"VM": "vm-1", "Disk": "Hard disk 1", "Capacity MiB": "10240"},
			{"VM": "vm-1", "Disk": "Hard disk 2", "Capacity MiB": "10240"},
			{"VM": "vm-2", "Disk": "Hard disk 1", "Capacity MiB": "5120"},
			{"VM": "ghost", "Disk": "Hard disk 1", "Capacity MiB": "1024"},
		}}

		s := build(vInfo(vm1, vm2), disks)

		Expect(s.Storage.Disks).To(Equal(4))
		Expect(s.Storage.CapacityGiB).To(Equal(26.0))
		Expect(s.Storage.ByCluster).To(Equal([]summary.StorageGroup{
			{Name: "A", Disks: 2, VMs: 1, CapacityMiB: 20480, CapacityGiB: 20},
			{Name: "B", Disks: 1, VMs: 1, CapacityMiB: 5120, CapacityGiB: 5},
			{Name: rvtools.UnknownValue, Disks: 1, VMs: 1, CapacityMiB: 1024, CapacityGiB: 1},
		}))
		Expect(s.Storage.ByHost[0].Name).To(Equal("esx-1"))
	})
})
