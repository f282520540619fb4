package lifecycle_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

func vmAsset(name, os string) lifecycle.Asset {
	return lifecycle.Asset{Name: name, Kind: lifecycle.VMAsset, Descriptor: os, Family: lifecycle.FamilyOf(os)}
}

func hostAsset(name, version string) lifecycle.Asset {
	return lifecycle.Asset{Name: name, Kind: lifecycle.HostAsset, Descriptor: version, Family: lifecycle.ESX}
}

var _ = Describe("Report", func() {
	var (
		classifier *lifecycle.Classifier
		assets     []lifecycle.Asset
	)

	BeforeEach(func() {
		classifier = lifecycle.NewClassifier(nil, lifecycle.Options{})
		assets = []lifecycle.Asset{
			vmAsset("vm-1", "CentOS Linux 7 (64-bit)"),
			vmAsset("vm-2", "CentOS Linux 7.9 (Core)"),
			vmAsset("vm-3", "Microsoft Windows Server 2022 (64-bit)"),
			vmAsset("vm-4", "Other 3.x or later Linux (64-bit) with a very long descriptor"),
			vmAsset("vm-5", "Unknown"),
			hostAsset("esx-1", "VMware ESXi 7.0.3 build-21930508"),
		}
	})

	It("groups assets sharing a platform", func() {
		report := classifier.Report(assets, date("2024-01-01"))

		Expect(report.Groups[0].Key).To(Equal("linux/centos 7"))
		Expect(report.Groups[0].Assets).To(Equal(2))
		Expect(report.Groups[0].Status).To(Equal(lifecycle.ToBeUpgraded))
		Expect(*report.Groups[0].EndDate).To(Equal(date("2024-06-30")))
	})

	It("merges alias spellings of one platform into a single group", func() {
		aliases := []lifecycle.Asset{
			vmAsset("vm-1", "CentOS 7 (64-bit)"),
			vmAsset("vm-2", "CentOS Linux 7.9 (Core)"),
		}
		report := classifier.Report(aliases, date("2024-01-01"))

		Expect(report.Groups).To(HaveLen(1))
		Expect(report.Groups[0].Platform).To(Equal("centos 7"))
		Expect(report.Groups[0].Assets).To(Equal(2))
		Expect(report.Families).To(HaveLen(1))
		Expect(report.Families[0].Counts.Get(lifecycle.ToBeUpgraded)).To(Equal(2))

		forecast := classifier.Forecast(aliases, []time.Time{date("2024-01-01")})
		Expect(forecast[0].Platform).To(Equal(forecast[1].Platform))
	})

	It("names unmatched groups after a prefix of the descriptor", func() {
		report := classifier.Report(assets, date("2024-01-01"))

		var unmatched []lifecycle.Group
		for _, g := range report.Groups {
			if !g.Matched {
				unmatched = append(unmatched, g)
			}
		}
		Expect(unmatched).To(HaveLen(2))
		for _, g := range unmatched {
			Expect(g.Status).To(Equal(lifecycle.Unknown))
			Expect(g.EndDate).To(BeNil())
			Expect(len([]rune(g.Platform))).To(BeNumerically("<=", 31))
		}
	})

	It("keeps totals consistent with groups and families", func() {
		report := classifier.Report(assets, date("2024-01-01"))

		Expect(report.Totals.Total()).To(Equal(len(assets)))

		fromGroups := lifecycle.Counts{}
		for _, g := range report.Groups {
			fromGroups.Add(g.Status, g.Assets)
			Expect(g.VMs + g.Hosts).To(Equal(g.Assets))
		}
		Expect(fromGroups).To(Equal(report.Totals))

		fromFamilies := lifecycle.Counts{}
		for _, f := range report.Families {
			for _, status := range lifecycle.Statuses {
				fromFamilies.Add(status, f.Counts.Get(status))
			}
		}
		Expect(fromFamilies).To(Equal(report.Totals))
	})

	It("classifies hosts by their hypervisor version", func() {
		report := classifier.Report(assets, date("2024-01-01"))

		for _, f := range report.Families {
			if f.Family == lifecycle.ESX {
				Expect(f.Counts.OK).To(Equal(1))
			}
		}
	})

	It("records the evaluation settings", func() {
		report := classifier.Report(assets, date("2024-01-01"))
		Expect(report.Mode).To(Equal(lifecycle.Standard))
		Expect(report.WarningMonths).To(Equal(6))
		Expect(report.TableVersion).To(Equal(lifecycle.DefaultTable().Version()))
	})

	Context("over time", func() {
		It("builds one timeline point per instant", func() {
			instants := lifecycle.ForecastInstants(date("2024-01-01"), 6, 2)
			points := classifier.Timeline(assets, instants)

			Expect(points).To(HaveLen(3))
			Expect(points[0].Counts.ToBeUpgraded).To(Equal(2))
			Expect(points[1].Counts.NotSupported).To(BeNumerically(">=", 2))
			for _, p := range points {
				Expect(p.Counts.Total()).To(Equal(len(assets)))
			}
		})

		It("forecasts every asset at every instant", func() {
			instants := lifecycle.ForecastInstants(date("2024-01-01"), 12, 1)
			forecast := classifier.Forecast(assets, instants)

			Expect(forecast).To(HaveLen(len(assets)))
			Expect(forecast[0].Name).To(Equal("vm-1"))
			Expect(forecast[0].Statuses).To(Equal([]lifecycle.Status{lifecycle.ToBeUpgraded, lifecycle.NotSupported}))
			Expect(forecast[4].EndDate).To(BeNil())
		})
	})
})

var _ = Describe("ForecastInstants", func() {
	It("returns the base instant followed by the steps", func() {
		Expect(lifecycle.ForecastInstants(date("2024-01-31"), 6, 3)).To(Equal([]time.Time{
			date("2024-01-31"), date("2024-07-31"), date("2025-01-31"), date("2025-07-31"),
		}))
	})

	It("returns only the base for zero steps", func() {
		Expect(lifecycle.ForecastInstants(date("2024-01-01"), 6, 0)).To(HaveLen(1))
	})
})

var _ = Describe("FamilyOf", func() {
	DescribeTable("detects the platform family",
		func(descriptor string, expected lifecycle.Family) {
			Expect(lifecycle.FamilyOf(descriptor)).To(Equal(expected))
		},
		Entry("windows", "Microsoft Windows 10 (64-bit)", lifecycle.Windows),
		Entry("ubuntu", "Ubuntu Linux (64-bit)", lifecycle.Linux),
		Entry("rhel", "Red Hat Enterprise Linux 8 (64-bit)", lifecycle.Linux),
		Entry("esxi", "VMware ESXi 8.0.1", lifecycle.ESX),
		Entry("other", "FreeBSD 13 (64-bit)", lifecycle.OtherFamily),
	)
})

var _ = Describe("AssetsFromSummary", func() {
	It("lists VMs before hosts", func() {
		s := &summary.Summary{
			VMs:   []summary.VM{{Name: "vm-1", OS: "Ubuntu Linux (64-bit)", Cluster: "A"}},
			Hosts: []summary.Host{{Name: "esx-1", Version: "VMware ESXi 7.0.3", Cluster: "A"}},
		}

		assets := lifecycle.AssetsFromSummary(s)
		Expect(assets).To(HaveLen(2))
		Expect(assets[0].Kind).To(Equal(lifecycle.VMAsset))
		Expect(assets[0].Family).To(Equal(lifecycle.Linux))
		Expect(assets[1].Kind).To(Equal(lifecycle.HostAsset))
		Expect(assets[1].Family).To(Equal(lifecycle.ESX))
	})

	It("returns nothing for a missing summary", func() {
		Expect(lifecycle.AssetsFromSummary(nil)).To(BeEmpty())
	})
})
