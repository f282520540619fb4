package lifecycle_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).To(BeNil())
	return t
}

var _ = Describe("Classifier", func() {
	const centos = "CentOS Linux 7.9 (Core)"

	var classifier *lifecycle.Classifier

	BeforeEach(func() {
		classifier = lifecycle.NewClassifier(nil, lifecycle.Options{})
	})

	It("uses the standard mode and a six month window by default", func() {
		Expect(classifier.Mode()).To(Equal(lifecycle.Standard))
		Expect(classifier.WarningMonths()).To(Equal(lifecycle.DefaultWarningMonths))
	})

	It("resolves the end of support of a descriptor", func() {
		end, ok := classifier.EndDate(centos)
		Expect(ok).To(BeTrue())
		Expect(end).To(Equal(date("2024-06-30")))
	})

	It("flags a platform whose support ends within the window", func() {
		Expect(classifier.Classify(centos, date("2024-01-01"))).To(Equal(lifecycle.ToBeUpgraded))
	})

	It("reports a platform past its end of support", func() {
		Expect(classifier.Classify(centos, date("2025-01-01"))).To(Equal(lifecycle.NotSupported))
	})

	It("reports a platform far from its end of support", func() {
		Expect(classifier.Classify(centos, date("2023-01-01"))).To(Equal(lifecycle.OK))
	})

	It("returns unknown for descriptors without a record", func() {
		Expect(classifier.Classify("FreeBSD 13", date("2024-01-01"))).To(Equal(lifecycle.Unknown))
		Expect(classifier.Classify("", date("2024-01-01"))).To(Equal(lifecycle.Unknown))
	})

	It("uses extended dates in extended mode", func() {
		extended := lifecycle.NewClassifier(nil, lifecycle.Options{Mode: lifecycle.Extended})
		at := date("2024-01-01")

		Expect(classifier.Classify("Microsoft Windows Server 2012 R2 (64-bit)", at)).To(Equal(lifecycle.NotSupported))
		Expect(extended.Classify("Microsoft Windows Server 2016 (64-bit)", at)).To(Equal(lifecycle.OK))

		end, _ := extended.EndDate("Red Hat Enterprise Linux 7 (64-bit)")
		Expect(end).To(Equal(date("2026-06-30")))
	})

	It("narrows the window when configured", func() {
		narrow := lifecycle.NewClassifier(nil, lifecycle.Options{WarningMonths: 3})
		Expect(narrow.Classify(centos, date("2024-01-01"))).To(Equal(lifecycle.OK))
		Expect(narrow.Classify(centos, date("2024-04-01"))).To(Equal(lifecycle.ToBeUpgraded))
	})

	It("replaces a negative window with the default", func() {
		c := lifecycle.NewClassifier(nil, lifecycle.Options{WarningMonths: -1})
		Expect(c.WarningMonths()).To(Equal(lifecycle.DefaultWarningMonths))
	})

	It("never moves back from not supported as time passes", func() {
		rank := map[lifecycle.Status]int{lifecycle.OK: 0, lifecycle.ToBeUpgraded: 1, lifecycle.NotSupported: 2}
		end := date("2024-06-30")

		for _, months := range []int{0, 3, 6, 12} {
			previous := -1
			for at := date("2022-01-01"); at.Before(date("2026-01-01")); at = at.AddDate(0, 0, 15) {
				current := rank[lifecycle.ClassifyEndDate(end, true, at, months)]
				Expect(current).To(BeNumerically(">=", previous))
				previous = current
			}
		}
	})
})

var _ = DescribeTable("ClassifyEndDate",
	func(end, at string, months int, expected lifecycle.Status) {
		Expect(lifecycle.ClassifyEndDate(date(end), true, date(at), months)).To(Equal(expected))
	},
	Entry("beyond the window", "2025-01-01", "2024-01-01", 6, lifecycle.OK),
	Entry("on the window edge", "2024-07-01", "2024-01-01", 6, lifecycle.ToBeUpgraded),
	Entry("inside the window", "2024-03-01", "2024-01-01", 6, lifecycle.ToBeUpgraded),
	Entry("on the end date", "2024-01-01", "2024-01-01", 6, lifecycle.NotSupported),
	Entry("after the end date", "2023-12-31", "2024-01-01", 6, lifecycle.NotSupported),
	Entry("zero window", "2024-01-02", "2024-01-01", 0, lifecycle.OK),
)

var _ = Describe("ParseMode", func() {
	It("accepts known modes case-insensitively", func() {
		Expect(lifecycle.ParseMode("Extended")).To(Equal(lifecycle.Extended))
		Expect(lifecycle.ParseMode("")).To(Equal(lifecycle.Standard))
	})

	It("rejects unknown modes", func() {
		_, err := lifecycle.ParseMode("premium")
		Expect(err).To(HaveOccurred())
	})
})
