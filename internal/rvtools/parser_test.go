package rvtools_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
)

var _ = Describe("Ingest", func() {
	It("merges files in the order they were given", func() {
		first := buildWorkbook(vInfoSheet(
			[]string{"vm-a", "poweredOn", "False", "2", "2048", "c1", "h1", "os"},
		))
		second := []byte("VM,CPUs,Memory\nvm-b,4,4096\nvm-c,1,1024\n")

		result, err := rvtools.Ingest(context.TODO(),
			rvtools.BytesSource("first.xlsx", first),
			rvtools.BytesSource("second.csv", second),
		)
		Expect(err).To(BeNil())

		vms := result.Buckets.VMs()
		Expect(vms).To(HaveLen(3))
		Expect(vms[0]["VM"]).To(Equal("vm-a"))
		Expect(vms[1]["VM"]).To(Equal("vm-b"))
		Expect(vms[2]["VM"]).To(Equal("vm-c"))

		Expect(result.Diagnostics).To(HaveLen(2))
		Expect(result.Diagnostics[0].Label).To(Equal("first.xlsx → vInfo"))
		Expect(result.Diagnostics[1].Label).To(Equal("second.csv"))
	})

	It("records skipped tables among the diagnostics", func() {
		result, err := rvtools.Ingest(context.TODO(),
			rvtools.BytesSource("odd.csv", []byte("Foo,Bar\n1,2\n")),
		)
		Expect(err).To(BeNil())
		Expect(result.Diagnostics).To(HaveLen(1))
		Expect(result.Diagnostics[0].Skipped).To(BeTrue())
		Expect(result.Buckets.VMs()).To(BeEmpty())
	})

	It("fails the whole cycle when one file cannot be read", func() {
		good := rvtools.BytesSource("good.csv", []byte("VM,CPUs,Memory\nvm-1,2,2048\n"))
		bad := rvtools.Source{
			Name: "bad.xlsx",
			Load: func(ctx context.Context) ([]byte, error) {
				return nil, errors.New("disk on fire")
			},
		}

		result, err := rvtools.Ingest(context.TODO(), good, bad)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("bad.xlsx"))
		Expect(result).To(BeNil())
	})

	It("fails when a file has an unsupported format", func() {
		_, err := rvtools.Ingest(context.TODO(), rvtools.BytesSource("inventory.json", []byte("{}")))
		Expect(err).To(MatchError(rvtools.ErrUnsupportedFormat))
	})

	It("requires at least one file", func() {
		_, err := rvtools.Ingest(context.TODO())
		Expect(err).To(HaveOccurred())
	})

	It("reads files from disk", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "vinfo.csv")
		Expect(os.WriteFile(path, []byte("VM,CPUs,Memory\nvm-1,2,2048\n"), 0o600)).To(Succeed())

		result, err := rvtools.IngestFiles(context.TODO(), path)
		Expect(err).To(BeNil())
		Expect(result.Buckets.Count(rvtools.VMInfo)).To(Equal(1))
	})

	It("fails on a missing file", func() {
		_, err := rvtools.IngestFiles(context.TODO(), filepath.Join(GinkgoT().TempDir(), "missing.xlsx"))
		Expect(err).To(HaveOccurred())
	})
})
