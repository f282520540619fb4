package summary_test

import (
	. "github.com/onsi/gomega"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

func bucketsOf(tables ...rvtools.Table) *rvtools.Buckets {
	acc := rvtools.NewAccumulator()
	for _, t := range tables {
		acc.Add(t)
	}
	return acc.Buckets()
}

func vmRow(name, cpus, memory, power, cluster string) rvtools.Row {
	return rvtools.Row{
		"VM":         name,
		"CPUs":       cpus,
		"Memory":     memory,
		"Powerstate": power,
		"Cluster":    cluster,
		"Template":   "False",
	}
}

func hostRow(name, cluster, sockets, coresPerCPU, memory string) rvtools.Row {
	return rvtools.Row{
		"Host":          name,
		"Cluster":       cluster,
		"# CPU":         sockets,
		"Cores per CPU": coresPerCPU,
		"# Memory":      memory,
	}
}

func vInfo(rows ...rvtools.Row) rvtools.Table {
	return rvtools.Table{Label: "vInfo", Rows: rows}
}

func vHost(rows ...rvtools.Row) rvtools.Table {
	return rvtools.Table{Label: "vHost", Rows: rows}
}

func build(tables ...rvtools.Table) *summary.Summary {
	s, err := summary.Build(bucketsOf(tables...), summary.DefaultOptions())
	Expect(err).To(BeNil())
	return s
}

