package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/report/types"
	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

const dateLayout = "2006-01-02"

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatCSV
}

func (r *Renderer) Render(data *types.ReportData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("no report data")
	}

	var csvRows [][]string

	csvRows = append(csvRows, []string{"VMWARE ESTATE SUMMARY REPORT"})
	csvRows = append(csvRows, []string{fmt.Sprintf("Generated: %s", data.GeneratedAt.Format(time.RFC3339))})
	csvRows = append(csvRows, []string{""})

	if s := data.Summary; s != nil {
		csvRows = r.addKPIs(csvRows, s.KPI)
		csvRows = r.addRatios(csvRows, s.Ratios, data.Assessment)
		csvRows = r.addClusters(csvRows, s.Clusters)
		csvRows = r.addTopVMs(csvRows, s.TopVMs)
		csvRows = r.addHistogram(csvRows, "POWER STATES", "Power State", s.PowerStates)
		csvRows = r.addHistogram(csvRows, "OPERATING SYSTEMS", "Operating System", s.OperatingSystems)
		csvRows = r.addHistogram(csvRows, "HARDWARE VERSIONS", "Hardware Version", s.HardwareVersions)
		csvRows = r.addStorage(csvRows, s.Storage)
		if data.Options.IncludeVMs {
			csvRows = r.addVMs(csvRows, s.VMs)
		}
	}

	csvRows = r.addDensity(csvRows, data.Density)
	csvRows = r.addSupport(csvRows, data.Support)
	csvRows = r.addTimeline(csvRows, data.Timeline)

	if data.Options.IncludeDiagnostics {
		csvRows = r.addDiagnostics(csvRows, data.Diagnostics)
	}

	return r.convertRowsToCSV(csvRows)
}

func (r *Renderer) addKPIs(csvRows [][]string, kpi summary.KPI) [][]string {
	csvRows = append(csvRows, []string{"KEY INDICATORS"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Metric", "Value"})

	csvRows = append(csvRows, []string{"Active VMs", strconv.Itoa(kpi.ActiveVMs)})
	csvRows = append(csvRows, []string{"Total VMs", strconv.Itoa(kpi.TotalVMs)})
	csvRows = append(csvRows, []string{"Template VMs", strconv.Itoa(kpi.TemplateVMs)})
	csvRows = append(csvRows, []string{"ESXi Hosts", strconv.Itoa(kpi.Hosts)})
	csvRows = append(csvRows, []string{"Clusters", strconv.Itoa(kpi.Clusters)})
	csvRows = append(csvRows, []string{"Total vCPUs", strconv.Itoa(kpi.TotalVCPUs)})
	csvRows = append(csvRows, []string{"Physical Cores", strconv.Itoa(kpi.PhysicalCores)})
	csvRows = append(csvRows, []string{"Physical Memory (GiB)", formatFloat(kpi.PhysicalMemoryGiB)})
	csvRows = append(csvRows, []string{"Virtual Memory (GiB)", formatFloat(kpi.VirtualMemoryGiB)})
	csvRows = append(csvRows, []string{"Provisioned Storage (TiB)", formatFloat(kpi.StorageProvisionedTiB)})
	csvRows = append(csvRows, []string{"Datastore Capacity (TiB)", formatFloat(kpi.StorageCapacityTiB)})
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addRatios(csvRows [][]string, ratios summary.Ratios, assessment *summary.RatioAssessment) [][]string {
	csvRows = append(csvRows, []string{"OVERCOMMIT RATIOS"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Ratio", "Value", "Assessment"})

	a := summary.AssessRatios(ratios)
	if assessment != nil {
		a = *assessment
	}
	csvRows = append(csvRows, []string{"vCPU per Core", formatFloat(ratios.CoreToVCPU), string(a.CPU)})
	csvRows = append(csvRows, []string{"vRAM per pRAM", formatFloat(ratios.VRAMToPRAM), string(a.Memory)})
	csvRows = append(csvRows, []string{"Active VMs per Host", formatFloat(ratios.VMDensity), string(a.Density)})
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addClusters(csvRows [][]string, clusters []summary.ClusterRollup) [][]string {
	if len(clusters) == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{"CLUSTERS"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Cluster", "VMs", "Active VMs", "vCPUs", "Memory (GiB)", "Hosts", "Physical Cores", "vCPU/Core"})

	for _, c := range clusters {
		csvRows = append(csvRows, []string{
			c.Name,
			strconv.Itoa(c.VMCount),
			strconv.Itoa(c.ActiveVMs),
			strconv.Itoa(c.VCPUs),
			formatFloat(c.MemoryGiB),
			strconv.Itoa(c.HostCount),
			strconv.Itoa(c.PhysicalCores),
			c.VCPUCoreRatio.String(),
		})
	}
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addTopVMs(csvRows [][]string, vms []summary.VM) [][]string {
	if len(vms) == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{"TOP VMS BY VCPU"})
	csvRows = append(csvRows, []string{""})
	csvRows = r.appendVMRows(csvRows, vms)
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addVMs(csvRows [][]string, vms []summary.VM) [][]string {
	csvRows = append(csvRows, []string{"VIRTUAL MACHINES"})
	csvRows = append(csvRows, []string{""})
	csvRows = r.appendVMRows(csvRows, vms)
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) appendVMRows(csvRows [][]string, vms []summary.VM) [][]string {
	csvRows = append(csvRows, []string{"VM", "Power State", "vCPUs", "Memory (GiB)", "Storage (GiB)", "Cluster", "Host", "OS", "HW Version"})
	for _, vm := range vms {
		csvRows = append(csvRows, []string{
			vm.Name,
			vm.RawPowerState,
			strconv.Itoa(vm.VCPUs),
			formatFloat(vm.MemoryGiB()),
			formatFloat(vm.ProvisionedGiB()),
			vm.Cluster,
			vm.Host,
			vm.OSShort,
			vm.HardwareVersion,
		})
	}
	return csvRows
}

func (r *Renderer) addHistogram(csvRows [][]string, title, label string, entries []summary.HistogramEntry) [][]string {
	if len(entries) == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{title})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{label, "VM Count"})
	for _, e := range entries {
		csvRows = append(csvRows, []string{e.Key, strconv.Itoa(e.Count)})
	}
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addStorage(csvRows [][]string, storage summary.StorageBreakdown) [][]string {
	if storage.Disks == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{"STORAGE BY CLUSTER"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Cluster", "Disks", "VMs", "Capacity (GiB)"})
	for _, g := range storage.ByCluster {
		csvRows = append(csvRows, []string{g.Name, strconv.Itoa(g.Disks), strconv.Itoa(g.VMs), formatFloat(g.CapacityGiB)})
	}
	csvRows = append(csvRows, []string{"Total", strconv.Itoa(storage.Disks), "", formatFloat(storage.CapacityGiB)})
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addDensity(csvRows [][]string, buckets []summary.DensityBucket) [][]string {
	if len(buckets) == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{"HOST DENSITY"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Bucket", "Hosts", "Active VMs", "Other VMs"})
	for _, b := range buckets {
		csvRows = append(csvRows, []string{b.Label, strconv.Itoa(b.Hosts), strconv.Itoa(b.ActiveVMs), strconv.Itoa(b.InactiveVMs)})
	}
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addSupport(csvRows [][]string, report *lifecycle.SupportReport) [][]string {
	if report == nil {
		return csvRows
	}

	csvRows = append(csvRows, []string{"SUPPORT STATUS"})
	csvRows = append(csvRows, []string{fmt.Sprintf("Evaluated at %s, %s support, %d month warning window",
		report.At.Format(dateLayout), report.Mode, report.WarningMonths)})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Family", "Platform", "End of Support", "Status", "VMs", "Hosts"})

	for _, g := range report.Groups {
		end := ""
		if g.EndDate != nil {
			end = g.EndDate.Format(dateLayout)
		}
		csvRows = append(csvRows, []string{
			string(g.Family),
			g.Platform,
			end,
			string(g.Status),
			strconv.Itoa(g.VMs),
			strconv.Itoa(g.Hosts),
		})
	}
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, append([]string{"Family"}, statusHeaders()...))
	for _, f := range report.Families {
		csvRows = append(csvRows, append([]string{string(f.Family)}, countCells(f.Counts)...))
	}
	csvRows = append(csvRows, append([]string{"Total"}, countCells(report.Totals)...))
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addTimeline(csvRows [][]string, points []lifecycle.TimelinePoint) [][]string {
	if len(points) == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{"SUPPORT TIMELINE"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, append([]string{"Date"}, statusHeaders()...))
	for _, p := range points {
		csvRows = append(csvRows, append([]string{p.At.Format(dateLayout)}, countCells(p.Counts)...))
	}
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func (r *Renderer) addDiagnostics(csvRows [][]string, diagnostics []rvtools.Diagnostic) [][]string {
	if len(diagnostics) == 0 {
		return csvRows
	}

	csvRows = append(csvRows, []string{"INPUT TABLES"})
	csvRows = append(csvRows, []string{""})
	csvRows = append(csvRows, []string{"Source", "Recognized As", "Rows", "Columns"})
	for _, d := range diagnostics {
		entity := d.Entity.String()
		if d.Skipped {
			entity = "skipped"
		}
		csvRows = append(csvRows, []string{d.Label, entity, strconv.Itoa(d.Rows), strings.Join(d.Columns, ", ")})
	}
	csvRows = append(csvRows, []string{""})

	return csvRows
}

func statusHeaders() []string {
	headers := make([]string, 0, len(lifecycle.Statuses))
	for _, s := range lifecycle.Statuses {
		headers = append(headers, string(s))
	}
	return headers
}

func countCells(c lifecycle.Counts) []string {
	cells := make([]string, 0, len(lifecycle.Statuses))
	for _, s := range lifecycle.Statuses {
		cells = append(cells, strconv.Itoa(c.Get(s)))
	}
	return cells
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *Renderer) convertRowsToCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.String(), nil
}
