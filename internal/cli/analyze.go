package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kubev2v/rvtools-summary/internal/config"
	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/report/types"
	"github.com/kubev2v/rvtools-summary/internal/summary"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
)

type AnalyzeOptions struct {
	GlobalOptions

	Output         string
	TopVMs         int
	HistogramLimit int
	Diagnostics    bool
	VMs            bool
	Lifecycle      bool
	At             string

	out io.Writer
}

func DefaultAnalyzeOptions() *AnalyzeOptions {
	o := &AnalyzeOptions{
		GlobalOptions:  DefaultGlobalOptions(),
		TopVMs:         summary.DefaultTopVMs,
		HistogramLimit: summary.DefaultHistogramLimit,
		out:            os.Stdout,
	}
	if cfg, err := config.New(); err == nil {
		o.TopVMs = cfg.Analysis.TopVMs
		o.HistogramLimit = cfg.Analysis.HistogramLimit
	}
	return o
}

func NewCmdAnalyze() *cobra.Command {
	o := DefaultAnalyzeOptions()
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Summarize one or more RVTools exports.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *AnalyzeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputHelp())
	fs.IntVar(&o.TopVMs, "top", o.TopVMs, "Number of VMs listed by vCPU count")
	fs.IntVar(&o.HistogramLimit, "histogram-limit", o.HistogramLimit, "Number of entries kept in the OS and hardware version histograms")
	fs.BoolVar(&o.Diagnostics, "diagnostics", o.Diagnostics, "Include how every input table was classified")
	fs.BoolVar(&o.VMs, "vms", o.VMs, "Include every VM in structured output")
	fs.BoolVar(&o.Lifecycle, "lifecycle", o.Lifecycle, "Include the support status report")
	fs.StringVar(&o.At, "at", o.At, "Evaluation date for the support status (YYYY-MM-DD), defaults to today")
}

func (o *AnalyzeOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *AnalyzeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %v", legalOutputTypes)
	}
	if o.TopVMs < 1 || o.HistogramLimit < 1 {
		return fmt.Errorf("top and histogram-limit must be positive")
	}
	if _, err := parseDate(o.At); err != nil {
		return err
	}
	return nil
}

func (o *AnalyzeOptions) Run(ctx context.Context, args []string) error {
	s, result, err := ingest(ctx, summary.Options{TopVMs: o.TopVMs, HistogramLimit: o.HistogramLimit}, args)
	if err != nil {
		return err
	}

	assessment := summary.AssessRatios(s.Ratios)
	data := &types.ReportData{
		Summary:     s,
		Density:     summary.HostDensity(s),
		Assessment:  &assessment,
		Options:     types.ReportOptions{IncludeDiagnostics: o.Diagnostics, IncludeVMs: o.VMs},
		GeneratedAt: time.Now().UTC(),
	}
	if o.Diagnostics {
		data.Diagnostics = result.Diagnostics
	}
	if o.Lifecycle {
		classifier, err := o.Classifier()
		if err != nil {
			return err
		}
		at, _ := parseDate(o.At)
		data.Support = classifier.Report(lifecycle.AssetsFromSummary(s), at)
	}

	if o.Output == "" {
		return printSummaryTable(o.out, data)
	}
	if !o.VMs && o.Output != csvFormat {
		trimmed := *s
		trimmed.VMs = nil
		trimmed.Hosts = nil
		data.Summary = &trimmed
	}
	return writeReport(o.out, data, o.Output)
}

func printSummaryTable(out io.Writer, data *types.ReportData) error {
	s := data.Summary
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)

	fmt.Fprintf(w, "Generated\t%s\n", data.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "VMs (active/total)\t%d/%d\n", s.KPI.ActiveVMs, s.KPI.TotalVMs)
	fmt.Fprintf(w, "Templates\t%d\n", s.KPI.TemplateVMs)
	fmt.Fprintf(w, "Hosts\t%d\n", s.KPI.Hosts)
	fmt.Fprintf(w, "Clusters\t%d\n", s.KPI.Clusters)
	fmt.Fprintf(w, "vCPUs / physical cores\t%d / %d\n", s.KPI.TotalVCPUs, s.KPI.PhysicalCores)
	fmt.Fprintf(w, "vRAM / pRAM (GiB)\t%.1f / %.1f\n", s.KPI.VirtualMemoryGiB, s.KPI.PhysicalMemoryGiB)
	fmt.Fprintf(w, "Storage provisioned / capacity (TiB)\t%.2f / %.2f\n", s.KPI.StorageProvisionedTiB, s.KPI.StorageCapacityTiB)
	fmt.Fprintf(w, "vCPU:core\t%.2f (%s)\n", s.Ratios.CoreToVCPU, data.Assessment.CPU)
	fmt.Fprintf(w, "vRAM:pRAM\t%.2f (%s)\n", s.Ratios.VRAMToPRAM, data.Assessment.Memory)
	fmt.Fprintf(w, "VMs per host\t%.1f (%s)\n", s.Ratios.VMDensity, data.Assessment.Density)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "CLUSTER\tVMS\tACTIVE\tVCPUS\tMEMORY GIB\tCORES\tHOSTS\tVCPU:CORE")
	for _, c := range s.Clusters {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%d\t%d\t%s\n",
			c.Name, c.VMCount, c.ActiveVMs, c.VCPUs, c.MemoryGiB, c.PhysicalCores, c.HostCount, c.VCPUCoreRatio)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "VM\tVCPUS\tMEMORY GIB\tCLUSTER\tOS")
	for _, vm := range s.TopVMs {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%s\t%s\n", vm.Name, vm.VCPUs, vm.MemoryGiB(), vm.Cluster, vm.OSShort)
	}

	for _, h := range []struct {
		title   string
		entries []summary.HistogramEntry
	}{
		{"POWER STATE", s.PowerStates},
		{"OPERATING SYSTEM", s.OperatingSystems},
		{"HW VERSION", s.HardwareVersions},
	} {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\tCOUNT\n", h.title)
		for _, e := range h.entries {
			fmt.Fprintf(w, "%s\t%d\n", e.Key, e.Count)
		}
	}

	if data.Support != nil {
		fmt.Fprintln(w)
		printSupportTotals(w, data.Support)
	}

	if data.Options.IncludeDiagnostics {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "TABLE\tENTITY\tROWS")
		for _, d := range data.Diagnostics {
			fmt.Fprintf(w, "%s\t%s\t%d\n", d.Label, d.Entity, d.Rows)
		}
	}

	return w.Flush()
}
