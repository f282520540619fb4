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

type LifecycleOptions struct {
	GlobalOptions

	Output    string
	At        string
	Increment int
	Steps     int
	Assets    bool

	out io.Writer
}

func DefaultLifecycleOptions() *LifecycleOptions {
	o := &LifecycleOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Increment:     6,
		Steps:         3,
		out:           os.Stdout,
	}
	if cfg, err := config.New(); err == nil {
		o.Increment = cfg.Lifecycle.ForecastIncrementMonths
		o.Steps = cfg.Lifecycle.ForecastSteps
	}
	return o
}

func NewCmdLifecycle() *cobra.Command {
	o := DefaultLifecycleOptions()
	cmd := &cobra.Command{
		Use:   "lifecycle FILE...",
		Short: "Classify the operating systems and hypervisors of an export by support status.",
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

func (o *LifecycleOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputHelp())
	fs.StringVar(&o.At, "at", o.At, "Evaluation date (YYYY-MM-DD), defaults to today")
	fs.IntVar(&o.Increment, "increment", o.Increment, "Months between two timeline points")
	fs.IntVar(&o.Steps, "steps", o.Steps, "Number of timeline points after the evaluation date")
	fs.BoolVar(&o.Assets, "assets", o.Assets, "Include the per-asset forecast in structured output")
}

func (o *LifecycleOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *LifecycleOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %v", legalOutputTypes)
	}
	if o.Increment < 1 {
		return fmt.Errorf("increment must be at least one month")
	}
	if o.Steps < 0 {
		return fmt.Errorf("steps must not be negative")
	}
	if _, err := parseDate(o.At); err != nil {
		return err
	}
	return nil
}

func (o *LifecycleOptions) Run(ctx context.Context, args []string) error {
	classifier, err := o.Classifier()
	if err != nil {
		return err
	}
	s, _, err := ingest(ctx, summary.DefaultOptions(), args)
	if err != nil {
		return err
	}

	at, _ := parseDate(o.At)
	assets := lifecycle.AssetsFromSummary(s)
	instants := lifecycle.ForecastInstants(at, o.Increment, o.Steps)

	data := &types.ReportData{
		Support:     classifier.Report(assets, at),
		Timeline:    classifier.Timeline(assets, instants),
		GeneratedAt: time.Now().UTC(),
	}
	if o.Assets {
		data.Forecast = classifier.Forecast(assets, instants)
	}

	if o.Output == "" {
		return printLifecycleTable(o.out, data)
	}
	return writeReport(o.out, data, o.Output)
}

func printLifecycleTable(out io.Writer, data *types.ReportData) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)

	fmt.Fprintf(w, "Evaluated at\t%s\n", data.Support.At.Format(dateLayout))
	fmt.Fprintf(w, "Mode\t%s\n", data.Support.Mode)
	fmt.Fprintf(w, "Warning window (months)\t%d\n", data.Support.WarningMonths)
	fmt.Fprintf(w, "Dataset\t%s\n", data.Support.TableVersion)
	fmt.Fprintln(w)
	printSupportTotals(w, data.Support)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "FAMILY\tPLATFORM\tEND OF SUPPORT\tSTATUS\tVMS\tHOSTS")
	for _, g := range data.Support.Groups {
		end := "-"
		if g.EndDate != nil {
			end = g.EndDate.Format(dateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", g.Family, g.Platform, end, g.Status, g.VMs, g.Hosts)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "DATE\tOK\tTO BE UPGRADED\tNOT SUPPORTED\tUNKNOWN")
	for _, p := range data.Timeline {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", p.At.Format(dateLayout), p.Counts.OK, p.Counts.ToBeUpgraded, p.Counts.NotSupported, p.Counts.Unknown)
	}

	return w.Flush()
}

func printSupportTotals(w io.Writer, report *lifecycle.SupportReport) {
	fmt.Fprintln(w, "FAMILY\tOK\tTO BE UPGRADED\tNOT SUPPORTED\tUNKNOWN")
	for _, f := range report.Families {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", f.Family, f.Counts.OK, f.Counts.ToBeUpgraded, f.Counts.NotSupported, f.Counts.Unknown)
	}
	t := report.Totals
	fmt.Fprintf(w, "total\t%d\t%d\t%d\t%d\n", t.OK, t.ToBeUpgraded, t.NotSupported, t.Unknown)
}
