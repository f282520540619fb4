package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kubev2v/rvtools-summary/internal/summary"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

var legalDRPOutputTypes = []string{jsonFormat, yamlFormat}

type DRPOptions struct {
	Output   string
	Scenario int

	out io.Writer
}

func DefaultDRPOptions() *DRPOptions {
	return &DRPOptions{
		Scenario: 1,
		out:      os.Stdout,
	}
}

func NewCmdDRP() *cobra.Command {
	o := DefaultDRPOptions()
	cmd := &cobra.Command{
		Use:   "drp FILE...",
		Short: "Simulate which clusters could absorb failed-over load.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.out = cmd.OutOrStdout()
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

func (o *DRPOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalDRPOutputTypes, ", ")))
	fs.IntVar(&o.Scenario, "scenario", o.Scenario, "Overcommit scenario: 1 (2.0/1.0), 2 (1.5/0.8) or 3 (1.0/0.6)")
}

func (o *DRPOptions) Validate(args []string) error {
	if len(o.Output) > 0 && !funk.Contains(legalDRPOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalDRPOutputTypes, ", "))
	}
	_, err := summary.ScenarioByID(o.Scenario)
	return err
}

func (o *DRPOptions) Run(ctx context.Context, args []string) error {
	s, _, err := ingest(ctx, summary.DefaultOptions(), args)
	if err != nil {
		return err
	}
	scenario, _ := summary.ScenarioByID(o.Scenario)
	result := summary.SimulateDRP(s, scenario)

	switch o.Output {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling simulation: %w", err)
		}
		fmt.Fprintf(o.out, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshalling simulation: %w", err)
		}
		fmt.Fprintf(o.out, "%s", string(marshalled))
		return nil
	}

	w := tabwriter.NewWriter(o.out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "Scenario %d\tvCPU limit %.1f\tvRAM limit %.1f\n", scenario.ID, scenario.VCPULimit, scenario.VRAMLimit)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CLUSTER\tHOSTS\tCORES\tVCPUS\tVCPU RATIO\tVRAM RATIO\tSLOTS\tABSORBS")
	for _, c := range result.Clusters {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%.2f\t%d\t%t\n",
			c.Cluster, c.Hosts, c.PhysicalCores, c.VCPUs, c.VCPURatio, c.VRAMRatio, c.Slots, c.CanAbsorb)
	}
	fmt.Fprintf(w, "\n%d of %d clusters can absorb the load\n", result.Absorbing, len(result.Clusters))
	return w.Flush()
}
