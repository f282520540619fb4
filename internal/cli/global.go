package cli

import (
	"fmt"
	"strings"

	"github.com/kubev2v/rvtools-summary/internal/config"
	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
)

type GlobalOptions struct {
	LifecycleFile string
	SupportMode   string
	WarningMonths int
}

// DefaultGlobalOptions seeds the lifecycle flags from the environment configuration.
func DefaultGlobalOptions() GlobalOptions {
	o := GlobalOptions{
		SupportMode:   string(lifecycle.Standard),
		WarningMonths: lifecycle.DefaultWarningMonths,
	}
	if cfg, err := config.New(); err == nil {
		o.LifecycleFile = cfg.Lifecycle.DataFile
		o.SupportMode = cfg.Lifecycle.SupportMode
		o.WarningMonths = cfg.Lifecycle.WarningMonths
	}
	return o
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.LifecycleFile, "lifecycle-file", o.LifecycleFile, "Path to a YAML lifecycle dataset replacing the embedded one")
	fs.StringVar(&o.SupportMode, "mode", o.SupportMode, "Support mode. One of: (standard, extended).")
	fs.IntVar(&o.WarningMonths, "warning-months", o.WarningMonths, "Months before end of support when an asset is flagged to be upgraded")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	o.SupportMode = strings.ToLower(strings.TrimSpace(o.SupportMode))
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if !funk.Contains(legalSupportModes, o.SupportMode) {
		return fmt.Errorf("mode must be one of %s", strings.Join(legalSupportModes, ", "))
	}
	if o.WarningMonths < 0 {
		return fmt.Errorf("warning-months must not be negative")
	}
	return nil
}

// Classifier builds the lifecycle classifier described by the options.
func (o *GlobalOptions) Classifier() (*lifecycle.Classifier, error) {
	table := lifecycle.DefaultTable()
	if o.LifecycleFile != "" {
		t, err := lifecycle.LoadTable(o.LifecycleFile)
		if err != nil {
			return nil, fmt.Errorf("loading lifecycle dataset: %w", err)
		}
		table = t
	}

	mode, err := lifecycle.ParseMode(o.SupportMode)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewClassifier(table, lifecycle.Options{Mode: mode, WarningMonths: o.WarningMonths}), nil
}
