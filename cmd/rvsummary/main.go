package main

import (
	"os"

	"github.com/kubev2v/rvtools-summary/internal/cli"
	"github.com/kubev2v/rvtools-summary/internal/config"
	"github.com/kubev2v/rvtools-summary/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	command := NewRVSummaryCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRVSummaryCommand() *cobra.Command {
	logLevel := "info"
	if cfg, err := config.New(); err == nil {
		logLevel = cfg.Service.LogLevel
	}

	var undo func()
	cmd := &cobra.Command{
		Use:   "rvsummary [flags] [options]",
		Short: "rvsummary turns RVTools exports into an infrastructure summary.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := log.InitLog(log.ParseLevel(logLevel))
			undo = zap.ReplaceGlobals(logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
			if undo != nil {
				undo()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level. One of: (debug, info, warn, error).")

	cmd.AddCommand(cli.NewCmdAnalyze())
	cmd.AddCommand(cli.NewCmdLifecycle())
	cmd.AddCommand(cli.NewCmdDRP())
	cmd.AddCommand(cli.NewCmdServe())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
