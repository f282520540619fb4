package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	apiserver "github.com/kubev2v/rvtools-summary/internal/api_server"
	"github.com/kubev2v/rvtools-summary/internal/config"
	"github.com/kubev2v/rvtools-summary/internal/events"
	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServeOptions struct {
	GlobalOptions

	Address        string
	MetricsAddress string
	Events         string
}

func DefaultServeOptions() *ServeOptions {
	o := &ServeOptions{
		GlobalOptions:  DefaultGlobalOptions(),
		Address:        ":8080",
		MetricsAddress: ":8081",
	}
	if cfg, err := config.New(); err == nil {
		o.Address = cfg.Service.Address
		o.MetricsAddress = cfg.Service.MetricsAddress
		o.Events = cfg.Service.EventsOutput
	}
	return o
}

func NewCmdServe() *cobra.Command {
	o := DefaultServeOptions()
	cmd := &cobra.Command{
		Use:   "serve [FILE...]",
		Short: "Serve the summary of RVTools exports over HTTP.",
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

func (o *ServeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Address, "address", o.Address, "Address the API listens on")
	fs.StringVar(&o.MetricsAddress, "metrics-address", o.MetricsAddress, "Address the metrics endpoint listens on, empty to disable")
	fs.StringVar(&o.Events, "events", o.Events, "Publish ingestion events to 'log' or 'stdout', empty to disable")
}

func (o *ServeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Events != "" && !funk.ContainsString(legalEventOutputs, o.Events) {
		return fmt.Errorf("events must be one of %s", strings.Join(legalEventOutputs, ", "))
	}
	return nil
}

func newEventWriter(output string) events.Writer {
	if output == "stdout" {
		return events.NewStreamWriter(os.Stdout)
	}
	return &events.LogWriter{}
}

func (o *ServeOptions) Run(ctx context.Context, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Service.Address = o.Address
	cfg.Service.MetricsAddress = o.MetricsAddress

	classifier, err := o.Classifier()
	if err != nil {
		return err
	}

	state := apiserver.NewState(summary.Options{TopVMs: cfg.Analysis.TopVMs, HistogramLimit: cfg.Analysis.HistogramLimit})
	if o.Events != "" {
		producer := events.NewEventProducer(newEventWriter(o.Events),
			events.WithSource("rvsummary.api_server"),
			events.WithQueueLimit(cfg.Service.EventsQueue),
		)
		defer producer.Close()
		state.WithEvents(producer)
	}
	if len(args) > 0 {
		sources := make([]rvtools.Source, 0, len(args))
		for _, path := range args {
			sources = append(sources, rvtools.FileSource(path))
		}
		if _, err := state.Load(ctx, sources...); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		listener, err := newListener(cfg.Service.Address)
		if err != nil {
			return fmt.Errorf("creating listener: %w", err)
		}
		return apiserver.New(cfg, listener, state, classifier).Run(ctx)
	})

	if cfg.Service.MetricsAddress != "" {
		g.Go(func() error {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				return fmt.Errorf("creating metrics listener: %w", err)
			}
			metricsServer, err := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener, state.Stats(classifier))
			if err != nil {
				return err
			}
			return metricsServer.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		zap.S().Named("api_server").Errorf("server stopped: %v", err)
		return err
	}
	return nil
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
