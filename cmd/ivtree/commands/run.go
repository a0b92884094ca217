// Package commands implements CLI command handlers for ivtree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/ivtree/internal/workload"
	"github.com/Sumatoshi-tech/ivtree/pkg/config"
	"github.com/Sumatoshi-tech/ivtree/pkg/observability"
	"github.com/Sumatoshi-tech/ivtree/pkg/version"
)

const (
	flagConfig      = "config"
	flagDomain      = "domain"
	flagNoValidate  = "no-validate"
	flagEvents      = "events"
	flagColor       = "color"
	flagNoColor     = "no-color"
	flagMetricsAddr = "metrics-addr"

	metricsPath       = "/metrics"
	readHeaderTimeout = 5 * time.Second
	serverStopTimeout = 2 * time.Second
)

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	configPath  string
	domain      string
	metricsAddr string
	noValidate  bool
	events      bool
	color       bool
	noColor     bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run <workload.yaml>",
		Short: "Execute a YAML workload script against an interval tree",
		Long: `Execute a YAML workload script against an interval tree.

Each step inserts, removes, finds or queries intervals. Steps with an
"expect" value are checked; the command fails when any check fails.

Examples:
  ivtree run examples/workloads/overlap.yaml
  ivtree run --domain big --events examples/workloads/big.yaml
  ivtree run --metrics-addr :9464 examples/workloads/churn.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&rc.configPath, flagConfig, "", "path to ivtree.yaml (default: search . ./config $HOME/.config/ivtree)")
	cmd.Flags().StringVar(&rc.domain, flagDomain, "", "interval domain: int64, big or float (overrides script and config)")
	cmd.Flags().BoolVar(&rc.noValidate, flagNoValidate, false, "skip invariant checks after each mutation")
	cmd.Flags().BoolVar(&rc.events, flagEvents, false, "show change events per step")
	cmd.Flags().BoolVar(&rc.color, flagColor, false, "force colored output")
	cmd.Flags().BoolVar(&rc.noColor, flagNoColor, false, "disable colored output")
	cmd.Flags().StringVar(&rc.metricsAddr, flagMetricsAddr, "", "serve Prometheus metrics on this address while running")

	cmd.MarkFlagsMutuallyExclusive(flagColor, flagNoColor)

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, path string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyFlags(cmd, cfg)

	script, err := workload.LoadFile(path)
	if err != nil {
		return err
	}

	domain := script.ResolveDomain(cfg.Tree.Domain)
	if cmd.Flags().Changed(flagDomain) {
		domain = rc.domain
	}

	err = config.ValidateDomain(domain)
	if err != nil {
		return err
	}

	validate := script.ResolveValidate(cfg.Tree.Validate)
	if rc.noValidate {
		validate = false
	}

	obsCfg, err := observabilityConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var readers []sdkmetric.Reader

	if cfg.Metrics.Addr != "" {
		reader, stop, serveErr := serveMetrics(cfg.Metrics.Addr)
		if serveErr != nil {
			return serveErr
		}
		defer stop()

		readers = append(readers, reader)
	}

	providers, err := observability.Init(ctx, obsCfg, readers...)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewTreeMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(ctx, "workload.run")
	span.SetAttributes(attribute.String(observability.AttrWorkloadDomain, domain))

	defer span.End()

	providers.Logger.InfoContext(ctx, "running workload",
		"path", path, "domain", domain, "steps", len(script.Steps), "validate", validate)

	report, runErr := workload.Run(ctx, domain, script, workload.Options{
		Tracer:   providers.Tracer,
		Metrics:  metrics,
		Logger:   providers.Logger,
		Validate: validate,
		Events:   cfg.Output.Events,
	})
	if report != nil {
		renderErr := report.Render(cmd.OutOrStdout(), workload.RenderOptions{
			Color:  rc.useColor(cmd, cfg),
			Events: cfg.Output.Events,
		})
		if renderErr != nil {
			return renderErr
		}
	}

	if runErr != nil {
		return runErr
	}

	return report.Err()
}

// applyFlags overrides config values with explicitly set flags.
func (rc *RunCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed(flagEvents) {
		cfg.Output.Events = rc.events
	}

	if cmd.Flags().Changed(flagMetricsAddr) {
		cfg.Metrics.Addr = rc.metricsAddr
	}
}

func (rc *RunCommand) useColor(cmd *cobra.Command, cfg *config.Config) bool {
	switch {
	case cmd.Flags().Changed(flagNoColor) && rc.noColor:
		return false
	case cmd.Flags().Changed(flagColor) && rc.color:
		return true
	default:
		return cfg.Output.Color && !color.NoColor
	}
}

func observabilityConfig(cfg *config.Config, logWriter io.Writer) (observability.Config, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Tracing.Endpoint
	obsCfg.OTLPInsecure = cfg.Tracing.Insecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Tracing.Headers)
	obsCfg.SampleRatio = cfg.Tracing.SampleRatio
	obsCfg.ShutdownTimeoutSec = cfg.Tracing.ShutdownTimeout
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.FormatJSON
	obsCfg.LogWriter = logWriter

	return obsCfg, nil
}

// serveMetrics starts the Prometheus scrape endpoint and returns the reader
// to attach to the meter provider plus a function that stops the server.
func serveMetrics(addr string) (sdkmetric.Reader, func(), error) {
	reader, handler, err := observability.NewPrometheusReader()
	if err != nil {
		return nil, nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		serveErr := srv.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			fmt.Fprintf(color.Error, "metrics server: %v\n", serveErr)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), serverStopTimeout)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}

	return reader, stop, nil
}
