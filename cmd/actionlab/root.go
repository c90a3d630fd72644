package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionlab/actionlab/internal/analysis"
	"github.com/actionlab/actionlab/internal/config"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/report"
	"github.com/actionlab/actionlab/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "actionlab",
		Short:         "Bowling-delivery biomechanics from pose landmarks",
		Long:          "ActionLab detects delivery anchors, evaluates elbow legality, classifies\nthe action and scores load-risk signals from per-frame pose landmarks.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "actionlab.yaml", "Path to config file (missing file means defaults)")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newBatchCmd(opts),
		newExtractCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// load reads, overlays and validates configuration, then installs logging.
func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Logging.Format)
	o.cfg = cfg
	return nil
}

// pipeline is the analyzer plus the optional telemetry and report plumbing
// that must be shut down after use.
type pipeline struct {
	analyzer *analysis.Analyzer
	tel      *telemetry.Provider
	reports  *report.Emitter
}

func (o *rootOptions) newRuntime(ctx context.Context, withReports bool) (*pipeline, error) {
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  o.cfg.Telemetry.Enabled,
		Endpoint: o.cfg.Telemetry.Endpoint,
		Protocol: o.cfg.Telemetry.Protocol,
		Service:  o.cfg.Telemetry.Service,
		Version:  version,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	rt := &pipeline{tel: tel}
	opts := []analysis.Option{analysis.WithTelemetry(tel)}
	if withReports {
		em, err := report.FromConfig(o.cfg.Reports, func() { tel.RecordReportDrop(context.Background(), "queue") })
		if err != nil {
			tel.Shutdown(ctx)
			return nil, err
		}
		if em != nil {
			rt.reports = em
			opts = append(opts, analysis.WithReports(em))
		}
	}
	rt.analyzer = analysis.New(o.cfg.Analysis, opts...)
	return rt, nil
}

func (rt *pipeline) close(ctx context.Context) {
	rt.reports.Close(ctx)
	rt.tel.Shutdown(ctx)
}
