package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gmichels/selenium-grid-exporter/internal/config"
	"github.com/gmichels/selenium-grid-exporter/internal/errors"
	"github.com/gmichels/selenium-grid-exporter/internal/grid"
	"github.com/gmichels/selenium-grid-exporter/internal/logger"
	"github.com/gmichels/selenium-grid-exporter/internal/metrics"
	"github.com/gmichels/selenium-grid-exporter/internal/pid"
	"github.com/gmichels/selenium-grid-exporter/internal/scheduler"
	"github.com/gmichels/selenium-grid-exporter/internal/server"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "selenium-grid-exporter",
	Short: "Prometheus exporter for Selenium Grid v4",
	Long: `selenium-grid-exporter polls a Selenium Grid v4 hub on a fixed interval
and publishes slot, session and queue gauges for Prometheus to scrape.

Examples:
  selenium-grid-exporter --grid-url http://selenium-hub:4444
  selenium-grid-exporter -g http://selenium-hub:4444 -p 9100 -i 15
  SELENIUM_EXPORTER_GRID_URL=http://selenium-hub:4444 selenium-grid-exporter`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Printf("selenium-grid-exporter version %s\n", version)
		return nil
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(logger.Options{
		Level:     level,
		File:      cfg.LogFile,
		IsService: logger.IsService(),
	})
	logger.Debug().Interface("config", cfg).Msg("Config loaded")

	source, err := newSource(cfg)
	if err != nil {
		fatal(err, "Failed to select grid source")
	}

	registry := metrics.NewRegistry()
	exporterMetrics := metrics.NewExporterMetrics()

	sched, err := newScheduler(cfg, source, registry, exporterMetrics)
	if err != nil {
		fatal(err, "Failed to initialize scheduler")
	}

	if cfg.PIDFile != "" {
		if err := pid.Write(cfg.PIDFile); err != nil {
			fatal(err, "Failed to write PID file")
		}
		defer func() {
			if err := pid.Remove(cfg.PIDFile); err != nil {
				logger.Error().Err(err).Msg("Failed to remove PID file")
			}
		}()
	}

	srv := server.New(server.Options{
		Addr:        cfg.Addr(),
		MetricsPath: cfg.MetricsPath,
		Registry:    registry,
		Exporter:    exporterMetrics,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(ctx, cancel)

	logger.Info().
		Str("version", version).
		Str("grid_url", cfg.GridURL).
		Str("source", cfg.Source).
		Int("publish_interval", cfg.PublishInterval).
		Int("metrics_port", cfg.MetricsPort).
		Msg("Starting selenium-grid-exporter")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	serveErr := srv.Run(ctx)
	cancel()
	wg.Wait()

	if serveErr != nil {
		var e errors.Error
		if errors.As(serveErr, &e) {
			logger.ErrorWithCode(e).Msg("Metrics server failed")
		}
		return serveErr
	}

	logger.Info().Msg("Exiting...")

	return nil
}

func newSource(cfg *config.Config) (grid.Source, error) {
	switch config.Source(cfg.Source) {
	case config.SourceStatus:
		return grid.NewStatusSource(cfg.GridURL, cfg.FetchTimeoutDuration()), nil
	case config.SourceGraphQL:
		return grid.NewGraphQLSource(cfg.GridURL, cfg.FetchTimeoutDuration()), nil
	default:
		return nil, errors.New().WithData(errors.ErrInvalidSource, cfg.Source)
	}
}

func newScheduler(cfg *config.Config, source grid.Source, registry *metrics.Registry, observer scheduler.Observer) (*scheduler.Scheduler, error) {
	sched, err := scheduler.New(source, registry, scheduler.Options{
		Interval:       cfg.PublishEvery(),
		StartupWait:    cfg.StartupWait(),
		GroupByBrowser: cfg.GroupByBrowser,
		Observer:       observer,
	})
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitFailed, err)
	}

	return sched, nil
}

// fatal logs err and exits. Coded errors keep their code in the log line.
func fatal(err error, msg string) {
	var e errors.Error
	if errors.As(err, &e) {
		logger.FatalWithCode(e).Msg(msg)
	}
	logger.Fatal().Err(err).Msg(msg)
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}
