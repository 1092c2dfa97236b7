package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/collector"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/config"
	server "github.com/mauv0809/nuvla-job-stats-scraper/internal/http"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/metrics"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/nuvla"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/publisher"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/pubsub"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/scheduler"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nuvla-job-stats-scraper",
	Short: "Collect Nuvla job statistics and push them to a Prometheus Pushgateway",
	Long: `Periodically queries the Nuvla API for job counts by state and execution mode,
and for the duration statistics of recently finished push and pull jobs, then
pushes them to a Prometheus Pushgateway.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, false)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single collection cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, true)
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(onceCmd)
}

// app holds the wired components of a running scraper.
type app struct {
	metrics   *metrics.Service
	scheduler *scheduler.Scheduler
	closers   []func() error
}

func run(cmd *cobra.Command, once bool) error {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	startupDuration := time.Since(startTime)
	a.metrics.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	if once {
		report := a.scheduler.RunCycle(ctx)
		log.Info("Collection cycle finished",
			"cycle_id", report.ID,
			"points", report.Points,
			"failed_operations", len(report.Failures),
			"elapsed", report.Elapsed,
		)
		if report.PublishErr != nil {
			return fmt.Errorf("failed to publish snapshot: %w", report.PublishErr)
		}
		return nil
	}

	var srv *http.Server
	serverErrors := make(chan error, 1)
	if cfg.ListenAddress != "" {
		srv = &http.Server{
			Addr:    cfg.ListenAddress,
			Handler: server.NewServer(metrics.NewMetricsHandler(), a.scheduler),
		}
		go func() {
			log.Info("Server started", "address", cfg.ListenAddress)
			serverErrors <- srv.ListenAndServe()
		}()
	}

	schedulerDone := make(chan error, 1)
	go func() { schedulerDone <- a.scheduler.Run(ctx) }()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			stop()
			<-schedulerDone
			return fmt.Errorf("server error: %w", err)
		}
	case err := <-schedulerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("Shutdown signal received")
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}
	log.Info("Scraper shutting down")
	return nil
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{metrics: metrics.NewService()}

	nuvlaClient, err := nuvla.NewClient(nuvla.Options{
		Endpoint: cfg.Nuvla.URL,
		Key:      cfg.Nuvla.Key,
		Secret:   cfg.Nuvla.Secret,
		Insecure: cfg.Nuvla.Insecure,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	loginCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := nuvlaClient.Login(loginCtx); err != nil {
		return nil, fmt.Errorf("failed to log in to Nuvla at %s: %w", nuvlaClient.BaseURL, err)
	}
	log.Info("Logged in to Nuvla", "endpoint", nuvlaClient.BaseURL)

	var pub publisher.Publisher = publisher.NewPushgateway(
		cfg.PushgatewayEndpoint,
		publisher.JobName,
		&http.Client{Timeout: cfg.Timeout},
	)
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.New(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pubsubClient.Close)
		pub = publisher.NewMulti(pub, publisher.NewPubSub(pubsubClient, cfg.PubSub.Topic, publisher.JobName))
		log.Info("Publishing snapshots to Pub/Sub", "project", cfg.PubSub.ProjectID, "topic", cfg.PubSub.Topic)
	}

	a.scheduler = scheduler.New(
		collector.New(nuvlaClient, a.metrics),
		pub,
		a.metrics,
		cfg.Frequency,
	)
	return a, nil
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Error("Failed to close client", "error", err)
		}
	}
}

func setupLogging(cfg config.LogConfig) {
	switch cfg.Format {
	case "text":
		log.SetFormatter(log.TextFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.JSONFormatter)
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn("Unknown log level, keeping info", "level", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
}
