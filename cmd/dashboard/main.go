package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/api/handlers"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/archive"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/jobs/inmemory"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/metrics"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env-file", ".env", "Optional .env file with dashboard settings")
		addr    = flag.String("addr", "", "HTTP listen address (overrides DASHBOARD_ADDR)")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		bootLog := logger.New()
		if errors.Is(err, config.ErrMissingBaseURL) {
			bootLog.Fatal().Msg("FINANCE_API_BASE_URL is not set; point it at the analytics backend, e.g. http://localhost:8000")
		}
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	client, err := apiclient.New(cfg.BaseURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithLogger(logger.Component(log, "apiclient")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analytics client")
	}

	opts := dashboard.Options{
		SnapshotDelay: cfg.SnapshotDelay,
		Logger:        log,
	}
	if cfg.ArchiveBucket != "" {
		opts.Archiver = archive.NewGCSArchiver(cfg.ArchiveBucket)
		log.Info().Str("bucket", cfg.ArchiveBucket).Msg("Statement archival enabled")
	} else {
		log.Warn().Msg("No ARCHIVE_BUCKET configured - uploaded statements will not be archived")
	}

	dash := dashboard.New(client, opts)
	defer dash.Close()

	// Initial load; failed views are logged and retried on the next refresh.
	ctx := context.Background()
	if report := dash.Refresh(ctx); !report.OK() {
		log.Warn().Int("failed_views", len(report.Failures)).Msg("Initial refresh incomplete")
	}

	// Uploads run one at a time in the background
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(16, 1, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, handlers.UploadJobHandler(dash, logger.Component(log, "uploads"))); err != nil {
		log.Fatal().Err(err).Msg("Failed to start upload worker")
	}

	// Create router
	mux := http.NewServeMux()
	handlers.NewDashboardHandler(dash, cfg.PageSize).Register(mux)
	handlers.NewUploadsHandler(dash, jobQueue).Register(mux)
	handlers.NewJobsHandler(jobStore).Register(mux)
	handlers.NewHealthHandler(client).Register(mux)
	mux.Handle("/metrics", metrics.Handler())

	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
	)

	// Chat and upload calls can take as long as the backend timeout
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", client.BaseURL()).Msg("Starting dashboard server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let an in-flight upload finish before exiting
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping upload queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
