package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/ledgerbot/internal/api/handlers"
	"github.com/dvloznov/ledgerbot/internal/api/middleware"
	"github.com/dvloznov/ledgerbot/internal/blob"
	"github.com/dvloznov/ledgerbot/internal/config"
	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/intake"
	"github.com/dvloznov/ledgerbot/internal/jobs"
	"github.com/dvloznov/ledgerbot/internal/jobs/inmemory"
	"github.com/dvloznov/ledgerbot/internal/ledger"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/oracle"
	"github.com/dvloznov/ledgerbot/internal/sheets"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	resolver, err := dates.NewResolver(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load timezone")
	}

	store, err := sheets.NewStore(ctx, cfg.SpreadsheetID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create spreadsheet store")
	}

	oracleClient, err := oracle.NewClient(ctx, cfg.OracleModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create oracle client")
	}

	var blobs intake.BlobStore
	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - attachment links will be disabled")
	} else {
		bs, err := blob.NewStore(ctx, cfg.GCSBucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create blob store")
		}
		defer bs.Close()
		blobs = bs
	}

	partitions := ledger.NewPartitioner(store, log)
	svc := intake.NewService(
		oracleClient,
		blobs,
		ledger.NewWriter(store, partitions, time.Now, log),
		ledger.NewAggregator(store, resolver, log),
		ledger.NewReporter(store, log),
		ledger.NewRegistry(store, time.Now, log),
		resolver,
		log,
	)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		receiptJob, ok := job.(*jobs.AnalyzeReceiptJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", receiptJob.JobID).
			Str("user_id", receiptJob.UserID).
			Msg("Processing receipt analysis job")

		sub := intake.Submission{
			UserID:    receiptJob.UserID,
			UserLabel: receiptJob.UserLabel,
			MessageID: receiptJob.MessageID,
		}
		conf, analysis, err := svc.SubmitVisual(ctx, sub, receiptJob.Image, receiptJob.MimeType, receiptJob.Filename)
		if err != nil {
			log.Error().Err(err).Str("job_id", receiptJob.JobID).Msg("Receipt analysis failed")
			return err
		}

		receiptJob.AnalysisText = analysis
		if conf != nil {
			receiptJob.Recorded = true
			receiptJob.Partition = conf.Partition
		}

		log.Info().
			Str("job_id", receiptJob.JobID).
			Bool("recorded", receiptJob.Recorded).
			Msg("Receipt analysis completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	submissionsHandler := handlers.NewSubmissionsHandler(svc, jobQueue, log)
	ledgerHandler := handlers.NewLedgerHandler(svc, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/submissions/direct", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			submissionsHandler.SubmitDirect(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/submissions/text", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			submissionsHandler.SubmitText(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/submissions/visual", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			submissionsHandler.SubmitVisual(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ledgerHandler.Balance(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ledgerHandler.Report(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.RateLimit(cfg.RatePerMinute, log)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
