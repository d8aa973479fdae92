package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"mrstrict/internal/config"
	"mrstrict/internal/extract"
	"mrstrict/internal/handler"
	"mrstrict/internal/logger"
	"mrstrict/internal/metrics"
	"mrstrict/internal/notifier"
	"mrstrict/internal/repository/postgres"
	"mrstrict/internal/router"
	"mrstrict/internal/service"
	s3storage "mrstrict/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Setup(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	evalRepo := postgres.NewEvaluationRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize notifier
	mailer, err := notifier.New(ctx, cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize services
	tokenSvc := service.NewTokenService(cfg.JWT)
	evalSvc := service.NewEvaluationService(evalRepo, extract.NewDefaultRegistry(), s3Client, mailer, m, service.EvaluationConfig{
		Concurrency:    cfg.Evaluation.Concurrency,
		MaxFileBytes:   cfg.Evaluation.MaxFileBytes(),
		MaxCandidates:  cfg.Evaluation.MaxCandidates,
		Bucket:         cfg.S3.Bucket,
		ArchiveReports: cfg.Evaluation.ArchiveReports,
		PresignExpiry:  cfg.S3.PresignExpiry,
	})

	// Initialize handlers
	evalH := handler.NewEvaluationHandler(evalSvc, handler.UploadLimits{
		MaxFileBytes:      cfg.Evaluation.MaxFileBytes(),
		MaxBundleBytes:    cfg.Evaluation.MaxBundleBytes(),
		MaxArchiveEntries: cfg.Evaluation.MaxArchiveEntries,
	})
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(tokenSvc, evalH, healthH, router.Options{
		Logger:         lg,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	r.MaxMultipartMemory = cfg.Evaluation.MaxBundleBytes()

	server := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		lg.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	lg.Info().Msg("server stopped")
	return nil
}
