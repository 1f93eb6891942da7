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

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/database"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/handler"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/middleware"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/router"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/jobs"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/logger"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Full configuration with secrets: environment variables in development,
	// Azure Key Vault when enabled
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sourceStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := repository.NewStore(db)
	orchestrator := pipeline.NewOrchestrator(store, sourceStorage, cfg.Pipeline, log,
		pipeline.WithMetrics(pipeline.NewMetrics(registry)),
	)

	// Services
	jwtValidator := auth.NewJWTValidator(cfg.Auth.JWTSecret)
	classifier := service.NewClassifier(&cfg.Classifier, log)
	catalogService := service.NewCatalogService(store.Segments, store.Vehicles, log)
	customerService := service.NewCustomerService(store.Customers, classifier, log)
	saleService := service.NewSaleService(store.Sales, log)
	dashboardService := service.NewDashboardService(store.Persons, store.Customers, log)
	pipelineService := service.NewPipelineService(orchestrator, sourceStorage, cfg.Pipeline, cfg.Storage.MaxUploadSizeMB, log)
	authService := service.NewAuthService(store.Persons, store.StaffUsers, jwtValidator, service.DefaultTokenTTL, log)

	if cfg.Auth.JWTSecret == "" {
		log.Warn("No JWT secret configured, bearer authentication is disabled")
	}

	rt := router.NewRouter(
		cfg,
		log,
		db,
		auth.NewMiddleware(&cfg.Auth, jwtValidator, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		middleware.NewHTTPMetrics(registry),
		registry,
		router.Handlers{
			Catalog:   handler.NewCatalogHandler(catalogService, log),
			Customer:  handler.NewCustomerHandler(customerService, log),
			Sale:      handler.NewSaleHandler(saleService, log),
			Dashboard: handler.NewDashboardHandler(dashboardService, log),
			Pipeline:  handler.NewPipelineHandler(pipelineService, cfg.Storage.MaxUploadSizeMB, log),
			Auth:      handler.NewAuthHandler(authService, log),
		},
	)

	// Scheduled repopulation
	var scheduler *jobs.Scheduler
	if cfg.Pipeline.Schedule != "" {
		scheduler = jobs.NewScheduler(log)
		job := jobs.NewRepopulateJob(orchestrator, log, cfg.Pipeline.TimeoutDuration())
		if _, err := jobs.RegisterRepopulateJob(scheduler, cfg.Pipeline.Schedule, job); err != nil {
			return fmt.Errorf("failed to register repopulate job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started with repopulate job",
			zap.String("cron_expr", cfg.Pipeline.Schedule),
			zap.Duration("timeout", cfg.Pipeline.TimeoutDuration()),
		)
	} else {
		log.Info("Scheduled repopulation disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
