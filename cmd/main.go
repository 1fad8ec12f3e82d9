package main

// @title        Tornamate API
// @version      1.0
// @description  Tournament fixtures, live scoring and standings.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/quanpsy/tornamate/config"
	"github.com/quanpsy/tornamate/db"
	"github.com/quanpsy/tornamate/handlers"
	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/metrics"
	"github.com/quanpsy/tornamate/realtime"
	"github.com/quanpsy/tornamate/repositories"
	api "github.com/quanpsy/tornamate/routes"
	"github.com/quanpsy/tornamate/scheduler"
	"github.com/quanpsy/tornamate/services"
	"github.com/quanpsy/tornamate/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewJSON(level)
	defer func() { _ = logger.Sync() }()
	zap.RedirectStdLog(logger.Zap())
	logger.Info("configuration loaded", "port", cfg.ServerPort, "snapshots_enabled", cfg.R2 != nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	applied, err := db.MigrateUp(dbConn)
	if err != nil {
		return err
	}
	if version, dirty, ok, err := db.Version(dbConn); err == nil && ok {
		logger.Info("database schema ready", "version", version, "dirty", dirty, "migrated", applied)
	}

	var uploader storage.FileUploader
	if cfg.R2 != nil {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", "bucket", cfg.R2.BucketName)
	}

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	instruments := metrics.New(prometheus.NewRegistry())
	instruments.ObserveClients(hub.TotalClients)
	notifier := instruments.CountPublished(hub)

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	transactor := db.NewTransactor(dbConn)
	locks := services.NewKeyedMutex()

	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, matchRepo, transactor, locks, notifier, nil, logger)
	snapshotService := services.NewSnapshotService(tournamentService, uploader, nil, logger)
	matchService := services.NewMatchService(tournamentRepo, teamRepo, matchRepo, transactor, locks, notifier, snapshotService, nil, logger)

	autoStart, err := scheduler.New(tournamentService, cfg.SchedulerInterval, nil, logger)
	if err != nil {
		return err
	}
	if err := autoStart.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := autoStart.Stop(); err != nil {
			logger.Error("scheduler shutdown failed", "error", err)
		}
	}()

	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
			Metrics:        instruments,
		},
		handlers.NewTournamentHandler(tournamentService, matchService, snapshotService, logger),
		handlers.NewMatchHandler(matchService, logger),
		handlers.NewWebSocketHandler(hub, tournamentService, cfg.CORSAllowedOrigins, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(logger.Zap()),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", "error", closeErr)
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
