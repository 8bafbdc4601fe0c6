package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/api"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/database"
	"github.com/user-directory-api/internal/directory"
	"github.com/user-directory-api/internal/repository"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/pkg/logger"
)

const sweepInterval = time.Minute

func main() {
	// A missing .env is fine; the environment may be set directly
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting User Directory server...")
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("Failed to read .env file")
	}

	// Initialize snapshot storage
	repo, checks, closeStore := openStorage(cfg, log)
	defer closeStore()

	// Session registry with background sweeper
	registry := directory.NewRegistry(repo, cfg.Storage.SessionTTL, log)
	registry.StartSweeper(context.Background(), sweepInterval)

	// Initialize services
	services := service.NewServices(registry, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log, checks...)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop session sweeper
	registry.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// openStorage returns the snapshot repository for the configured driver
func openStorage(cfg *config.Config, log zerolog.Logger) (repository.SnapshotRepository, []api.HealthCheck, func()) {
	if cfg.Storage.Driver != config.DriverPostgres {
		log.Info().Msg("Using in-memory session storage")
		return repository.NewMemory(), nil, func() {}
	}

	// Initialize database
	db, err := database.New(&cfg.Storage.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Storage.MigrationsPath); err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	return repository.NewSnapshotRepo(db), []api.HealthCheck{db.HealthCheck}, func() { db.Close() }
}
