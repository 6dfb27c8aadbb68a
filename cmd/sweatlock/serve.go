package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/sweatlock/sweatlock/internal/api"
	"github.com/sweatlock/sweatlock/internal/app"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/enforce"
	"github.com/sweatlock/sweatlock/internal/metrics"
	"github.com/sweatlock/sweatlock/internal/storage"
	"github.com/sweatlock/sweatlock/internal/storage/bolt"
	"github.com/sweatlock/sweatlock/internal/storage/redis"
	"github.com/sweatlock/sweatlock/internal/systemd"
)

// retentionSweepInterval is how often old daily records are pruned.
const retentionSweepInterval = 24 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SweatLock daemon",
	Long:  `Start the SweatLock daemon with the control API, metrics endpoint, and the tick scheduler driving the access state machine.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting SweatLock")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		return fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	// Initialize storage
	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().
		Str("type", cfg.Storage.Type).
		Str("path", cfg.Storage.Path).
		Msg("Storage initialized")

	// Initialize enforcement hook
	blocker, err := enforce.FromConfig(cfg.Enforce, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize enforcement: %w", err)
	}

	logger.Info().Str("mode", cfg.Enforce.Mode).Msg("Enforcement initialized")

	// Initialize controller and apply the cold-start recovery policy
	controller := app.New(cfg, store, blocker, logger)
	status := controller.Restore(time.Now())

	logger.Info().
		Stringer("state", status.State).
		Str("tier", status.PlanTier).
		Int("targets", len(status.Blocked)+len(status.Accessible)).
		Msg("Controller initialized")

	// Start control API server
	apiAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.APIPort)
	apiServer := api.NewServer(apiAddr, controller, logger)
	if sdListeners.Activated && sdListeners.API != nil {
		apiServer.SetListener(sdListeners.API)
	}
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start control API server: %w", err)
	}

	// Start metrics server
	metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
	metricsServer := metrics.NewServer(metricsAddr, logger)
	if sdListeners.Activated && sdListeners.Metrics != nil {
		metricsServer.SetListener(sdListeners.Metrics)
	}
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	// Prune old history once at startup, then on the sweep interval.
	if deleted, err := controller.PruneHistory(time.Now()); err != nil {
		logger.Warn().Err(err).Msg("Retention sweep failed")
	} else if deleted > 0 {
		logger.Info().Int("deleted", deleted).Msg("Pruned expired usage records")
	}

	logger.Info().Msg("SweatLock startup complete")
	logger.Info().Msgf("Control API: http://%s/api/v1/status", apiAddr)
	logger.Info().Msgf("Metrics: http://%s/metrics", metricsAddr)

	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd")
	}

	// The tick scheduler is the only writer advancing time.
	ticker := time.NewTicker(cfg.Engine.TickIntervalDuration())
	defer ticker.Stop()

	sweep := time.NewTicker(retentionSweepInterval)
	defer sweep.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case now := <-ticker.C:
			controller.Tick(now)

		case now := <-sweep.C:
			if deleted, err := controller.PruneHistory(now); err != nil {
				logger.Warn().Err(err).Msg("Retention sweep failed")
			} else if deleted > 0 {
				logger.Info().Int("deleted", deleted).Msg("Pruned expired usage records")
			}

		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received, gracefully stopping...")

			if err := systemd.NotifyStopping(); err != nil {
				logger.Warn().Err(err).Msg("Failed to notify systemd")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := apiServer.Stop(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Error stopping control API server")
			}
			cancel()

			if err := metricsServer.Stop(); err != nil {
				logger.Error().Err(err).Msg("Error stopping metrics server")
			}

			logger.Info().Msg("SweatLock stopped")
			return nil
		}
	}
}

// openStorage opens the configured storage backend.
func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
