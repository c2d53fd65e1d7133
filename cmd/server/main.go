package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"salonbook/internal/api"
	"salonbook/internal/config"
	"salonbook/internal/database"
	"salonbook/internal/events"
	"salonbook/internal/export"
	"salonbook/internal/logging"
	"salonbook/internal/metrics"
	"salonbook/internal/repository"
	"salonbook/internal/service"
	"salonbook/internal/wizard"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("database init failed")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedProviders(ctx, db, cfg.Providers, &logger); err != nil {
		return err
	}

	redisClient, stateRepo := initStateRepository(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	metrics.Register()

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	bookingService := service.NewBookingService(
		db, db, db, eventBus,
		cfg.Booking.StepMinutes,
		cfg.Booking.MaxBookingDays,
		cfg.Booking.MinAdvanceMinutes,
		time.Duration(cfg.Booking.StoreTimeoutSeconds)*time.Second,
		&logger,
	)
	catalogService := service.NewCatalogService(db, &logger)
	wizardController := wizard.NewController(stateRepo, bookingService, db, &logger)
	exporter := export.NewExporter(bookingService, cfg.Exports.Path)

	apiServer := api.NewHTTPServer(cfg.API, bookingService, catalogService, wizardController, exporter, stateRepo, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
		}
	}()

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	logger.Info().Msg("salonbook started")
	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("cannot create database directory")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("cannot create exports directory")
			return err
		}
	}
	return nil
}

// seedProviders loads provider schedules and services from the config so
// a fresh deployment is bookable without an admin UI.
func seedProviders(ctx context.Context, db *database.DB, providers []config.ProviderSeed, logger *zerolog.Logger) error {
	for _, p := range providers {
		if len(p.Schedule.Days) > 0 {
			schedule := p.Schedule
			if err := db.SaveWeeklySchedule(ctx, p.ID, &schedule); err != nil {
				logger.Error().Err(err).Str("provider_id", p.ID).Msg("schedule seed failed")
				return err
			}
		}
		for i := range p.Services {
			svc := p.Services[i]
			svc.ProviderID = p.ID
			if err := db.UpsertService(ctx, &svc); err != nil {
				logger.Error().Err(err).Str("provider_id", p.ID).Str("service", svc.Name).Msg("service seed failed")
				return err
			}
		}
		logger.Info().Str("provider_id", p.ID).Int("services", len(p.Services)).Msg("provider seeded")
	}
	return nil
}

func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverStateRepository) {
	ttl := time.Duration(cfg.Booking.SessionTTLSeconds) * time.Second
	fallback := repository.NewMemoryStateRepository(ttl)

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, sessions fall back to memory")
		}
	}

	primary := repository.NewRedisStateRepository(redisClient, ttl)
	return redisClient, repository.NewFailoverStateRepository(primary, fallback, logger)
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			var payload events.BookingEventPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				return err
			}
			logger.Info().
				Str("event", event.Type).
				Str("booking_id", payload.BookingID).
				Str("provider_id", payload.ProviderID).
				Str("status", payload.Status).
				Msg("booking event")
			return nil
		})
	}
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
