package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stolik/internal/api"
	"stolik/internal/config"
	"stolik/internal/database"
	"stolik/internal/domain"
	"stolik/internal/events"
	"stolik/internal/logging"
	"stolik/internal/metrics"
	"stolik/internal/models"
	"stolik/internal/notify"
	"stolik/internal/repository"
	"stolik/internal/service"
	"stolik/internal/sheets"
	"stolik/internal/worker"

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
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, cfg.Restaurant.Tables, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	slotCache := initSlotCache(redisClient, &logger)

	telegram, err := notify.NewTelegramClient(
		cfg.Telegram.BotToken,
		time.Duration(cfg.Notifications.TimeoutSeconds)*time.Second,
		&logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("init telegram client")
		return err
	}

	dispatcher := worker.NewDispatcher(
		telegram,
		redisClient,
		worker.RetryPolicy{MaxRetries: cfg.Notifications.MaxRetries},
		cfg.Notifications.QueueSize,
		&logger,
	)
	go dispatcher.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, cfg, dispatcher, telegram, &logger)

	bookingService := service.NewBookingService(db, slotCache, eventBus, cfg.Restaurant, &logger)
	httpServer := api.NewHTTPServer(cfg, bookingService, db, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, dispatcher, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("create exports directory")
			return err
		}
	}
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSlotCache(redisClient *redis.Client, logger *zerolog.Logger) domain.SlotCache {
	ttl := time.Duration(models.DefaultSlotCacheTTL) * time.Second
	fallback := repository.NewMemorySlotCache(ttl)
	if redisClient == nil {
		return fallback
	}
	primary := repository.NewRedisSlotCache(redisClient, ttl)
	return repository.NewFailoverSlotCache(primary, fallback, logger)
}

func subscribeBookingEvents(
	bus *events.EventBus,
	cfg *config.Config,
	dispatcher *worker.Dispatcher,
	telegram *notify.TelegramClient,
	logger *zerolog.Logger,
) {
	adminChatID, hasAdmin := cfg.Telegram.AdminChat()
	if telegram.Enabled() && !hasAdmin {
		logger.Warn().Msg("admin chat id is not set, admin notifications disabled")
	}

	bookingSub := notify.NewBookingSubscriber(dispatcher, adminChatID, hasAdmin, telegram.Enabled(), logger)
	bus.Subscribe(events.EventBookingCreated, bookingSub.Handle)

	if cfg.Google.CredentialsFile != "" && cfg.Google.BookingSpreadsheetID != "" {
		ledger, err := sheets.NewLedger(
			context.Background(),
			cfg.Google.CredentialsFile,
			cfg.Google.BookingSpreadsheetID,
			cfg.Google.BookingSheetName,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("google sheets init failed, continuing without ledger")
			return
		}
		ledgerSub := sheets.NewLedgerSubscriber(ledger, 30*time.Second, logger)
		bus.Subscribe(events.EventBookingCreated, ledgerSub.Handle)
		logger.Info().Msg("google sheets ledger connected")
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, dispatcher *worker.Dispatcher, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	// Даем диспетчеру дослать уже поставленные в очередь уведомления
	select {
	case <-dispatcher.Stopped():
	case <-shutdownCtx.Done():
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
