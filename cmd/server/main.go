package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/app"
	"github.com/Freeeeeet/coach_booking/internal/config"
	"github.com/Freeeeeet/coach_booking/internal/controller/httpapi"
	"github.com/Freeeeeet/coach_booking/internal/controller/telegram"
	"github.com/Freeeeeet/coach_booking/internal/events"
	"github.com/Freeeeeet/coach_booking/internal/lock"
	"github.com/Freeeeeet/coach_booking/internal/repository"
	"github.com/Freeeeeet/coach_booking/internal/repository/base"
	"github.com/Freeeeeet/coach_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting coach booking service",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Location.String()),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	// Подключаемся к базе
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	// Применяем миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		return err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	policy, err := service.ParseCancellationPolicy(cfg.CancellationMode, cfg.CancellationNotice)
	if err != nil {
		return err
	}

	// Репозитории
	txManager := base.NewTxManager(pool)
	templateRepo := repository.NewAvailabilityRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool)
	contactRepo := repository.NewContactRepository(pool)

	locker, closeLocker := newLocker(ctx, cfg, logger)
	defer closeLocker()

	// Сервисы
	availabilityService := service.NewAvailabilityService(templateRepo, bookingRepo, cfg.Location, logger)
	subscriptionService := service.NewSubscriptionService(txManager, subscriptionRepo, outboxRepo, locker, cfg.Location, logger)
	bookingService := service.NewBookingService(
		txManager,
		bookingRepo,
		subscriptionRepo,
		outboxRepo,
		locker,
		service.BookingSettings{
			Location:     cfg.Location,
			LockTTL:      cfg.BookingLockTTL,
			Cancellation: policy,
		},
		logger,
	)

	// Публикация событий outbox
	var publishers, notifiers []events.Publisher

	if len(events.SplitBrokers(cfg.KafkaBrokers)) > 0 {
		writer := events.NewKafkaWriter(cfg.KafkaBrokers)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Warn("Failed to close kafka writer", zap.Error(err))
			}
		}()
		publishers = append(publishers, events.NewKafkaPublisher(writer, cfg.KafkaTopicPrefix))
		logger.Info("Kafka publisher enabled", zap.String("brokers", cfg.KafkaBrokers))
	}

	if cfg.TelegramToken != "" {
		linkBot := telegram.NewLinkBot(logger)
		b, err := bot.New(cfg.TelegramToken, bot.WithDefaultHandler(linkBot.DefaultHandler))
		if err != nil {
			return err
		}
		linkBot.RegisterHandlers(b)
		go b.Start(ctx)

		notifiers = append(notifiers, events.NewTelegramNotifier(b, contactRepo, cfg.Location, logger))
		logger.Info("Telegram notifier enabled")
	}

	if len(publishers) == 0 && len(notifiers) == 0 {
		logger.Warn("No event publishers configured, outbox events will accumulate")
	} else {
		relay := events.NewRelay(txManager, outboxRepo, cfg.OutboxBatchSize, logger, publishers...).
			WithNotifiers(notifiers...)
		scheduler := app.NewScheduler(relay, cfg.OutboxPollInterval, logger)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	// HTTP сервер
	handler := httpapi.NewHandler(availabilityService, bookingService, subscriptionService, contactRepo, logger)
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handler.Router(httpapi.Options{
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			CORSOrigins:        cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Service stopped")
	return nil
}

// newLocker использует Redis, если он настроен, иначе блокировку в памяти процесса
func newLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Locker, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR is not set, booking locks are local to this process")
		return lock.NewLocalLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unreachable, falling back to local booking locks", zap.Error(err))
		_ = client.Close()
		return lock.NewLocalLocker(), func() {}
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	return lock.NewRedisLocker(client, "coach-booking:", logger), closeFn
}
