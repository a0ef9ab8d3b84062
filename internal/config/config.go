package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	LogLevel       string // пусто: уровень по умолчанию для окружения
	HTTPAddr       string
	Location       *time.Location
	MigrationsPath string

	RedisAddr      string
	BookingLockTTL time.Duration

	KafkaBrokers     string // список через запятую
	KafkaTopicPrefix string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	TelegramToken string

	CancellationMode   string
	CancellationNotice time.Duration

	RateLimitPerMinute int
	CORSOrigins        []string
}

// Load читает конфигурацию из окружения. Файл .env необязателен.
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load(".env")

	return FromEnv()
}

// FromEnv собирает Config из переменных окружения без чтения .env
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:            os.Getenv("DB_DSN"),
		Environment:      getString("ENV", "development"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		HTTPAddr:         getString("HTTP_ADDR", ":8080"),
		MigrationsPath:   getString("MIGRATIONS_PATH", "migrations"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		KafkaBrokers:     strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: getString("KAFKA_TOPIC_PREFIX", "coach-booking."),
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		CancellationMode: os.Getenv("CANCELLATION_MODE"),
		CORSOrigins:      splitList(getString("CORS_ORIGINS", "*")),
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required but not set")
	}

	loc, err := time.LoadLocation(getString("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE: %w", err)
	}
	cfg.Location = loc

	var errs []error
	cfg.BookingLockTTL = getDuration("BOOKING_LOCK_TTL", 10*time.Second, &errs)
	cfg.OutboxPollInterval = getDuration("OUTBOX_POLL_INTERVAL", 2*time.Second, &errs)
	cfg.CancellationNotice = getDuration("CANCELLATION_NOTICE", 24*time.Hour, &errs)
	cfg.OutboxBatchSize = getInt("OUTBOX_BATCH_SIZE", 50, &errs)
	cfg.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MINUTE", 60, &errs)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction проверяет окружение
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: expected positive duration", key, raw))
		return def
	}
	return d
}

func getInt(key string, def int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: expected positive integer", key, raw))
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
