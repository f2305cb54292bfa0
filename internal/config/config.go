package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Kafka Kafka `validate:"required"`

	Postgres Postgres `validate:"required"`

	Clients Clients `validate:"required"`

	Breaker Breaker

	Retry Retry
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

type Kafka struct {
	GroupID string   `validate:"required"`
	Brokers []string `validate:"required,min=1,dive,hostname_port"`
	Topic   string   `validate:"required"`

	ReaderMaxWait time.Duration `validate:"gte=0"`
	BatchTimeout  time.Duration `validate:"gte=0"`

	// Дедупликация eventId на стороне консьюмера
	DedupCapacity int           `validate:"gte=1"`
	DedupTTL      time.Duration `validate:"gt=0"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

// Clients - адреса внешних user/product сервисов
type Clients struct {
	UserServiceURL    string        `validate:"required,url"`
	ProductServiceURL string        `validate:"required,url"`
	Timeout           time.Duration `validate:"gt=0"`
}

type Breaker struct {
	WindowSize           int           `validate:"gte=1"`
	FailureRateThreshold float64       `validate:"gt=0,lte=100"`
	MinSamples           int           `validate:"gte=1"`
	Cooldown             time.Duration `validate:"gt=0"`
	HalfOpenMaxProbes    int           `validate:"gte=1"`
}

type Retry struct {
	MaxAttempts  int           `validate:"gte=1"`
	InitialDelay time.Duration `validate:"gt=0"`
	MaxDelay     time.Duration `validate:"gte=0"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Kafka: Kafka{
			GroupID: env("KAFKA_GROUP_ID", "notification-service"),
			Topic:   env("KAFKA_TOPIC", "order-events"),
			Brokers: strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),

			ReaderMaxWait: envDuration("KAFKA_READER_MAX_WAIT", 10*time.Millisecond),
			BatchTimeout:  envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),

			DedupCapacity: envInt("KAFKA_DEDUP_CAPACITY", 10000),
			DedupTTL:      envDuration("KAFKA_DEDUP_TTL", 30*time.Minute),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "orders"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Clients: Clients{
			UserServiceURL:    env("USER_SERVICE_URL", "http://localhost:8081"),
			ProductServiceURL: env("PRODUCT_SERVICE_URL", "http://localhost:8082"),
			Timeout:           envDuration("CLIENT_TIMEOUT", 3*time.Second),
		},

		Breaker: Breaker{
			WindowSize:           envInt("BREAKER_WINDOW_SIZE", 10),
			FailureRateThreshold: envFloat("BREAKER_FAILURE_RATE_THRESHOLD", 50),
			MinSamples:           envInt("BREAKER_MIN_SAMPLES", 5),
			Cooldown:             envDuration("BREAKER_COOLDOWN", 10*time.Second),
			HalfOpenMaxProbes:    envInt("BREAKER_HALF_OPEN_MAX_PROBES", 3),
		},

		Retry: Retry{
			MaxAttempts:  envInt("RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: envDuration("RETRY_INITIAL_DELAY", 100*time.Millisecond),
			MaxDelay:     envDuration("RETRY_MAX_DELAY", time.Second),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
