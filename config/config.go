package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Otel     OtelConfig
	Sync     SyncConfig
	Alert    AlertConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
	// StoreDriver selects the persistence backend: postgres or memory.
	StoreDriver string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	AlertsTopic   string
	ReceiptsTopic string
	GroupID       string
}

type OtelConfig struct {
	Enabled        bool
	Endpoint       string
	AuthHeader     string
	ServiceName    string
	ServiceVersion string
}

type SyncConfig struct {
	PullPageSize   int
	MaxPushRecords int
	PullOverlap    time.Duration
	LockTTL        time.Duration
	LockRetries    int
	LockRetryDelay time.Duration
}

type AlertConfig struct {
	DedupeWindow time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:      getEnv("APP_ENV", "dev"),
			GRPCPort:    getEnv("GRPC_PORT", ":8083"),
			StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_inventory"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", true),
			Brokers:       getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			AlertsTopic:   getEnv("KAFKA_TOPIC_ALERTS", "inventory.alerts"),
			ReceiptsTopic: getEnv("KAFKA_TOPIC_RECEIPTS", "purchase-orders.events"),
			GroupID:       getEnv("KAFKA_GROUP_INVENTORY", "inventory"),
		},
		Otel: OtelConfig{
			Enabled:        getEnvBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			AuthHeader:     getEnv("OTEL_EXPORTER_OTLP_AUTH", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "omnipos-inventory-service"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Sync: SyncConfig{
			PullPageSize:   getEnvInt("SYNC_PULL_PAGE_SIZE", 500),
			MaxPushRecords: getEnvInt("SYNC_MAX_PUSH_RECORDS", 500),
			PullOverlap:    getEnvDuration("SYNC_PULL_OVERLAP", 2*time.Second),
			LockTTL:        getEnvDuration("SYNC_LOCK_TTL", 60*time.Second),
			LockRetries:    getEnvInt("SYNC_LOCK_RETRIES", 3),
			LockRetryDelay: getEnvDuration("SYNC_LOCK_RETRY_DELAY", 100*time.Millisecond),
		},
		Alert: AlertConfig{
			DedupeWindow: getEnvDuration("ALERT_DEDUPE_WINDOW", time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings such as 500ms or 2m.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
