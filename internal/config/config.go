package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Stream    StreamConfig
	Inventory InventoryConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s Timezone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CacheConfig struct {
	// Prefix is the leading segment of every cache key,
	// i.e. {Prefix}:{namespace}[:{id}].
	Prefix string
	TTL    time.Duration
}

type StreamConfig struct {
	OrderCompletedStream string
	RefundOrderStream    string
	InventoryGroup       string
	PaymentGroup         string
	ConsumerName         string
	// BlockTimeout bounds each XREADGROUP call so the loop can
	// observe shutdown between reads.
	BlockTimeout time.Duration
	IdleBackoff  time.Duration
}

// InventoryConfig locates the peer inventory service. The payment
// service validates stock against it over HTTP before accepting an order.
type InventoryConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ProcessingConfig tunes the order completion workers.
type ProcessingConfig struct {
	Delay      time.Duration
	BufferSize int
	Workers    int
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "fastcart"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Name:            getEnv("POSTGRES_DATABASE", "postgres"),
			User:            getEnv("POSTGRES_USERNAME", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", ""),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("POSTGRES_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 5*time.Second),
		},
		Cache: CacheConfig{
			Prefix: getEnv("CACHE_PREFIX", "fastcart-cache"),
			TTL:    getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
		Stream: StreamConfig{
			OrderCompletedStream: getEnv("STREAM_ORDER_COMPLETED", "order_completed"),
			RefundOrderStream:    getEnv("STREAM_REFUND_ORDER", "refund_order"),
			InventoryGroup:       getEnv("STREAM_INVENTORY_GROUP", "inventory_group"),
			PaymentGroup:         getEnv("STREAM_PAYMENT_GROUP", "payment_group"),
			ConsumerName:         getEnv("STREAM_CONSUMER_NAME", hostnameOr("consumer-1")),
			BlockTimeout:         getEnvDuration("STREAM_BLOCK_TIMEOUT", 3*time.Second),
			IdleBackoff:          getEnvDuration("STREAM_IDLE_BACKOFF", time.Second),
		},
		Inventory: InventoryConfig{
			BaseURL:        getEnv("INVENTORY_BASE_URL", "http://localhost:8080"),
			RequestTimeout: getEnvDuration("INVENTORY_REQUEST_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "fastcart"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadProcessing reads the completion worker settings. Kept out of Load
// because only the payment service runs the worker.
func LoadProcessing() ProcessingConfig {
	return ProcessingConfig{
		Delay:      getEnvDuration("ORDER_PROCESSING_DELAY", 5*time.Second),
		BufferSize: getEnvInt("ORDER_PROCESSING_BUFFER", 1024),
		Workers:    getEnvInt("ORDER_PROCESSING_WORKERS", 8),
	}
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Database.Password == "" && cfg.App.Environment == "production" {
		errs = append(errs, "POSTGRES_PASSWORD is required in production")
	}

	if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
		errs = append(errs, "POSTGRES_SSLMODE=disable is not allowed in production")
	}

	if cfg.Cache.Prefix == "" {
		errs = append(errs, "CACHE_PREFIX must not be empty")
	}

	if cfg.Stream.OrderCompletedStream == cfg.Stream.RefundOrderStream {
		errs = append(errs, "STREAM_ORDER_COMPLETED and STREAM_REFUND_ORDER must differ")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func hostnameOr(fallback string) string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
