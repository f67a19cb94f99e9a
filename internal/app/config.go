package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/factdeck-backend/internal/data/db"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/envutil"
)

type RedisConfig struct {
	Addr         string `yaml:"addr"`
	AlertChannel string `yaml:"alert_channel"`
}

type WorkerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Concurrency  int           `yaml:"concurrency"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
}

type Config struct {
	Port           string                   `yaml:"port"`
	LogMode        string                   `yaml:"log_mode"`
	LogLevel       string                   `yaml:"log_level"`
	JWTSecretKey   string                   `yaml:"jwt_secret_key"`
	AccessTokenTTL time.Duration            `yaml:"access_token_ttl"`
	AllowedOrigins []string                 `yaml:"allowed_origins"`
	Postgres       db.PostgresConfig        `yaml:"postgres"`
	Redis          RedisConfig              `yaml:"redis"`
	Worker         WorkerConfig             `yaml:"worker"`
	Otel           observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		Port:           "8080",
		LogMode:        "development",
		LogLevel:       "info",
		JWTSecretKey:   "defaultsecret",
		AccessTokenTTL: time.Hour,
		Postgres: db.PostgresConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "factdeck",
			SSLMode: "disable",
		},
		Redis:  RedisConfig{AlertChannel: "factdeck:alerts"},
		Worker: WorkerConfig{Enabled: true, Concurrency: 4, PollInterval: time.Second, MaxAttempts: 5},
		Otel:   observability.OtelConfig{ServiceName: "factdeck-backend", SampleRatio: 1},
	}
}

// LoadConfig starts from defaults, applies the YAML file named by CONFIG_FILE (if any),
// then lets environment variables override individual keys.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.LogLevel = envutil.String("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.AccessTokenTTL = envutil.Duration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	if origins := envutil.String("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envutil.String("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.AlertChannel = envutil.String("REDIS_ALERT_CHANNEL", cfg.Redis.AlertChannel)

	cfg.Worker.Enabled = envutil.Bool("WORKER_ENABLED", cfg.Worker.Enabled)
	cfg.Worker.Concurrency = envutil.Int("WORKER_CONCURRENCY", cfg.Worker.Concurrency)
	cfg.Worker.PollInterval = envutil.Duration("WORKER_POLL_INTERVAL", cfg.Worker.PollInterval)
	cfg.Worker.MaxAttempts = envutil.Int("WORKER_MAX_ATTEMPTS", cfg.Worker.MaxAttempts)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Version = envutil.String("OTEL_SERVICE_VERSION", cfg.Otel.Version)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("jwt_secret_key must not be empty")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access_token_ttl must be positive")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be at least 1")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
