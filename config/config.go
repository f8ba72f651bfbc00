package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging/redis"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/worker"
)

// EnvPrefix prefixes every environment override, e.g. MAW3ID_SERVER_PORT.
const EnvPrefix = "MAW3ID"

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" split_words:"true"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" split_words:"true"`
	AutoMigrate  bool   `mapstructure:"auto_migrate" split_words:"true"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" split_words:"true"`
	// WorkerHealthPort serves /health and /metrics for cmd/worker.
	WorkerHealthPort int `mapstructure:"worker_health_port" split_words:"true"`
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `mapstructure:"driver"`
	// SeedFile optionally names a tenant seed applied at startup. The memory
	// driver starts empty without one.
	SeedFile string `mapstructure:"seed_file" split_words:"true"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Channel      string        `mapstructure:"channel"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type BookingConfig struct {
	SlotStepMinutes      int           `mapstructure:"slot_step_minutes" split_words:"true"`
	MaxAdvanceDays       int           `mapstructure:"max_advance_days" split_words:"true"`
	// AvailabilityCacheTTL of zero disables the availability cache.
	AvailabilityCacheTTL time.Duration `mapstructure:"availability_cache_ttl" envconfig:"AVAILABILITY_CACHE_TTL"`
}

func (c BookingConfig) SlotStep() time.Duration {
	return time.Duration(c.SlotStepMinutes) * time.Minute
}

type OutboxConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BatchSize       int           `mapstructure:"batch_size" split_words:"true"`
	PollInterval    time.Duration `mapstructure:"poll_interval" split_words:"true"`
	RetryAttempts   int           `mapstructure:"retry_attempts" split_words:"true"`
	RetryDelay      time.Duration `mapstructure:"retry_delay" split_words:"true"`
	MaxDeliveries   int           `mapstructure:"max_deliveries" split_words:"true"`
	RetentionPeriod time.Duration `mapstructure:"retention_period" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" split_words:"true"`
}

// SMTPConfig leaves Host empty to log notifications instead of sending them.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled" split_words:"true"`
	MetricsPath       string `mapstructure:"metrics_path" split_words:"true"`
	Namespace         string `mapstructure:"namespace"`
}

type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Booking    BookingConfig    `mapstructure:"booking"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" split_words:"true"`
	CORS       CORSConfig       `mapstructure:"cors"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.worker_health_port", 8081)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "maw3id")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("redis.channel", "appointments")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("jwt.issuer", "maw3id")

	v.SetDefault("booking.slot_step_minutes", 30)
	v.SetDefault("booking.max_advance_days", 90)
	v.SetDefault("booking.availability_cache_ttl", 30*time.Second)

	v.SetDefault("outbox.enabled", true)
	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 200*time.Millisecond)
	v.SetDefault("outbox.max_deliveries", 5)
	v.SetDefault("outbox.retention_period", 7*24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("smtp.port", 587)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.namespace", "maw3id")
}

// LoadConfig reads config.yml (or the file named by CONFIG_FILE), then
// applies MAW3ID_* environment overrides. A missing config file is not an
// error; defaults apply.
func LoadConfig() (*Config, error) {
	// .env is optional and only seeds the process environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Booking.SlotStepMinutes <= 0 {
		return fmt.Errorf("booking.slot_step_minutes must be positive")
	}
	if c.Booking.MaxAdvanceDays <= 0 {
		return fmt.Errorf("booking.max_advance_days must be positive")
	}
	if c.Outbox.Enabled && (c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0) {
		return fmt.Errorf("outbox batch_size and poll_interval must be positive")
	}
	return nil
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
		MaxDeliveries: c.MaxDeliveries,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
