package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	envPrefix = "SMC"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Storage        StorageConfig        `toml:"storage"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Tracing        TracingConfig        `toml:"tracing"`
	CatalogService CatalogServiceConfig `toml:"catalog_service"`
	Notifications  NotificationsConfig  `toml:"notifications"`
	SlotCache      SlotCacheConfig      `toml:"slot_cache"`
	Scheduling     SchedulingConfig     `toml:"scheduling"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// StorageConfig выбор хранилища бронирований
type StorageConfig struct {
	Driver string `toml:"driver"` // postgres | memory
}

// DatabaseConfig настройки PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// TracingConfig настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"` // host:port OTLP gRPC
	SampleRatio float64 `toml:"sample_ratio"`
}

// CatalogServiceConfig настройки клиента каталога
type CatalogServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// NotificationsConfig настройки публикации событий в Kafka
type NotificationsConfig struct {
	Enabled      bool   `toml:"enabled"`
	Brokers      string `toml:"brokers"` // через запятую
	TopicPrefix  string `toml:"topic_prefix"`
	WriteTimeout int    `toml:"write_timeout"` // секунды
	SendTimeout  int    `toml:"send_timeout"`  // секунды, на одно событие
}

// SlotCacheConfig настройки кэша слотов в Redis
type SlotCacheConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	TTL       int    `toml:"ttl"` // секунды
	KeyPrefix string `toml:"key_prefix"`
}

// SchedulingConfig настройки повторов транзакций бронирования
type SchedulingConfig struct {
	RetryMaxTries          uint `toml:"retry_max_tries"`
	RetryInitialIntervalMs int  `toml:"retry_initial_interval_ms"`
	RetryMaxIntervalMs     int  `toml:"retry_max_interval_ms"`
}

// envOverrides переменные окружения с префиксом SMC_, перекрывают значения из файла
type envOverrides struct {
	HTTPPort      int    `envconfig:"HTTP_PORT"`
	StorageDriver string `envconfig:"STORAGE_DRIVER"`
	DBHost        string `envconfig:"DB_HOST"`
	DBPort        int    `envconfig:"DB_PORT"`
	DBUser        string `envconfig:"DB_USER"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	CatalogURL    string `envconfig:"CATALOG_URL"`
	KafkaBrokers  string `envconfig:"KAFKA_BROKERS"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	OTLPEndpoint  string `envconfig:"OTLP_ENDPOINT"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8083,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "smc_scheduling",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc-schedulingservice",
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			SampleRatio: 1,
		},
		CatalogService: CatalogServiceConfig{
			URL:     "http://localhost:8081",
			Timeout: 5,
		},
		Notifications: NotificationsConfig{
			Brokers:      "localhost:9092",
			TopicPrefix:  "scheduling.",
			WriteTimeout: 5,
			SendTimeout:  5,
		},
		SlotCache: SlotCacheConfig{
			Addr:      "localhost:6379",
			TTL:       60,
			KeyPrefix: "smc:slots",
		},
		Scheduling: SchedulingConfig{
			RetryMaxTries:          2,
			RetryInitialIntervalMs: 50,
			RetryMaxIntervalMs:     500,
		},
	}
}

// Load читает конфигурацию из TOML файла и применяет переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	// 1. Файл конфигурации
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	// 2. Переменные окружения
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.applyEnv(env)

	// 3. Валидация
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	setInt(&c.Server.HTTPPort, env.HTTPPort)
	setString(&c.Storage.Driver, env.StorageDriver)
	setString(&c.Database.Host, env.DBHost)
	setInt(&c.Database.Port, env.DBPort)
	setString(&c.Database.User, env.DBUser)
	setString(&c.Database.Password, env.DBPassword)
	setString(&c.Database.DBName, env.DBName)
	setString(&c.Logs.Level, env.LogLevel)
	setString(&c.CatalogService.URL, env.CatalogURL)
	setString(&c.Notifications.Brokers, env.KafkaBrokers)
	setString(&c.SlotCache.Addr, env.RedisAddr)
	setString(&c.SlotCache.Password, env.RedisPassword)
	setString(&c.Tracing.Endpoint, env.OTLPEndpoint)
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.CatalogService.URL == "" {
		return fmt.Errorf("%w: catalog_service.url is required", ErrInvalidConfig)
	}
	if c.CatalogService.Timeout <= 0 {
		return fmt.Errorf("%w: catalog_service.timeout must be positive", ErrInvalidConfig)
	}

	if c.Notifications.Enabled && strings.TrimSpace(c.Notifications.Brokers) == "" {
		return fmt.Errorf("%w: notifications.brokers is required when notifications are enabled", ErrInvalidConfig)
	}

	if c.SlotCache.Enabled {
		if c.SlotCache.Addr == "" {
			return fmt.Errorf("%w: slot_cache.addr is required when the cache is enabled", ErrInvalidConfig)
		}
		if c.SlotCache.TTL <= 0 {
			return fmt.Errorf("%w: slot_cache.ttl must be positive", ErrInvalidConfig)
		}
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: tracing.sample_ratio must be in [0, 1]", ErrInvalidConfig)
	}

	if c.Scheduling.RetryMaxTries == 0 {
		return fmt.Errorf("%w: scheduling.retry_max_tries must be at least 1", ErrInvalidConfig)
	}
	if c.Scheduling.RetryInitialIntervalMs <= 0 || c.Scheduling.RetryMaxIntervalMs < c.Scheduling.RetryInitialIntervalMs {
		return fmt.Errorf("%w: scheduling retry intervals are inconsistent", ErrInvalidConfig)
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
