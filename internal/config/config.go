package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config конфигурация приложения.
// Значения берутся из TOML файла, переменные окружения RANDEVUX_* их переопределяют.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Booking  BookingConfig  `toml:"booking"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"RANDEVUX_HTTP_PORT" env-default:"8080"`
	ReadTimeout     int `toml:"read_timeout" env:"RANDEVUX_READ_TIMEOUT" env-default:"10"`
	WriteTimeout    int `toml:"write_timeout" env:"RANDEVUX_WRITE_TIMEOUT" env-default:"10"`
	IdleTimeout     int `toml:"idle_timeout" env:"RANDEVUX_IDLE_TIMEOUT" env-default:"60"`
	ShutdownTimeout int `toml:"shutdown_timeout" env:"RANDEVUX_SHUTDOWN_TIMEOUT" env-default:"15"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" env:"RANDEVUX_DB_HOST" env-default:"localhost"`
	Port            int    `toml:"port" env:"RANDEVUX_DB_PORT" env-default:"5432"`
	User            string `toml:"user" env:"RANDEVUX_DB_USER"`
	Password        string `toml:"password" env:"RANDEVUX_DB_PASSWORD"`
	DBName          string `toml:"dbname" env:"RANDEVUX_DB_NAME"`
	SSLMode         string `toml:"sslmode" env:"RANDEVUX_DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int    `toml:"max_open_conns" env:"RANDEVUX_DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int    `toml:"max_idle_conns" env:"RANDEVUX_DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" env:"RANDEVUX_DB_CONN_MAX_LIFETIME" env-default:"300"`
}

type LogsConfig struct {
	Level string `toml:"level" env:"RANDEVUX_LOG_LEVEL" env-default:"info"`
	File  string `toml:"file" env:"RANDEVUX_LOG_FILE"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"RANDEVUX_METRICS_ENABLED"`
	Path        string `toml:"path" env:"RANDEVUX_METRICS_PATH" env-default:"/metrics"`
	ServiceName string `toml:"service_name" env:"RANDEVUX_METRICS_SERVICE_NAME" env-default:"booking-service"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled" env:"RANDEVUX_REDIS_ENABLED"`
	Addr     string `toml:"addr" env:"RANDEVUX_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `toml:"password" env:"RANDEVUX_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"RANDEVUX_REDIS_DB"`
}

type KafkaConfig struct {
	Enabled bool     `toml:"enabled" env:"RANDEVUX_KAFKA_ENABLED"`
	Brokers []string `toml:"brokers" env:"RANDEVUX_KAFKA_BROKERS" env-separator:","`
	Topic   string   `toml:"topic" env:"RANDEVUX_KAFKA_TOPIC" env-default:"appointments.events"`
}

type BookingConfig struct {
	LockTTLSeconds       int `toml:"lock_ttl_seconds" env:"RANDEVUX_BOOKING_LOCK_TTL" env-default:"10"`
	NotifyTimeoutSeconds int `toml:"notify_timeout_seconds" env:"RANDEVUX_BOOKING_NOTIFY_TIMEOUT" env-default:"5"`
	// AdvanceBookingDays на сколько дней вперед можно бронировать, 0 - без ограничения
	AdvanceBookingDays int `toml:"advance_booking_days" env:"RANDEVUX_BOOKING_ADVANCE_DAYS"`
}

// Load читает path, затем .env (если есть), затем применяет переменные окружения
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: apply env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("config: invalid server.http_port %d", c.Server.HTTPPort)
	}
	if c.Database.DBName == "" {
		return errors.New("config: database.dbname is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("config: kafka.brokers is required when kafka is enabled")
	}
	if c.Booking.LockTTLSeconds <= 0 {
		return fmt.Errorf("config: invalid booking.lock_ttl_seconds %d", c.Booking.LockTTLSeconds)
	}
	if c.Booking.AdvanceBookingDays < 0 {
		return fmt.Errorf("config: invalid booking.advance_booking_days %d", c.Booking.AdvanceBookingDays)
	}
	return nil
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) NotifyTimeout() time.Duration {
	return time.Duration(b.NotifyTimeoutSeconds) * time.Second
}

// Getenv хелпер для необязательных значений вне структуры конфига
func Getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
