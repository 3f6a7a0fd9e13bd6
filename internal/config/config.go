package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Политики удаления задач
const (
	DeletePolicyClose = "close" // задача переводится в CLOSED
	DeletePolicyPurge = "purge" // запись задачи удаляется физически
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig   // Настройки HTTP сервера
	Database DatabaseConfig // Настройки подключения к БД
	JWT      JWTConfig      // Настройки JWT авторизации
	Storage  StorageConfig  // Выбор хранилища
	Tasks    TaskConfig     // Политики жизненного цикла задач
	Teams    TeamConfig     // Настройки команд
	LogLevel string         `envconfig:"LOG_LEVEL" default:"info"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"taskmanager"`
	Password string `envconfig:"DB_PASSWORD" default:"taskmanager_pass"`
	Name     string `envconfig:"DB_NAME" default:"taskmanager"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
}

// JWTConfig содержит настройки JWT авторизации
type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET" required:"true"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
}

// StorageConfig определяет, где хранятся записи
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
}

// TaskConfig содержит политики для задач
type TaskConfig struct {
	DeletePolicy string `envconfig:"TASK_DELETE_POLICY" default:"close"`
}

// TeamConfig содержит настройки генерации кодов приглашения
type TeamConfig struct {
	JoinCodeLength      int `envconfig:"JOIN_CODE_LENGTH" default:"6"`
	JoinCodeMaxAttempts int `envconfig:"JOIN_CODE_MAX_ATTEMPTS" default:"0"` // 0 - без ограничения
}

// GetExpiration возвращает срок действия токена как time.Duration
func (j JWTConfig) GetExpiration() time.Duration {
	return time.Duration(j.ExpirationHours) * time.Hour
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SlogLevel переводит LOG_LEVEL в уровень slog
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate проверяет значения, которые envconfig не может проверить сам
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Tasks.DeletePolicy {
	case DeletePolicyClose, DeletePolicyPurge:
	default:
		return fmt.Errorf("unknown task delete policy %q", c.Tasks.DeletePolicy)
	}

	if c.Teams.JoinCodeLength <= 0 || c.Teams.JoinCodeLength > 32 {
		return fmt.Errorf("join code length must be in [1, 32], got %d", c.Teams.JoinCodeLength)
	}
	if c.Teams.JoinCodeMaxAttempts < 0 {
		return fmt.Errorf("join code max attempts must not be negative")
	}

	return nil
}

// Load читает конфигурацию из переменных окружения.
// Файл .env, если он есть, подгружается заранее и не перекрывает уже заданные переменные.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
