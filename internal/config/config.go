package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"classifieds_backend/internal/storage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Env             string `yaml:"env"`
		LogLevel        string `yaml:"log_level"` // пусто - по env
		ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres, mysql, sqlite
		DSN          string `yaml:"url"`
		LogLevel     string `yaml:"log_level"` // silent, error, warn, info
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Auth struct {
		TokenTTLHours int `yaml:"token_ttl_hours"`
		// Разрешает анонимное создание пользователя с ролью admin (bootstrap)
		AllowAnonymousAdmin bool `yaml:"allow_anonymous_admin"`
		BcryptCost          int  `yaml:"bcrypt_cost"`
	} `yaml:"auth"`

	FirstAdmin struct {
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
	} `yaml:"first_admin"`

	Workers struct {
		TokenCleanupSchedule string `yaml:"token_cleanup_schedule"` // cron spec, "" - выключено
	} `yaml:"workers"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Storage storage.Config `yaml:"storage"`

	Images struct {
		MaxUploadMB int `yaml:"max_upload_mb"`
		MaxWidth    int `yaml:"max_width"`
		MaxHeight   int `yaml:"max_height"`
		Quality     int `yaml:"quality"`
	} `yaml:"images"`
}

// Default возвращает конфиг со значениями по умолчанию
func Default() *Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "production"
	cfg.Server.ShutdownTimeout = 10

	cfg.Database.Driver = DriverPostgres
	cfg.Database.LogLevel = "warn"
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5

	cfg.Auth.TokenTTLHours = 48
	cfg.Auth.AllowAnonymousAdmin = true
	cfg.Auth.BcryptCost = 10

	cfg.Workers.TokenCleanupSchedule = "@every 1h"
	cfg.CORS.AllowedOrigins = []string{"*"}

	cfg.Storage.Type = storage.TypeLocal
	cfg.Storage.BasePath = "./uploads"
	cfg.Images.MaxUploadMB = 5
	cfg.Images.MaxWidth = 1600
	cfg.Images.MaxHeight = 1600
	cfg.Images.Quality = 85
	return &cfg
}

// Load собирает конфиг: значения по умолчанию -> config.yaml (если есть) -> переменные окружения.
// .env в рабочей директории подхватывается автоматически.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.LogLevel, "DATABASE_LOG_LEVEL")
	setString(&c.Server.Host, "SERVER_HOST")
	setString(&c.Server.Env, "SERVER_ENV")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	setString(&c.FirstAdmin.Name, "FIRST_ADMIN_NAME")
	setString(&c.FirstAdmin.Password, "FIRST_ADMIN_PASSWORD")
	setString(&c.Workers.TokenCleanupSchedule, "TOKEN_CLEANUP_SCHEDULE")
	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.Storage.BasePath, "STORAGE_BASE_PATH")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.Region, "STORAGE_REGION")
	setString(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&c.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "STORAGE_SECRET_KEY")

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}

	if err := setInt(&c.Server.Port, "SERVER_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Auth.TokenTTLHours, "TOKEN_TTL_HOURS"); err != nil {
		return err
	}
	if err := setInt(&c.Auth.BcryptCost, "BCRYPT_COST"); err != nil {
		return err
	}
	if err := setInt(&c.Images.MaxUploadMB, "IMAGE_MAX_UPLOAD_MB"); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("ALLOW_ANONYMOUS_ADMIN"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean for ALLOW_ANONYMOUS_ADMIN: %w", err)
		}
		c.Auth.AllowAnonymousAdmin = b
	}
	return nil
}

// Validate проверяет критичные настройки
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is not set (DATABASE_URL)")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("token ttl must be positive, got %d", c.Auth.TokenTTLHours)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Storage.Type {
	case storage.TypeLocal:
	case storage.TypeS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is not set (STORAGE_BUCKET)")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Images.MaxUploadMB <= 0 {
		return fmt.Errorf("image upload limit must be positive, got %d", c.Images.MaxUploadMB)
	}
	return nil
}

// MaxImageBytes - предел тела запроса на загрузку изображения
func (c *Config) MaxImageBytes() int64 {
	return int64(c.Images.MaxUploadMB) << 20
}

// TokenTTL - окно жизни токена
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	*dst = n
	return nil
}
