package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/user-directory-api/internal/validation"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// Session snapshot storage configuration
	Storage StorageConfig `toml:"storage"`

	// Upload limits for imports and photos
	Upload UploadConfig `toml:"upload"`

	// Directory behaviour (creation delay, demo seed)
	Directory DirectoryConfig `toml:"directory"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	SecureCookies   bool          `toml:"secure_cookies"`
}

// StorageConfig selects where session snapshots live
type StorageConfig struct {
	Driver         string         `toml:"driver"` // "memory" or "postgres"
	SessionTTL     time.Duration  `toml:"session_ttl"`
	MigrationsPath string         `toml:"migrations_path"`
	Database       DatabaseConfig `toml:"database"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string        `toml:"host"`
	Port         string        `toml:"port"`
	User         string        `toml:"user"`
	Password     string        `toml:"password"`
	Name         string        `toml:"name"`
	SSLMode      string        `toml:"sslmode"`
	MaxOpenConns int           `toml:"max_open_conns"`
	MaxIdleConns int           `toml:"max_idle_conns"`
	MaxLifetime  time.Duration `toml:"max_lifetime"`
}

// UploadConfig holds upload size limits
type UploadConfig struct {
	MaxUploadSize int64 `toml:"max_upload_size"` // in bytes
	MaxPhotoSize  int64 `toml:"max_photo_size"`  // in bytes
}

// DirectoryConfig holds user creation settings
type DirectoryConfig struct {
	CreateDelay   time.Duration `toml:"create_delay"`
	CreateTimeout time.Duration `toml:"create_timeout"`
	SeedDemo      bool          `toml:"seed_demo"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "pretty"
}

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver:         DriverMemory,
			SessionTTL:     24 * time.Hour,
			MigrationsPath: "./migrations",
			Database: DatabaseConfig{
				Host:         "localhost",
				Port:         "5432",
				User:         "postgres",
				Password:     "postgres",
				Name:         "user_directory",
				SSLMode:      "disable",
				MaxOpenConns: 10,
				MaxIdleConns: 2,
				MaxLifetime:  5 * time.Minute,
			},
		},
		Upload: UploadConfig{
			MaxUploadSize: 20 * 1024 * 1024, // 20MB
			MaxPhotoSize:  validation.MaxPhotoSize,
		},
		Directory: DirectoryConfig{
			CreateDelay:   1500 * time.Millisecond,
			CreateTimeout: 10 * time.Second,
			SeedDemo:      true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from an optional TOML file (CONFIG_FILE) and then
// from environment variables, which take precedence
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.SecureCookies = getBoolEnv("SECURE_COOKIES", c.Server.SecureCookies)

	c.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", c.Storage.Driver))
	c.Storage.SessionTTL = getDurationEnv("SESSION_TTL", c.Storage.SessionTTL)
	c.Storage.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Storage.MigrationsPath)

	db := &c.Storage.Database
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnv("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSLMODE", db.SSLMode)
	db.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", db.MaxIdleConns)
	db.MaxLifetime = getDurationEnv("DB_MAX_LIFETIME", db.MaxLifetime)

	c.Upload.MaxUploadSize = getInt64Env("MAX_UPLOAD_SIZE", c.Upload.MaxUploadSize)
	c.Upload.MaxPhotoSize = getInt64Env("MAX_PHOTO_SIZE", c.Upload.MaxPhotoSize)

	c.Directory.CreateDelay = getDurationEnv("CREATE_DELAY", c.Directory.CreateDelay)
	c.Directory.CreateTimeout = getDurationEnv("CREATE_TIMEOUT", c.Directory.CreateTimeout)
	c.Directory.SeedDemo = getBoolEnv("DIRECTORY_SEED_DEMO", c.Directory.SeedDemo)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Storage.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: memory, postgres (got %q)", c.Storage.Driver)
	}
	if c.Upload.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.Upload.MaxPhotoSize <= 0 {
		return fmt.Errorf("MAX_PHOTO_SIZE must be positive")
	}
	if c.Upload.MaxPhotoSize > validation.MaxPhotoSize {
		return fmt.Errorf("MAX_PHOTO_SIZE must be at most %d bytes so photos fit in an exported cell", validation.MaxPhotoSize)
	}
	if c.Directory.CreateTimeout <= 0 {
		return fmt.Errorf("CREATE_TIMEOUT must be positive")
	}
	if c.Directory.CreateDelay < 0 {
		return fmt.Errorf("CREATE_DELAY must not be negative")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
