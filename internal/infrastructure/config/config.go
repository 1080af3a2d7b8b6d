package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. VOCSTUDY_STORAGE_DRIVER.
const EnvPrefix = "VOCSTUDY"

// Storage drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds all configuration for our application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Study   StudyConfig   `mapstructure:"study"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	HTTPPort    int      `mapstructure:"http_port" validate:"gte=1,lte=65535"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects where progress and session snapshots are kept.
type StorageConfig struct {
	Driver    string `mapstructure:"driver" validate:"oneof=sqlite3 postgres pgx redis memory"`
	Path      string `mapstructure:"path"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Name      string `mapstructure:"name"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	SSLMode   string `mapstructure:"sslmode"`
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
	LogSQL    bool   `mapstructure:"log_sql"`
}

// CatalogConfig locates the vocabulary files.
type CatalogConfig struct {
	Dir   string `mapstructure:"dir" validate:"required"`
	Index string `mapstructure:"index" validate:"required"`
}

// StudyConfig tunes the session engines.
type StudyConfig struct {
	Seed            uint64          `mapstructure:"seed"`
	FeedbackDelay   time.Duration   `mapstructure:"feedback_delay" validate:"gte=0"`
	MatchEvalDelay  time.Duration   `mapstructure:"match_eval_delay" validate:"gte=0"`
	MatchResetDelay time.Duration   `mapstructure:"match_reset_delay" validate:"gte=0"`
	MatchBatchPairs int             `mapstructure:"match_batch_pairs" validate:"gte=1,lte=50"`
	DefaultCount    int             `mapstructure:"default_count" validate:"gte=1"`
	Selection       SelectionConfig `mapstructure:"selection"`
}

type SelectionConfig struct {
	OverlapRatio float64 `mapstructure:"overlap_ratio" validate:"gte=0,lte=1"`
	HistoryLimit int     `mapstructure:"history_limit" validate:"gte=1"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the struct tags of the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.cors_origins", []string{"*"})

	// Storage defaults
	viper.SetDefault("storage.driver", DriverSQLite)
	viper.SetDefault("storage.path", "data/vocstudy.db")
	viper.SetDefault("storage.host", "localhost")
	viper.SetDefault("storage.port", 5432)
	viper.SetDefault("storage.name", "vocstudy")
	viper.SetDefault("storage.user", "postgres")
	viper.SetDefault("storage.password", "postgres")
	viper.SetDefault("storage.sslmode", "disable")
	viper.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	viper.SetDefault("storage.key_prefix", "vocstudy:")
	viper.SetDefault("storage.log_sql", false)

	// Catalog defaults
	viper.SetDefault("catalog.dir", "data/catalog")
	viper.SetDefault("catalog.index", "index.json")

	// Study defaults
	viper.SetDefault("study.seed", 0)
	viper.SetDefault("study.feedback_delay", "1s")
	viper.SetDefault("study.match_eval_delay", "300ms")
	viper.SetDefault("study.match_reset_delay", "600ms")
	viper.SetDefault("study.match_batch_pairs", 10)
	viper.SetDefault("study.default_count", 20)
	viper.SetDefault("study.selection.overlap_ratio", 0.2)
	viper.SetDefault("study.selection.history_limit", 100)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// DatabaseDriver returns the storage driver name.
func (c *Config) DatabaseDriver() (string, error) {
	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch driver {
	case DriverSQLite, DriverPostgres, DriverPgx, DriverRedis, DriverMemory:
		return driver, nil
	case "sqlite":
		return DriverSQLite, nil
	case "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
}

// DatabaseURL returns the connection string for the configured driver. The memory
// driver has none.
func (c *Config) DatabaseURL() (string, error) {
	driver, err := c.DatabaseDriver()
	if err != nil {
		return "", err
	}
	switch driver {
	case DriverSQLite:
		path := strings.TrimSpace(c.Storage.Path)
		if path == "" {
			return "", errors.New("storage.path is required for sqlite3")
		}
		if strings.HasPrefix(path, "file:") {
			return path, nil
		}
		return "file:" + path + "?_fk=1&_busy_timeout=5000", nil
	case DriverPostgres, DriverPgx:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Storage.User, c.Storage.Password),
			Host:     fmt.Sprintf("%s:%d", c.Storage.Host, c.Storage.Port),
			Path:     "/" + c.Storage.Name,
			RawQuery: url.Values{"sslmode": []string{c.Storage.SSLMode}}.Encode(),
		}
		return u.String(), nil
	case DriverRedis:
		if strings.TrimSpace(c.Storage.RedisURL) == "" {
			return "", errors.New("storage.redis_url is required for redis")
		}
		return c.Storage.RedisURL, nil
	default:
		return "", nil
	}
}
