// backend-go/internal/config/config.go
package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Ingest   IngestConfig
	AI       AIConfig
	Cache    CacheConfig
	Archive  ArchiveConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port           string `validate:"required"`
	Mode           string `validate:"oneof=debug release test"`
	LogLevel       string
	ReadTimeout    int `validate:"gte=0"`
	WriteTimeout   int `validate:"gte=0"`
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string `validate:"oneof=postgres memory"`
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string for lib/pq. DATABASE_URL wins over the
// discrete DB_* settings when present.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AppConfig struct {
	MaxUploadBytes int64 `validate:"gt=0"`
}

// IngestConfig bounds a single CSV ingestion.
type IngestConfig struct {
	MaxRows     int    `validate:"gt=0"`
	TimeoutMs   int    `validate:"gt=0"`
	BatchSize   int    `validate:"gt=0"`
	DefaultDate string `validate:"datetime=2006-01-02"`
}

type AIConfig struct {
	ServiceURL string `validate:"required,url"`
	TimeoutMs  int    `validate:"gt=0"`
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

// ArchiveConfig points at the S3-compatible bucket raw uploads are copied to.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string `validate:"required_if=Enabled true"`
	AccessKey string `validate:"required_if=Enabled true"`
	SecretKey string `validate:"required_if=Enabled true"`
	Bucket    string `validate:"required_if=Enabled true"`
	Region    string
	UseSSL    bool
	Prefix    string
}

type MetricsConfig struct {
	Enabled bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = fromViper()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 0)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 0)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "retail_inventory")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("UPLOAD_MAX_BYTES", 50*1024*1024)
	viper.SetDefault("INGEST_MAX_ROWS", 50000)
	viper.SetDefault("INGEST_TIMEOUT_MS", 300000)
	viper.SetDefault("INGEST_BATCH_SIZE", 1000)
	viper.SetDefault("INGEST_DEFAULT_DATE", "2024-01-01")
	viper.SetDefault("AI_SERVICE_URL", "http://localhost:8000")
	viper.SetDefault("AI_SERVICE_TIMEOUT_MS", 5000)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 60)
	viper.SetDefault("ARCHIVE_ENABLED", false)
	viper.SetDefault("ARCHIVE_REGION", "us-east-1")
	viper.SetDefault("ARCHIVE_USE_SSL", true)
	viper.SetDefault("ARCHIVE_PREFIX", "uploads/")
	viper.SetDefault("METRICS_ENABLED", true)
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("STORAGE_DRIVER"),
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			MaxUploadBytes: viper.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Ingest: IngestConfig{
			MaxRows:     viper.GetInt("INGEST_MAX_ROWS"),
			TimeoutMs:   viper.GetInt("INGEST_TIMEOUT_MS"),
			BatchSize:   viper.GetInt("INGEST_BATCH_SIZE"),
			DefaultDate: viper.GetString("INGEST_DEFAULT_DATE"),
		},
		AI: AIConfig{
			ServiceURL: viper.GetString("AI_SERVICE_URL"),
			TimeoutMs:  viper.GetInt("AI_SERVICE_TIMEOUT_MS"),
		},
		Cache: CacheConfig{
			Enabled:             viper.GetBool("CACHE_ENABLED"),
			RedisURL:            viper.GetString("REDIS_URL"),
			RedisHost:           viper.GetString("REDIS_HOST"),
			RedisPort:           viper.GetString("REDIS_PORT"),
			RedisPassword:       viper.GetString("REDIS_PASSWORD"),
			RedisDB:             viper.GetInt("REDIS_DB"),
			AnalyticsTTLSeconds: viper.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
		},
		Archive: ArchiveConfig{
			Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
			Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
			AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
			SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
			Bucket:    viper.GetString("ARCHIVE_BUCKET"),
			Region:    viper.GetString("ARCHIVE_REGION"),
			UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			Prefix:    viper.GetString("ARCHIVE_PREFIX"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
		},
	}
}

// Validate checks the loaded settings against their struct tags and returns
// a single error listing every offending field.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Namespace()] = fe.Tag()
			}
			return fmt.Errorf("invalid configuration: %v", fields)
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
