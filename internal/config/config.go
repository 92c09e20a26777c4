// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Session cookie settings. Session tokens are opaque random values stored
	// server-side, so there is no signing secret to configure.
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	SessionTTLHours   int    `mapstructure:"SESSION_TTL_HOURS"`
	CookieSecure      bool   `mapstructure:"COOKIE_SECURE"`

	// Audio upload settings.
	AudioStorage         string `mapstructure:"AUDIO_STORAGE"` // "local" or "s3"
	AudioUploadDir       string `mapstructure:"AUDIO_UPLOAD_DIR"`
	AudioMaxUploadSizeMB int    `mapstructure:"AUDIO_MAX_UPLOAD_SIZE_MB"`
	UploadRateLimit      int    `mapstructure:"UPLOAD_RATE_LIMIT"`
	UploadRateWindowMin  int    `mapstructure:"UPLOAD_RATE_WINDOW_MINUTES"`

	// S3-compatible object store (R2, minio) settings, used when AUDIO_STORAGE=s3.
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Println("Config file not found; using environment variables and defaults")
	}

	// Set default values for development
	viper.SetDefault("PORT", "8642")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "soundmap")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("SESSION_COOKIE_NAME", "session_id")
	viper.SetDefault("SESSION_TTL_HOURS", 168)
	viper.SetDefault("COOKIE_SECURE", true)
	viper.SetDefault("AUDIO_STORAGE", "local")
	viper.SetDefault("AUDIO_UPLOAD_DIR", "/tmp/soundmap/uploads/audio")
	viper.SetDefault("AUDIO_MAX_UPLOAD_SIZE_MB", 50)
	viper.SetDefault("UPLOAD_RATE_LIMIT", 10)
	viper.SetDefault("UPLOAD_RATE_WINDOW_MINUTES", 60)
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_REGION", "auto")
	viper.SetDefault("S3_BUCKET", "soundmap-audio")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 0.1)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME is required")
	}
	if c.SessionTTLHours <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}
	if c.AudioStorage != "local" && c.AudioStorage != "s3" {
		return fmt.Errorf("AUDIO_STORAGE must be \"local\" or \"s3\", got %q", c.AudioStorage)
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if !c.CookieSecure {
			return errors.New("COOKIE_SECURE must be enabled in production")
		}
		if c.AudioStorage == "s3" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
			return errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required when AUDIO_STORAGE=s3 in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
