package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Email      EmailConfig
	Evaluation EvaluationConfig
}

// EmailConfig holds notification delivery settings. Credentials come from the
// environment only.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	SMTP        SMTPConfig
}

// SMTPConfig holds SMTP relay settings for the smtp provider.
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Addr returns host:port.
func (s *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EvaluationConfig holds batch evaluation limits.
type EvaluationConfig struct {
	Concurrency       int   `mapstructure:"concurrency"`
	MaxFileSizeMB     int64 `mapstructure:"max_file_size_mb"`
	MaxBundleSizeMB   int64 `mapstructure:"max_bundle_size_mb"`
	MaxCandidates     int   `mapstructure:"max_candidates"`
	MaxArchiveEntries int   `mapstructure:"max_archive_entries"`
	ArchiveReports    bool  `mapstructure:"archive_reports"`
}

// MaxFileBytes returns the per-document size limit in bytes.
func (e *EvaluationConfig) MaxFileBytes() int64 {
	return e.MaxFileSizeMB * 1024 * 1024
}

// MaxBundleBytes returns the ZIP bundle size limit in bytes.
func (e *EvaluationConfig) MaxBundleBytes() int64 {
	return e.MaxBundleSizeMB * 1024 * 1024
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MRSTRICT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MRSTRICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "mrstrict")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "mrstrict_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "24h")
	v.SetDefault("jwt.issuer", "mrstrict")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "mrstrict-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@mrstrict.local")
	v.SetDefault("email.from_name", "MR.Strict")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.timeout", "30s")

	// Evaluation defaults
	v.SetDefault("evaluation.concurrency", 4)
	v.SetDefault("evaluation.max_file_size_mb", 20)
	v.SetDefault("evaluation.max_bundle_size_mb", 100)
	v.SetDefault("evaluation.max_candidates", 500)
	v.SetDefault("evaluation.max_archive_entries", 500)
	v.SetDefault("evaluation.archive_reports", true)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "MRSTRICT_SERVER_PORT",
		"server.read_timeout":            "MRSTRICT_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "MRSTRICT_SERVER_WRITE_TIMEOUT",
		"server.environment":             "MRSTRICT_SERVER_ENVIRONMENT",
		"db.host":                        "MRSTRICT_DB_HOST",
		"db.port":                        "MRSTRICT_DB_PORT",
		"db.user":                        "MRSTRICT_DB_USER",
		"db.password":                    "MRSTRICT_DB_PASSWORD",
		"db.name":                        "MRSTRICT_DB_NAME",
		"db.sslmode":                     "MRSTRICT_DB_SSLMODE",
		"db.max_open":                    "MRSTRICT_DB_MAX_OPEN",
		"db.max_idle":                    "MRSTRICT_DB_MAX_IDLE",
		"jwt.secret":                     "MRSTRICT_JWT_SECRET",
		"jwt.access_expiry":              "MRSTRICT_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                     "MRSTRICT_JWT_ISSUER",
		"s3.region":                      "MRSTRICT_S3_REGION",
		"s3.bucket":                      "MRSTRICT_S3_BUCKET",
		"s3.endpoint":                    "MRSTRICT_S3_ENDPOINT",
		"s3.access_key":                  "MRSTRICT_S3_ACCESS_KEY",
		"s3.secret_key":                  "MRSTRICT_S3_SECRET_KEY",
		"s3.presign_expiry":              "MRSTRICT_S3_PRESIGN_EXPIRY",
		"log.level":                      "MRSTRICT_LOG_LEVEL",
		"log.format":                     "MRSTRICT_LOG_FORMAT",
		"cors.allowed_origins":           "MRSTRICT_CORS_ALLOWED_ORIGINS",
		"email.provider":                 "MRSTRICT_EMAIL_PROVIDER",
		"email.region":                   "MRSTRICT_EMAIL_REGION",
		"email.from_address":             "MRSTRICT_EMAIL_FROM_ADDRESS",
		"email.from_name":                "MRSTRICT_EMAIL_FROM_NAME",
		"email.smtp.host":                "MRSTRICT_EMAIL_SMTP_HOST",
		"email.smtp.port":                "MRSTRICT_EMAIL_SMTP_PORT",
		"email.smtp.username":            "MRSTRICT_EMAIL_SMTP_USERNAME",
		"email.smtp.password":            "MRSTRICT_EMAIL_SMTP_PASSWORD",
		"email.smtp.timeout":             "MRSTRICT_EMAIL_SMTP_TIMEOUT",
		"evaluation.concurrency":         "MRSTRICT_EVALUATION_CONCURRENCY",
		"evaluation.max_file_size_mb":    "MRSTRICT_EVALUATION_MAX_FILE_SIZE_MB",
		"evaluation.max_bundle_size_mb":  "MRSTRICT_EVALUATION_MAX_BUNDLE_SIZE_MB",
		"evaluation.max_candidates":      "MRSTRICT_EVALUATION_MAX_CANDIDATES",
		"evaluation.max_archive_entries": "MRSTRICT_EVALUATION_MAX_ARCHIVE_ENTRIES",
		"evaluation.archive_reports":     "MRSTRICT_EVALUATION_ARCHIVE_REPORTS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MRSTRICT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MRSTRICT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		SMTP: SMTPConfig{
			Host:     v.GetString("email.smtp.host"),
			Port:     v.GetInt("email.smtp.port"),
			Username: v.GetString("email.smtp.username"),
			Password: v.GetString("email.smtp.password"),
			Timeout:  v.GetDuration("email.smtp.timeout"),
		},
	}

	cfg.Evaluation = EvaluationConfig{
		Concurrency:       v.GetInt("evaluation.concurrency"),
		MaxFileSizeMB:     v.GetInt64("evaluation.max_file_size_mb"),
		MaxBundleSizeMB:   v.GetInt64("evaluation.max_bundle_size_mb"),
		MaxCandidates:     v.GetInt("evaluation.max_candidates"),
		MaxArchiveEntries: v.GetInt("evaluation.max_archive_entries"),
		ArchiveReports:    v.GetBool("evaluation.archive_reports"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Evaluation.Concurrency < 1 {
		return fmt.Errorf("evaluation.concurrency must be at least 1, got %d", c.Evaluation.Concurrency)
	}
	switch c.Email.Provider {
	case "noop", "ses":
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required when email.provider is smtp")
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	return nil
}
