package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrstrict/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, 587, cfg.Email.SMTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Email.SMTP.Timeout)
	assert.Equal(t, 4, cfg.Evaluation.Concurrency)
	assert.Equal(t, int64(20*1024*1024), cfg.Evaluation.MaxFileBytes())
	assert.Equal(t, int64(100*1024*1024), cfg.Evaluation.MaxBundleBytes())
	assert.True(t, cfg.Evaluation.ArchiveReports)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MRSTRICT_EMAIL_PROVIDER", "smtp")
	t.Setenv("MRSTRICT_EMAIL_SMTP_HOST", "smtp.example.com")
	t.Setenv("MRSTRICT_EMAIL_SMTP_USERNAME", "grader@example.com")
	t.Setenv("MRSTRICT_EMAIL_SMTP_PASSWORD", "app-password")
	t.Setenv("MRSTRICT_EVALUATION_CONCURRENCY", "8")
	t.Setenv("MRSTRICT_EVALUATION_ARCHIVE_REPORTS", "false")
	t.Setenv("MRSTRICT_CORS_ALLOWED_ORIGINS", "https://grader.example.com, ")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "smtp.example.com:587", cfg.Email.SMTP.Addr())
	assert.Equal(t, "grader@example.com", cfg.Email.SMTP.Username)
	assert.Equal(t, "app-password", cfg.Email.SMTP.Password)
	assert.Equal(t, 8, cfg.Evaluation.Concurrency)
	assert.False(t, cfg.Evaluation.ArchiveReports)
	assert.Equal(t, []string{"https://grader.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_SMTPRequiresHost(t *testing.T) {
	t.Setenv("MRSTRICT_EMAIL_PROVIDER", "smtp")

	_, err := config.Load()
	assert.ErrorContains(t, err, "email.smtp.host")
}

func TestLoad_UnknownEmailProvider(t *testing.T) {
	t.Setenv("MRSTRICT_EMAIL_PROVIDER", "carrier-pigeon")

	_, err := config.Load()
	assert.ErrorContains(t, err, "unknown email provider")
}

func TestLoad_RejectsZeroConcurrency(t *testing.T) {
	t.Setenv("MRSTRICT_EVALUATION_CONCURRENCY", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	d := config.DBConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.DSN())
}
