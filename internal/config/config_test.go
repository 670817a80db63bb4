package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "sqlite://./storefront.db", cfg.DatabaseURL)
	assert.Equal(t, config.ModeSandbox, cfg.PayPalMode)
	assert.Equal(t, "https://api-m.sandbox.paypal.com", cfg.PayPalBaseURL)
	assert.Equal(t, 15*time.Second, cfg.PayPalTimeout)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 10*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.InDelta(t, 10, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.NotificationsEnabled())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/shop")
	t.Setenv("PAYPAL_MODE", "LIVE")
	t.Setenv("PAYPAL_TIMEOUT", "3s")
	t.Setenv("SMTP_USERNAME", "shop@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgresql://user:pass@db:5432/shop", cfg.DatabaseURL)
	assert.Equal(t, config.ModeLive, cfg.PayPalMode)
	assert.Equal(t, "https://api-m.paypal.com", cfg.PayPalBaseURL)
	assert.Equal(t, 3*time.Second, cfg.PayPalTimeout)
	assert.Equal(t, "shop@example.com", cfg.FromEmail)
	assert.Equal(t, "shop@example.com", cfg.AdminEmail)
	assert.True(t, cfg.NotificationsEnabled())
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.001)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
paypal_base_url: "http://localhost:4010"
admin_email: "ops@example.com"
`), 0o600))

	t.Setenv("HTTP_ADDR", ":9191")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// environment wins over the file
	assert.Equal(t, ":9191", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:4010", cfg.PayPalBaseURL)
	assert.Equal(t, "ops@example.com", cfg.AdminEmail)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantError string
	}{
		{
			name:      "unknown paypal mode",
			env:       map[string]string{"PAYPAL_MODE": "staging"},
			wantError: "cfg.Validate: PAYPAL_MODE[staging] must be sandbox or live",
		},
		{
			name:      "zero paypal timeout",
			env:       map[string]string{"PAYPAL_TIMEOUT": "0s"},
			wantError: "cfg.Validate: PAYPAL_TIMEOUT must be positive",
		},
		{
			name:      "smtp port out of range",
			env:       map[string]string{"SMTP_PORT": "70000"},
			wantError: "cfg.Validate: SMTP_PORT[70000] is out of range",
		},
		{
			name:      "relative paypal url",
			env:       map[string]string{"PAYPAL_BASE_URL": "/paypal"},
			wantError: "cfg.Validate: PAYPAL_BASE_URL[/paypal] is not an absolute url",
		},
		{
			name:      "negative burst",
			env:       map[string]string{"RATE_LIMIT_BURST": "-1"},
			wantError: "cfg.Validate: RATE_LIMIT_BURST must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load("")
			require.EqualError(t, err, tt.wantError)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBaseURLForMode(t *testing.T) {
	tests := []struct {
		mode    string
		want    string
		wantErr bool
	}{
		{mode: "", want: config.SandboxBaseURL},
		{mode: "sandbox", want: config.SandboxBaseURL},
		{mode: "LIVE", want: config.LiveBaseURL},
		{mode: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := config.BaseURLForMode(tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
