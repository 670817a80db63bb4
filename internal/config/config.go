package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"

	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	sqliteScheme = "sqlite://"
)

// Config is read from the environment, optionally layered over a YAML file.
// Keys are the upper-case environment names, e.g. DATABASE_URL.
type Config struct {
	HTTPAddr    string `mapstructure:"http_addr"`
	DatabaseURL string `mapstructure:"database_url"`
	CatalogPath string `mapstructure:"catalog_path"`
	LogLevel    string `mapstructure:"log_level"`

	PayPalClientID     string        `mapstructure:"paypal_client_id"`
	PayPalClientSecret string        `mapstructure:"paypal_client_secret"`
	PayPalMode         string        `mapstructure:"paypal_mode"`
	PayPalBaseURL      string        `mapstructure:"paypal_base_url"`
	PayPalTimeout      time.Duration `mapstructure:"paypal_timeout"`

	SMTPHost     string        `mapstructure:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"`
	SMTPUsername string        `mapstructure:"smtp_username"`
	SMTPPassword string        `mapstructure:"smtp_password"`
	SMTPTimeout  time.Duration `mapstructure:"smtp_timeout"`
	FromEmail    string        `mapstructure:"from_email"`
	AdminEmail   string        `mapstructure:"admin_email"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

var defaults = map[string]any{
	"http_addr":    ":8000",
	"database_url": "sqlite://./storefront.db",
	"catalog_path": "",
	"log_level":    "info",

	"paypal_client_id":     "",
	"paypal_client_secret": "",
	"paypal_mode":          ModeSandbox,
	"paypal_base_url":      "",
	"paypal_timeout":       "15s",

	"smtp_host":     "smtp.gmail.com",
	"smtp_port":     587,
	"smtp_username": "",
	"smtp_password": "",
	"smtp_timeout":  "10s",
	"from_email":    "",
	"admin_email":   "",

	"allowed_origins":  "http://localhost:3000,http://localhost:5173",
	"rate_limit_rps":   10,
	"rate_limit_burst": 20,
}

// Load reads configuration. path may be empty, then only the environment is used.
func Load(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("v.Unmarshal: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	if rest, ok := strings.CutPrefix(c.DatabaseURL, "postgres://"); ok {
		c.DatabaseURL = "postgresql://" + rest
	}

	c.PayPalMode = strings.ToLower(strings.TrimSpace(c.PayPalMode))
	if c.PayPalBaseURL == "" {
		// an unknown mode is reported by Validate
		c.PayPalBaseURL, _ = BaseURLForMode(c.PayPalMode)
	}

	if c.FromEmail == "" {
		c.FromEmail = c.SMTPUsername
	}
	if c.AdminEmail == "" {
		c.AdminEmail = c.SMTPUsername
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		for _, part := range strings.Split(origin, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.AllowedOrigins = origins
}

// BaseURLForMode maps PAYPAL_MODE to the provider's REST endpoint.
func BaseURLForMode(mode string) (string, error) {
	switch strings.ToLower(mode) {
	case "", ModeSandbox:
		return SandboxBaseURL, nil
	case ModeLive:
		return LiveBaseURL, nil
	default:
		return "", fmt.Errorf("unknown paypal mode[%s]", mode)
	}
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is empty")
	}

	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if !strings.HasPrefix(c.DatabaseURL, sqliteScheme) {
		if _, err := url.Parse(c.DatabaseURL); err != nil {
			return fmt.Errorf("DATABASE_URL: %w", err)
		}
	}

	if c.PayPalMode != ModeSandbox && c.PayPalMode != ModeLive {
		return fmt.Errorf("PAYPAL_MODE[%s] must be %s or %s", c.PayPalMode, ModeSandbox, ModeLive)
	}

	u, err := url.Parse(c.PayPalBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PAYPAL_BASE_URL[%s] is not an absolute url", c.PayPalBaseURL)
	}

	if c.PayPalTimeout <= 0 {
		return errors.New("PAYPAL_TIMEOUT must be positive")
	}
	if c.SMTPTimeout <= 0 {
		return errors.New("SMTP_TIMEOUT must be positive")
	}

	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT[%d] is out of range", c.SMTPPort)
	}

	if c.RateLimitRPS <= 0 {
		return errors.New("RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be positive")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("LOG_LEVEL[%s]: %w", c.LogLevel, err)
	}
	return level, nil
}

// NotificationsEnabled reports whether SMTP credentials are present.
func (c Config) NotificationsEnabled() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != ""
}
