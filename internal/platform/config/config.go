package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// SiteURL is the absolute base URL of the public site. CPRoute is the
	// path segment the control panel is mounted under.
	SiteURL string `env:"SITE_URL" default:"http://localhost:8080"`
	CPRoute string `env:"CP_ROUTE" default:"cp"`

	// ContentFile is a YAML catalog of collections and pages. ViewsDir holds
	// the templates nocache view regions render. Both are optional.
	ContentFile string `env:"CONTENT_FILE"`
	ViewsDir    string `env:"VIEWS_DIR"`

	NavUpdateRate  float64 `env:"NAV_UPDATE_RATE" default:"1"`
	NavUpdateBurst int     `env:"NAV_UPDATE_BURST" default:"5"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	site, err := url.Parse(cfg.SiteURL)
	if err != nil || site.Scheme == "" || site.Host == "" {
		return fmt.Errorf("SITE_URL must be an absolute URL, got %q", cfg.SiteURL)
	}

	if strings.Trim(cfg.CPRoute, "/") == "" {
		return errors.New("CP_ROUTE must not be empty")
	}

	if cfg.NavUpdateRate <= 0 || cfg.NavUpdateBurst < 1 {
		return errors.New("NAV_UPDATE_RATE must be positive and NAV_UPDATE_BURST at least 1")
	}

	if cfg.IsProduction() {
		if mode := sslMode(cfg.DatabaseURL); mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
		}
	}

	return nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Query().Get("sslmode"))
}
