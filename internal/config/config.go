package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	AssetDir       string  `envconfig:"ASSET_DIR" default:"./data/assets"`
	AssetBaseURL   string  `envconfig:"ASSET_BASE_URL" default:"/assets"`
	WebDir         string  `envconfig:"WEB_DIR" default:"./web"`
	CatalogPath    string  `envconfig:"CATALOG_PATH"`
	DatabaseURL    string  `envconfig:"DATABASE_URL"`
	ColorTolerance float64 `envconfig:"COLOR_TOLERANCE" default:"80"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ColorTolerance < 0 {
		return nil, fmt.Errorf("COLOR_TOLERANCE must not be negative, got %v", cfg.ColorTolerance)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins, dropping blanks.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LogLevel to a slog level. Unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
