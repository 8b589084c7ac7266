package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr              string `env:"PORTFOLIO_ADDR" envDefault:":8081"`
	DBPath            string `env:"PORTFOLIO_DB_PATH" envDefault:"portfolio.db"`
	AdminEmail        string `env:"PORTFOLIO_ADMIN_EMAIL,required,notEmpty"`
	AdminPasswordHash string `env:"PORTFOLIO_ADMIN_PASSWORD_HASH"`
	SessionSecret     string `env:"PORTFOLIO_SESSION_SECRET,required,notEmpty"`
	IDTokenSecret     string `env:"PORTFOLIO_ID_TOKEN_SECRET,required,notEmpty"`
	Production        bool   `env:"PORTFOLIO_PRODUCTION"`
	LogLevel          string `env:"PORTFOLIO_LOG_LEVEL" envDefault:"info"`

	CacheTTL       time.Duration `env:"PORTFOLIO_CACHE_TTL" envDefault:"5m"`
	CleanupQueue   int           `env:"PORTFOLIO_CLEANUP_QUEUE" envDefault:"64"`
	CleanupTimeout time.Duration `env:"PORTFOLIO_CLEANUP_TIMEOUT" envDefault:"30s"`
	MaxUploadBytes int64         `env:"PORTFOLIO_MAX_UPLOAD_BYTES" envDefault:"10485760"`

	FrontendURLs []string `env:"FRONTEND_URLS" envSeparator:","`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	RevalidationURL    string `env:"NEXT_REVALIDATION_URL"`
	RevalidationSecret string `env:"REVALIDATION_SECRET"`
}

// LoadConfig reads the environment. The caller loads .env first.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionSecret == cfg.IDTokenSecret {
		return Config{}, fmt.Errorf("PORTFOLIO_SESSION_SECRET and PORTFOLIO_ID_TOKEN_SECRET must differ")
	}
	return cfg, nil
}
