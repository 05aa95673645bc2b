package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	Port             string
	IsProduction     bool
	EnableDBCheck    bool
	JWTSecret        string
	JWTIssuer        string
	RateLimit        string
	CORSAllowOrigins []string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_ISSUER", "recon_backend")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:    v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		RateLimit:        v.GetString("RATE_LIMIT"),
		CORSAllowOrigins: strings.Split(v.GetString("CORS_ALLOW_ORIGINS"), ","),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	return cfg, nil
}
