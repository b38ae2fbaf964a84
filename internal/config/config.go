package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration. It is loaded once in main and
// treated as read-only afterwards.
type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Name           string
	Env            string
	Port           int
	AllowedOrigins []string

	// RequestTimeout bounds each non-streaming request, so pool exhaustion
	// surfaces as a timeout instead of unbounded queuing on pool acquire.
	RequestTimeout time.Duration
}

type AuthConfig struct {
	SecretKey      string
	Algorithm      string
	AccessTokenTTL time.Duration
}

type DatabaseConfig struct {
	URL string
}

type LLMConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables, with an optional
// .env file for local development. SECRET_KEY and DATABASE_URL are required.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "llmsaas")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", 8000)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 1024)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine; env vars alone are enough.
		if _, ok := err.(*viper.ConfigFileNotFoundError); !ok && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Env:            v.GetString("APP_ENV"),
			Port:           v.GetInt("PORT"),
			AllowedOrigins: splitOrigins(v.GetString("ALLOWED_ORIGINS")),
			RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		},
		Auth: AuthConfig{
			SecretKey:      v.GetString("SECRET_KEY"),
			Algorithm:      v.GetString("JWT_ALGORITHM"),
			AccessTokenTTL: time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		LLM: LLMConfig{
			APIKey:      v.GetString("OPENAI_API_KEY"),
			Model:       v.GetString("LLM_MODEL"),
			MaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
			Temperature: v.GetFloat64("LLM_TEMPERATURE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
	}

	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is required")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.Auth.Algorithm != "HS256" && cfg.Auth.Algorithm != "HS384" && cfg.Auth.Algorithm != "HS512" {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", cfg.Auth.Algorithm)
	}

	return cfg, nil
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
