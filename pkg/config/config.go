package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Dataset snapshots, checked in priority order
	DatasetPaths     []string `mapstructure:"DATASET_PATHS"`
	PredictionsPaths []string `mapstructure:"PREDICTIONS_PATHS"`

	// Gemini (Generative Language API)
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// API-Football live data
	APIFootballKey  string `mapstructure:"API_FOOTBALL_KEY"`
	APIFootballBase string `mapstructure:"API_FOOTBALL_BASE"`

	// External call protection
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Dataset refresh
	RefreshSchedule string `mapstructure:"REFRESH_SCHEDULE"`
	WatchDataset    bool   `mapstructure:"WATCH_DATASET"`

	// Chat
	ChatHistoryTTL time.Duration `mapstructure:"CHAT_HISTORY_TTL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("DATASET_PATHS", "data/players.csv,data/players_snapshot.csv")
	viper.SetDefault("PREDICTIONS_PATHS", "data/predictions_with_undervaluation.csv,data/players.csv")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("API_FOOTBALL_KEY", "")
	viper.SetDefault("API_FOOTBALL_BASE", "https://v3.football.api-sports.io")
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("REFRESH_SCHEDULE", "") // e.g. "0 4 * * *", empty disables
	viper.SetDefault("WATCH_DATASET", false)
	viper.SetDefault("CHAT_HISTORY_TTL", "1h")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse comma-separated list values
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}
	if pathsStr := viper.GetString("DATASET_PATHS"); pathsStr != "" {
		config.DatasetPaths = splitAndTrim(pathsStr)
	}
	if pathsStr := viper.GetString("PREDICTIONS_PATHS"); pathsStr != "" {
		config.PredictionsPaths = splitAndTrim(pathsStr)
	}

	return &config, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
