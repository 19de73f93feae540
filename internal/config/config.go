package config

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

type Config struct {
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	PostgresURL       string `mapstructure:"POSTGRES_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	UploadDir         string `mapstructure:"UPLOAD_DIR"`
	AIAPIKey          string `mapstructure:"AI_API_KEY"`
	AIBaseURL         string `mapstructure:"AI_BASE_URL"`
	AIModel           string `mapstructure:"AI_MODEL"`
	GeocodeBaseURL    string `mapstructure:"GEOCODE_BASE_URL"`
	PhotoConcurrency  int    `mapstructure:"PHOTO_CONCURRENCY"`
	StaleAfterMinutes int    `mapstructure:"STALE_AFTER_MINUTES"`
}

// Load reads configuration from the environment. POSTGRES_URL and AI_API_KEY
// have no defaults and must be set; an empty REDIS_ADDR disables Redis.
func Load() (Config, error) {
	viper.AutomaticEnv()
	// Keys without defaults must be bound explicitly or Unmarshal skips them.
	_ = viper.BindEnv("POSTGRES_URL")
	_ = viper.BindEnv("AI_API_KEY")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("AI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("AI_MODEL", "gpt-4o-mini")
	viper.SetDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("PHOTO_CONCURRENCY", 3)
	viper.SetDefault("STALE_AFTER_MINUTES", 30)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "unmarshaling config")
	}
	if cfg.PostgresURL == "" {
		return Config{}, eris.New("POSTGRES_URL is required")
	}
	if cfg.AIAPIKey == "" {
		return Config{}, eris.New("AI_API_KEY is required")
	}
	return cfg, nil
}
