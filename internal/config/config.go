package config

import (
	"fmt"
	"os"
	"time"

	"arena-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath        string
	ServerPort    string
	LogLevel      string
	SourceBaseURL string
	ScrapeDelay   time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "arena.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SourceBaseURL: getEnv("SOURCE_BASE_URL", ""),
		ScrapeDelay:   constants.ScrapeMinDelay,
	}

	if cfg.SourceBaseURL == "" {
		return nil, fmt.Errorf("SOURCE_BASE_URL is required")
	}

	if raw := os.Getenv("SCRAPE_DELAY"); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRAPE_DELAY %q: %w", raw, err)
		}
		if delay < constants.ScrapeMinDelay {
			logger.Warn().
				Dur("requested", delay).
				Dur("minimum", constants.ScrapeMinDelay).
				Msg("SCRAPE_DELAY below the politeness minimum, using minimum")
			delay = constants.ScrapeMinDelay
		}
		cfg.ScrapeDelay = delay
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("source_base_url", cfg.SourceBaseURL).
		Dur("scrape_delay", cfg.ScrapeDelay).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
