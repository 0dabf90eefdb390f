package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIOrg     string
	OpenAITimeout time.Duration

	MinimaxAPIKey  string
	MinimaxVoiceID string
	MinimaxGroupID string
	MinimaxBaseURL string
	MinimaxTimeout time.Duration

	StoragePath    string
	StorageBaseURL string

	PollInterval  time.Duration
	JobClaimLimit int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:     os.Getenv("OPENAI_ORG"),
		OpenAITimeout: time.Second * time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 30)),

		MinimaxAPIKey:  os.Getenv("MINIMAX_API_KEY"),
		MinimaxVoiceID: os.Getenv("MINIMAX_VOICE_ID"),
		MinimaxGroupID: os.Getenv("MINIMAX_GROUP_ID"),
		MinimaxBaseURL: getEnv("MINIMAX_BASE_URL", "https://api.minimax.io/v1"),
		MinimaxTimeout: time.Second * time.Duration(getEnvInt("MINIMAX_TIMEOUT_SECONDS", 60)),

		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),

		PollInterval:  time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 30)),
		JobClaimLimit: getEnvInt("JOB_CLAIM_LIMIT", 10),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JobClaimLimit < 1 {
		cfg.JobClaimLimit = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
