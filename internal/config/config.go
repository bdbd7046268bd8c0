package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
)

// Config holds the whole application configuration
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Server   ServerConfig   `json:"server"`
	LLM      LLMConfig      `json:"llm"`
	Storage  StorageConfig  `json:"storage"`
	Session  SessionConfig  `json:"session"`
}

// TelegramConfig holds the Telegram bot settings
type TelegramConfig struct {
	Token      string `json:"token"`
	WebhookURL string `json:"webhook_url"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port          string        `json:"port"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	IdleTimeout   time.Duration `json:"idle_timeout"`
	UpdateTimeout time.Duration `json:"update_timeout"`
}

// LLMConfig holds the language model collaborator settings
type LLMConfig struct {
	APIKey  string        `json:"api_key"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

// StorageConfig holds the schedule store settings
type StorageConfig struct {
	Driver       string `json:"driver"`
	SchedulePath string `json:"schedule_path"`
	DBPath       string `json:"db_path"`
}

// SessionConfig holds the conversation state settings
type SessionConfig struct {
	MaxTurns int           `json:"max_turns"`
	TTL      time.Duration `json:"ttl"`
}

// Load reads the configuration from environment variables. A .env file in
// the working directory is picked up when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:      os.Getenv("TELEGRAM_TOKEN"),
			WebhookURL: os.Getenv("WEBHOOK_URL"),
		},
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			ReadTimeout:   getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:  getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:   getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			UpdateTimeout: getEnvAsDuration("UPDATE_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", DriverJSONFile),
			SchedulePath: getEnv("SCHEDULE_FILE", "schedule.json"),
			DBPath:       getEnv("DB_FILE", "schedule.db"),
		},
		Session: SessionConfig{
			MaxTurns: getEnvAsInt("SESSION_MAX_TURNS", 200),
			TTL:      getEnvAsDuration("SESSION_TTL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	switch c.Storage.Driver {
	case DriverJSONFile, DriverSQLite:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q",
			DriverJSONFile, DriverSQLite, c.Storage.Driver)
	}

	if c.Session.MaxTurns <= 0 {
		return fmt.Errorf("SESSION_MAX_TURNS must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	return nil
}

// LoadLLM reads only the language model settings. Used by the console time
// bot, which needs no Telegram or storage configuration.
func LoadLLM() (LLMConfig, error) {
	_ = godotenv.Load()

	cfg := LLMConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: getEnv("OPENAI_BASE_URL", ""),
		Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		Timeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
	}

	if cfg.APIKey == "" {
		return LLMConfig{}, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

// getEnv reads an environment variable with a fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAsInt reads an environment variable as an int
func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsDuration reads an environment variable as a duration
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
