package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	BaseURL      string
	DBPath       string
	ServiceToken string
	SessionDays  int
	Ntfy         NtfyConfig
	Scheduler    SchedulerConfig
}

type NtfyConfig struct {
	BaseURL     string
	TopicPrefix string
	Timeout     time.Duration
}

// SchedulerConfig is injected into the reminder scheduler at construction;
// there is no process-wide scheduler state.
type SchedulerConfig struct {
	Enabled      bool
	PollInterval time.Duration
	BatchSize    int
	RetryBackoff time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:         getEnv("APP_PORT", "8080"),
		BaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		DBPath:       getEnv("DB_PATH", "./data/notch.db"),
		ServiceToken: getEnv("SERVICE_TOKEN", ""),
		SessionDays:  getEnvInt("SESSION_DAYS", 30),
		Ntfy: NtfyConfig{
			BaseURL:     getEnv("NTFY_BASE_URL", "http://localhost:8082"),
			TopicPrefix: getEnv("NTFY_TOPIC_PREFIX", "notch-"),
			Timeout:     10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:      getEnvBool("SCHEDULER_ENABLED", true),
			PollInterval: time.Duration(getEnvInt("SCHEDULER_POLL_SECONDS", 1)) * time.Second,
			BatchSize:    25,
			RetryBackoff: 30 * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
