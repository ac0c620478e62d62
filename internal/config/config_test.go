package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/notch.db", cfg.DBPath)
	assert.Equal(t, 30, cfg.SessionDays)
	assert.Equal(t, "notch-", cfg.Ntfy.TopicPrefix)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Second, cfg.Scheduler.PollInterval)
	assert.Equal(t, 25, cfg.Scheduler.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.RetryBackoff)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SESSION_DAYS", "7")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("SCHEDULER_POLL_SECONDS", "5")
	t.Setenv("NTFY_BASE_URL", "https://ntfy.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 7, cfg.SessionDays)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.PollInterval)
	assert.Equal(t, "https://ntfy.example.com", cfg.Ntfy.BaseURL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_DAYS", "soon")
	t.Setenv("SCHEDULER_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 30, cfg.SessionDays)
	assert.True(t, cfg.Scheduler.Enabled)
}
