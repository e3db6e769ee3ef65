package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "engine-heartbeats", cfg.HeartbeatTopic)
	assert.Equal(t, "inference-feedback", cfg.FeedbackTopic)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.False(t, cfg.AssistantEnabled)
	assert.Empty(t, cfg.AssistantURL)
	assert.Equal(t, 5*time.Second, cfg.AssistantTimeout)
	assert.Equal(t, 30*time.Second, cfg.AssistantCooldown)
	assert.Equal(t, 1000, cfg.StateCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_HEARTBEAT_TOPIC", "hb")
	t.Setenv("KAFKA_FEEDBACK_TOPIC", "fb")
	t.Setenv("ASSISTANT_URL", "http://assistant.internal")
	t.Setenv("ASSISTANT_TOKEN", "tok")
	t.Setenv("ASSISTANT_TIMEOUT", "2s")
	t.Setenv("ASSISTANT_COOLDOWN", "1m")
	t.Setenv("STATE_CACHE_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "hb", cfg.HeartbeatTopic)
	assert.Equal(t, "fb", cfg.FeedbackTopic)
	assert.True(t, cfg.AssistantEnabled)
	assert.Equal(t, "http://assistant.internal", cfg.AssistantURL)
	assert.Equal(t, "tok", cfg.AssistantToken)
	assert.Equal(t, 2*time.Second, cfg.AssistantTimeout)
	assert.Equal(t, time.Minute, cfg.AssistantCooldown)
	assert.Equal(t, 50, cfg.StateCacheSize)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_AssistantEnabledWithoutURL(t *testing.T) {
	t.Setenv("ASSISTANT_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASSISTANT_URL")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_KafkaDisableOverride(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
