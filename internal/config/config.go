package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka persistence side channel (heartbeat upsert, feedback append).
	KafkaBrokers   []string
	KafkaEnabled   bool
	HeartbeatTopic string
	FeedbackTopic  string
	PersistTimeout time.Duration

	// External conversational assistant.
	AssistantURL      string
	AssistantToken    string
	AssistantEnabled  bool
	AssistantTimeout  time.Duration
	AssistantCooldown time.Duration

	// Shared collaborator state store.
	StateCacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	persistTimeout, err := durationOrDefault("PERSIST_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	assistantTimeout, err := durationOrDefault("ASSISTANT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	assistantCooldown, err := durationOrDefault("ASSISTANT_COOLDOWN", 30*time.Second)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	assistantURL := os.Getenv("ASSISTANT_URL")
	assistantEnabled := assistantURL != ""
	if v := os.Getenv("ASSISTANT_ENABLED"); v != "" {
		assistantEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:   brokers,
		KafkaEnabled:   kafkaEnabled,
		HeartbeatTopic: envOrDefault("KAFKA_HEARTBEAT_TOPIC", "engine-heartbeats"),
		FeedbackTopic:  envOrDefault("KAFKA_FEEDBACK_TOPIC", "inference-feedback"),
		PersistTimeout: persistTimeout,

		AssistantURL:      assistantURL,
		AssistantToken:    os.Getenv("ASSISTANT_TOKEN"),
		AssistantEnabled:  assistantEnabled,
		AssistantTimeout:  assistantTimeout,
		AssistantCooldown: assistantCooldown,

		StateCacheSize: parseStateCacheSize(),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && (cfg.HeartbeatTopic == "" || cfg.FeedbackTopic == "") {
		return nil, errors.New("KAFKA_HEARTBEAT_TOPIC and KAFKA_FEEDBACK_TOPIC are required when Kafka is enabled")
	}
	if cfg.AssistantEnabled && cfg.AssistantURL == "" {
		return nil, errors.New("ASSISTANT_ENABLED is true but ASSISTANT_URL is not set")
	}

	return cfg, nil
}

// envOrDefault returns the environment value for key, or fallback when
// unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOrDefault parses a duration environment variable, rejecting
// non-positive values.
func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, trimming whitespace
// and dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, part := range strings.Split(s, ",") {
		if b := strings.TrimSpace(part); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseStateCacheSize() int {
	if s := os.Getenv("STATE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
