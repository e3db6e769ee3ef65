package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	assistantadapter "github.com/croplens/field-inference/internal/adapter/assistant"
	"github.com/croplens/field-inference/internal/adapter/httpapi"
	kafkaadapter "github.com/croplens/field-inference/internal/adapter/kafka"
	"github.com/croplens/field-inference/internal/cache"
	"github.com/croplens/field-inference/internal/chat"
	"github.com/croplens/field-inference/internal/config"
	"github.com/croplens/field-inference/internal/engine"
	"github.com/croplens/field-inference/internal/observability"
)

func main() {
	// Best effort: a missing .env is the normal production case.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	state := cache.New(cfg.StateCacheSize)

	// Assistant collaborator (feature-flagged via ASSISTANT_ENABLED / ASSISTANT_URL).
	var assistant chat.Assistant
	if cfg.AssistantEnabled {
		assistant = assistantadapter.NewClient(
			cfg.AssistantURL, cfg.AssistantToken,
			cfg.AssistantTimeout, cfg.AssistantCooldown,
			state, logger,
		)
		logger.Info("assistant collaborator enabled", "timeout", cfg.AssistantTimeout, "cooldown", cfg.AssistantCooldown)
	} else {
		logger.Info("assistant collaborator disabled, chat uses template composer")
	}

	// Kafka persistence (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var store engine.Store
	var kafkaStore *kafkaadapter.Store
	if cfg.KafkaEnabled {
		kafkaStore = kafkaadapter.NewStore(cfg, logger)
		store = kafkaStore
		logger.Info("kafka persistence enabled",
			"brokers", cfg.KafkaBrokers,
			"heartbeat_topic", cfg.HeartbeatTopic,
			"feedback_topic", cfg.FeedbackTopic,
		)
	} else {
		logger.Info("kafka persistence disabled")
	}

	eng := engine.New(logger, metrics, store, assistant, cfg.PersistTimeout)
	srv := httpapi.NewServer(cfg.HTTPAddr, eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.EngineUp.Set(1)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	metrics.EngineUp.Set(0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaStore != nil {
		if err := kafkaStore.Close(); err != nil {
			logger.Error("kafka store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
