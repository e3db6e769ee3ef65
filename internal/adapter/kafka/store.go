// Package kafka persists engine heartbeats and inference feedback as Kafka
// messages. It implements engine.Store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/croplens/field-inference/internal/config"
	"github.com/croplens/field-inference/internal/domain"
)

// Store produces heartbeat and feedback messages to their respective topics.
type Store struct {
	heartbeats *kafkago.Writer
	feedback   *kafkago.Writer
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewStore creates a Kafka-backed store for the configured topics.
func NewStore(cfg *config.Config, logger *slog.Logger) *Store {
	return NewStoreWithClock(cfg, logger, clockwork.NewRealClock())
}

// NewStoreWithClock creates a Store with an injected time source for tests.
func NewStoreWithClock(cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) *Store {
	return &Store{
		heartbeats: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.HeartbeatTopic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		},
		feedback: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.FeedbackTopic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		},
		logger: logger,
		clock:  clock,
	}
}

// UpsertHeartbeat publishes a liveness record keyed by engine version, so
// compacted topics retain one record per release.
func (s *Store) UpsertHeartbeat(ctx context.Context, version string) error {
	msg, err := s.heartbeatMessage(version)
	if err != nil {
		return err
	}
	return s.heartbeats.WriteMessages(ctx, msg)
}

// heartbeatMessage stamps the liveness record from the store's clock.
func (s *Store) heartbeatMessage(version string) (kafkago.Message, error) {
	return serializeHeartbeat(version, s.clock.Now().UTC())
}

// AppendFeedback publishes one inference outcome keyed by event ID.
func (s *Store) AppendFeedback(ctx context.Context, eventID string, result domain.InferenceResult) error {
	msg, err := serializeFeedback(eventID, result)
	if err != nil {
		return err
	}
	return s.feedback.WriteMessages(ctx, msg)
}

// Close flushes and closes both producers.
func (s *Store) Close() error {
	hbErr := s.heartbeats.Close()
	fbErr := s.feedback.Close()
	if hbErr != nil {
		return hbErr
	}
	return fbErr
}

type heartbeat struct {
	Version string    `json:"version"`
	SeenAt  time.Time `json:"seen_at"`
}

// serializeHeartbeat marshals a liveness record into a Kafka message.
func serializeHeartbeat(version string, seenAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(heartbeat{Version: version, SeenAt: seenAt})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize heartbeat: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(version),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_type", Value: []byte("heartbeat")},
			{Key: "seen_at", Value: []byte(seenAt.Format(time.RFC3339))},
		},
	}, nil
}

// serializeFeedback marshals an inference result into a Kafka message.
func serializeFeedback(eventID string, result domain.InferenceResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feedback: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(eventID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_type", Value: []byte("feedback")},
			{Key: "engine", Value: []byte(result.Engine)},
			{Key: "generated_at", Value: []byte(result.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
