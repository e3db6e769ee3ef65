// Package engine orchestrates the inference pipeline: feature extraction,
// forecasting, anomaly scoring, and zone clustering fan out concurrently,
// then recommendations, tasks, and the narrative summary are synthesized
// from the joined results.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/croplens/field-inference/internal/chat"
	"github.com/croplens/field-inference/internal/domain"
	"github.com/croplens/field-inference/internal/observability"
)

// Version tags every result and heartbeat with the engine release.
const Version = "field-inference/1.2.0"

// Store persists engine liveness and inference outcomes. Both operations
// are best effort; the request path never blocks on them.
type Store interface {
	UpsertHeartbeat(ctx context.Context, version string) error
	AppendFeedback(ctx context.Context, eventID string, result domain.InferenceResult) error
}

// Engine runs the full inference pipeline for one request at a time and is
// safe for concurrent use.
type Engine struct {
	logger         *slog.Logger
	metrics        *observability.Metrics
	store          Store
	assistant      chat.Assistant
	composer       *chat.Composer
	persistTimeout time.Duration
	clock          clockwork.Clock
}

// New creates an Engine. store and assistant may be nil, in which case
// persistence is skipped and chat always falls back to the template
// composer.
func New(logger *slog.Logger, metrics *observability.Metrics, store Store, assistant chat.Assistant, persistTimeout time.Duration) *Engine {
	return NewWithClock(logger, metrics, store, assistant, persistTimeout, clockwork.NewRealClock())
}

// NewWithClock creates an Engine with an injected time source for tests.
func NewWithClock(logger *slog.Logger, metrics *observability.Metrics, store Store, assistant chat.Assistant, persistTimeout time.Duration, clock clockwork.Clock) *Engine {
	return &Engine{
		logger:         logger,
		metrics:        metrics,
		store:          store,
		assistant:      assistant,
		composer:       chat.NewComposer(),
		persistTimeout: persistTimeout,
		clock:          clock,
	}
}

// Infer runs the full pipeline for one request and returns the aggregate
// decision artifact. The result is complete and self-contained; persistence
// happens asynchronously after return.
func (e *Engine) Infer(ctx context.Context, req domain.InferenceRequest) domain.InferenceResult {
	start := e.clock.Now()

	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = "inference"
	}
	e.metrics.InferenceRequests.WithLabelValues(analysisType).Inc()

	objective := domain.NormalizeObjective(req.Objective)
	features, quality := domain.ExtractFeatures(req)
	series := req.SeriesValues()

	var (
		wg       sync.WaitGroup
		forecast domain.Forecast
		anomaly  domain.Anomaly
		zones    domain.ZoneSummary
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		forecast = domain.BuildForecast(features, series)
	}()
	go func() {
		defer wg.Done()
		anomaly = domain.ScoreAnomaly(features)
	}()
	go func() {
		defer wg.Done()
		zones = domain.ClusterZones(features, req.Preview)
	}()
	wg.Wait()

	recommendations := domain.Synthesize(features, objective, anomaly.Score)
	tasks := domain.DeriveTasks(recommendations)
	confidence := overallConfidence(features, objective, quality, forecast, anomaly)
	summary := domain.BuildSummary(features, forecast, anomaly, recommendations, confidence)

	result := domain.InferenceResult{
		Engine:          Version,
		Objective:       objective,
		Confidence:      confidence,
		Quality:         quality,
		Features:        features,
		Forecast:        forecast,
		Anomaly:         anomaly,
		Zones:           zones,
		Recommendations: recommendations,
		Tasks:           tasks,
		Summary:         summary,
		Diagnostics:     buildDiagnostics(req, quality),
		GeneratedAt:     e.clock.Now().UTC(),
	}

	e.metrics.InferenceDuration.Observe(e.clock.Since(start).Seconds())

	if e.store != nil {
		go e.persist(result)
	}

	e.logger.Info("inference complete",
		"analysis_type", analysisType,
		"objective", objective,
		"confidence", confidence,
		"anomaly_level", anomaly.Level,
		"zone_source", zones.Source,
	)

	return result
}

// Simulate runs the counterfactual scenario simulator against the features
// of the given request. Nothing is persisted.
func (e *Engine) Simulate(req domain.InferenceRequest) domain.ScenarioResult {
	e.metrics.ScenarioRequests.Inc()

	features, _ := domain.ExtractFeatures(req)
	var in domain.ScenarioInput
	if req.Scenario != nil {
		in = *req.Scenario
	}
	return domain.SimulateScenario(features, in)
}

// Chat runs inference, hands the condensed packet to the assistant
// collaborator, and falls back to the deterministic template composer when
// the assistant is unavailable or fails.
func (e *Engine) Chat(ctx context.Context, req domain.InferenceRequest) (domain.InferenceResult, chat.Reply) {
	if req.AnalysisType == "" {
		req.AnalysisType = "chat"
	}
	result := e.Infer(ctx, req)
	packet := chat.BuildPacket(req, result)

	var reply chat.Reply
	if e.assistant != nil {
		answered, err := e.assistant.Answer(ctx, packet)
		if err == nil {
			reply = answered
			reply.Mode = chat.ModeAssistant
		} else {
			e.logger.Warn("assistant unavailable, composing template reply", "error", err)
		}
	}
	if reply.Answer == "" {
		reply = e.composer.Compose(packet, result, req)
	}

	e.metrics.ChatReplies.WithLabelValues(reply.Mode).Inc()
	return result, reply
}

// CheckReadiness reports whether the engine can serve. The pipeline is
// stateless, so readiness follows liveness.
func (e *Engine) CheckReadiness(ctx context.Context) error {
	return nil
}

// persist writes the heartbeat and feedback records on a detached context
// so an abandoned request cannot cancel them. Failures are logged and
// counted, never surfaced to the caller.
func (e *Engine) persist(result domain.InferenceResult) {
	ctx, cancel := context.WithTimeout(context.Background(), e.persistTimeout)
	defer cancel()

	if err := e.store.UpsertHeartbeat(ctx, Version); err != nil {
		e.metrics.PersistFailures.WithLabelValues("heartbeat").Inc()
		e.logger.Warn("heartbeat upsert failed", "error", err)
	}

	eventID := uuid.NewString()
	if err := e.store.AppendFeedback(ctx, eventID, result); err != nil {
		e.metrics.PersistFailures.WithLabelValues("feedback").Inc()
		e.logger.Warn("feedback append failed", "event_id", eventID, "error", err)
	}
}

// overallConfidence blends input quality, cross-model agreement, and
// objective risk into one bounded confidence figure.
func overallConfidence(fv domain.FeatureVector, objective domain.Objective, quality domain.DataQualityReport, forecast domain.Forecast, anomaly domain.Anomaly) float64 {
	agreement := 1 - math.Min(1, math.Abs(forecast.Risk7d-anomaly.Score))
	objectiveRisk := domain.ObjectiveRisk(fv, objective)

	confidence := quality.Score*0.6 + agreement*0.25 + (1-objectiveRisk)*0.15
	confidence = math.Min(0.99, math.Max(0.2, confidence))
	return math.Round(confidence*100) / 100
}

func buildDiagnostics(req domain.InferenceRequest, quality domain.DataQualityReport) domain.Diagnostics {
	var providers []string
	for _, p := range req.Providers {
		providers = append(providers, p.Name)
	}
	return domain.Diagnostics{
		ProvidersTried: providers,
		Warnings:       quality.Warnings,
	}
}
