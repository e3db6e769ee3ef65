package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplens/field-inference/internal/chat"
	"github.com/croplens/field-inference/internal/domain"
	"github.com/croplens/field-inference/internal/observability"
)

type recordingStore struct {
	mu         sync.Mutex
	heartbeats []string
	feedback   []string
	err        error
}

func (s *recordingStore) UpsertHeartbeat(_ context.Context, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats = append(s.heartbeats, version)
	return s.err
}

func (s *recordingStore) AppendFeedback(_ context.Context, eventID string, _ domain.InferenceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, eventID)
	return s.err
}

type stubAssistant struct {
	reply chat.Reply
	err   error
}

func (a *stubAssistant) Answer(context.Context, chat.Packet) (chat.Reply, error) {
	return a.reply, a.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(store Store, assistant chat.Assistant) (*Engine, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	e := NewWithClock(testLogger(), observability.NewMetricsForTesting(), store, assistant, time.Second, clock)
	return e, clock
}

func sampleRequest() domain.InferenceRequest {
	return domain.InferenceRequest{
		Objective: "water",
		NDVI:      &domain.NDVIStats{Min: 0.2, Max: 0.6, Mean: 0.45},
		Weather:   &domain.WeatherSnapshot{TemperatureC: 24, HumidityPct: 58, PrecipitationMM: 1.2},
		Soil:      &domain.SoilStats{Mean: 0.22},
		ET:        &domain.ETStats{Mean: 4.0},
		Samples: []domain.Sample{
			{NDVI: 0.40}, {NDVI: 0.41}, {NDVI: 0.42}, {NDVI: 0.43},
			{NDVI: 0.44}, {NDVI: 0.44}, {NDVI: 0.45}, {NDVI: 0.45},
		},
		Providers: []domain.ProviderDiagnostic{
			{Name: "sentinel", OK: true},
			{Name: "weather", OK: true},
		},
	}
}

func TestInfer_ProducesCompleteResult(t *testing.T) {
	e, clock := newTestEngine(nil, nil)

	result := e.Infer(context.Background(), sampleRequest())

	assert.Equal(t, Version, result.Engine)
	assert.Equal(t, domain.ObjectiveWater, result.Objective)
	assert.Equal(t, clock.Now().UTC(), result.GeneratedAt)
	assert.GreaterOrEqual(t, result.Confidence, 0.2)
	assert.LessOrEqual(t, result.Confidence, 0.99)
	assert.Equal(t, 3, result.Zones.K)
	assert.NotEmpty(t, result.Recommendations)
	assert.NotEmpty(t, result.Summary.Headline)
	assert.Equal(t, []string{"sentinel", "weather"}, result.Diagnostics.ProvidersTried)
}

func TestInfer_DefaultsEmptyRequest(t *testing.T) {
	e, _ := newTestEngine(nil, nil)

	result := e.Infer(context.Background(), domain.InferenceRequest{})

	assert.Equal(t, domain.ObjectiveBalanced, result.Objective)
	assert.GreaterOrEqual(t, result.Confidence, 0.2)
	assert.NotEmpty(t, result.Summary.ForecastOutlook)
	assert.Empty(t, result.Diagnostics.ProvidersTried)
}

func TestInfer_DeterministicForIdenticalRequests(t *testing.T) {
	e, _ := newTestEngine(nil, nil)

	first := e.Infer(context.Background(), sampleRequest())
	second := e.Infer(context.Background(), sampleRequest())

	assert.Equal(t, first.Features, second.Features)
	assert.Equal(t, first.Forecast, second.Forecast)
	assert.Equal(t, first.Zones, second.Zones)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestInfer_HostileSeriesStaysBoundedAndSerializable(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	req := domain.InferenceRequest{
		Samples: []domain.Sample{
			{NDVI: 1e308}, {NDVI: 1e308}, {NDVI: 1e308}, {NDVI: 1e308},
			{NDVI: math.NaN()}, {NDVI: math.Inf(1)}, {NDVI: 1e308}, {NDVI: 1e308},
		},
	}

	result := e.Infer(context.Background(), req)

	assert.GreaterOrEqual(t, result.Forecast.NDVI7d, -0.3)
	assert.LessOrEqual(t, result.Forecast.NDVI7d, 0.95)
	assert.GreaterOrEqual(t, result.Forecast.Risk7d, 0.0)
	assert.LessOrEqual(t, result.Forecast.Risk30d, 1.0)
	assert.False(t, math.IsNaN(result.Forecast.NDVI30d))

	_, err := json.Marshal(result)
	require.NoError(t, err)
}

func TestPersist_WritesHeartbeatAndFeedback(t *testing.T) {
	store := &recordingStore{}
	e, _ := newTestEngine(store, nil)

	e.persist(domain.InferenceResult{Engine: Version})

	require.Len(t, store.heartbeats, 1)
	assert.Equal(t, Version, store.heartbeats[0])
	require.Len(t, store.feedback, 1)
	assert.NotEmpty(t, store.feedback[0])
}

func TestPersist_SwallowsStoreErrors(t *testing.T) {
	store := &recordingStore{err: errors.New("broker down")}
	e, _ := newTestEngine(store, nil)

	e.persist(domain.InferenceResult{})

	assert.Len(t, store.heartbeats, 1)
	assert.Len(t, store.feedback, 1)
}

func TestSimulate_UsesScenarioInput(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	req := sampleRequest()
	req.Scenario = &domain.ScenarioInput{IrrigationDelta: 0.2, WaterBudget: 0.5}

	result := e.Simulate(req)

	assert.Less(t, result.ScenarioRisk7d, result.BaselineRisk7d)
	assert.Greater(t, result.WaterUseDeltaPct, 0.0)
}

func TestSimulate_NilScenarioIsNoIntervention(t *testing.T) {
	e, _ := newTestEngine(nil, nil)

	result := e.Simulate(sampleRequest())

	assert.Equal(t, 0.0, result.WaterUseDeltaPct)
}

func TestChat_UsesAssistantWhenAvailable(t *testing.T) {
	assistant := &stubAssistant{reply: chat.Reply{Answer: "the field looks fine"}}
	e, _ := newTestEngine(nil, assistant)

	_, reply := e.Chat(context.Background(), sampleRequest())

	assert.Equal(t, chat.ModeAssistant, reply.Mode)
	assert.Equal(t, "the field looks fine", reply.Answer)
}

func TestChat_FallsBackOnAssistantError(t *testing.T) {
	assistant := &stubAssistant{err: errors.New("timeout")}
	e, _ := newTestEngine(nil, assistant)

	_, reply := e.Chat(context.Background(), sampleRequest())

	assert.Equal(t, chat.ModeTemplate, reply.Mode)
	assert.NotEmpty(t, reply.Answer)
}

func TestChat_FallsBackOnEmptyAssistantAnswer(t *testing.T) {
	assistant := &stubAssistant{reply: chat.Reply{}}
	e, _ := newTestEngine(nil, assistant)

	_, reply := e.Chat(context.Background(), sampleRequest())

	assert.Equal(t, chat.ModeTemplate, reply.Mode)
}

func TestChat_NoAssistantComposesTemplate(t *testing.T) {
	e, _ := newTestEngine(nil, nil)

	result, reply := e.Chat(context.Background(), domain.InferenceRequest{Prompt: "how is the field"})

	assert.Equal(t, chat.ModeTemplate, reply.Mode)
	assert.NotEmpty(t, reply.Answer)
	assert.Equal(t, Version, result.Engine)
}

func TestCheckReadiness(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	assert.NoError(t, e.CheckReadiness(context.Background()))
}

func TestOverallConfidence_Bounds(t *testing.T) {
	low := overallConfidence(domain.FeatureVector{}, domain.ObjectiveBalanced,
		domain.DataQualityReport{Score: 0}, domain.Forecast{Risk7d: 1}, domain.Anomaly{Score: 0})
	high := overallConfidence(domain.FeatureVector{NDVIMean: 0.8, SoilMoistureMean: 0.4}, domain.ObjectiveBalanced,
		domain.DataQualityReport{Score: 1}, domain.Forecast{Risk7d: 0.2}, domain.Anomaly{Score: 0.2})

	assert.GreaterOrEqual(t, low, 0.2)
	assert.LessOrEqual(t, high, 0.99)
	assert.Greater(t, high, low)
}
