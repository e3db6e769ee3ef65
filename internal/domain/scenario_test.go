package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioFeatures() FeatureVector {
	return FeatureVector{
		NDVIMean:        0.38,
		Delta30d:        -0.02,
		MoistureDeficit: 0.5,
		WeatherStress:   0.2,
		LatencyPenalty:  0.1,
	}
}

func TestSimulateScenario_Pure(t *testing.T) {
	in := ScenarioInput{IrrigationDelta: 0.2, WaterBudget: 0.7, FertilizerDelta: 0.1, TargetRisk: 0.3}

	first := SimulateScenario(scenarioFeatures(), in)
	second := SimulateScenario(scenarioFeatures(), in)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestSimulateScenario_NoInterventionNoChange(t *testing.T) {
	result := SimulateScenario(scenarioFeatures(), ScenarioInput{IrrigationDelta: 0, WaterBudget: 0.5})

	assert.InDelta(t, result.BaselineRisk7d, result.ScenarioRisk7d, 1e-4)
	assert.InDelta(t, result.BaselineNDVI30d, result.ScenarioNDVI30d, 1e-4)
	assert.InDelta(t, 0, result.WaterUseDeltaPct, 1e-9)
	assert.InDelta(t, 0, result.YieldProxyDeltaPct, 1e-9)
}

func TestSimulateScenario_IrrigationReducesRisk(t *testing.T) {
	result := SimulateScenario(scenarioFeatures(), ScenarioInput{IrrigationDelta: 0.4, WaterBudget: 0.8})

	assert.Less(t, result.ScenarioRisk7d, result.BaselineRisk7d)
	assert.Greater(t, result.ScenarioNDVI30d, result.BaselineNDVI30d)
	assert.Greater(t, result.WaterUseDeltaPct, 0.0)
	assert.Greater(t, result.YieldProxyDeltaPct, 0.0)
	assert.Contains(t, result.Recommendation, "lowers short-term risk")
}

func TestSimulateScenario_ClampsInterventions(t *testing.T) {
	wild := ScenarioInput{IrrigationDelta: 5, WaterBudget: 9, FertilizerDelta: -3, TargetRisk: 2}

	result := SimulateScenario(scenarioFeatures(), wild)

	// irrigationDelta clamps to 0.6, waterBudget to 1.
	assert.InDelta(t, 60.0, result.WaterUseDeltaPct, 1e-9)
	assert.GreaterOrEqual(t, result.ScenarioRisk7d, 0.0)
	assert.LessOrEqual(t, result.ScenarioRisk7d, 1.0)
	assert.GreaterOrEqual(t, result.Confidence, 0.2)
	assert.LessOrEqual(t, result.Confidence, 0.95)
}

func TestSimulateScenario_SmallerInterventionsScoreHigherConfidence(t *testing.T) {
	small := SimulateScenario(scenarioFeatures(), ScenarioInput{IrrigationDelta: 0.05, WaterBudget: 0.5})
	large := SimulateScenario(scenarioFeatures(), ScenarioInput{IrrigationDelta: 0.6, WaterBudget: 0.5, FertilizerDelta: 0.3})

	require.Greater(t, small.Confidence, large.Confidence)
}
