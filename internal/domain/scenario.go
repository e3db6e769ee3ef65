package domain

import (
	"fmt"
	"math"
)

// Intervention bounds. Inputs outside these ranges are clamped, never
// rejected.
const (
	irrigationDeltaMin = -0.35
	irrigationDeltaMax = 0.6
	fertilizerDeltaMin = -0.2
	fertilizerDeltaMax = 0.3
	targetRiskMin      = 0.05
	targetRiskMax      = 0.95
)

// SimulateScenario is a pure counterfactual: given the current features and
// a proposed intervention, it returns the risk, yield-proxy, and water-use
// deltas. Identical arguments always produce bit-identical results.
func SimulateScenario(fv FeatureVector, in ScenarioInput) ScenarioResult {
	irrigation := clamp(finiteOr(in.IrrigationDelta, 0), irrigationDeltaMin, irrigationDeltaMax)
	waterBudget := clamp01(finiteOr(in.WaterBudget, 0.5))
	fertilizer := clamp(finiteOr(in.FertilizerDelta, 0), fertilizerDeltaMin, fertilizerDeltaMax)
	targetRisk := clamp(finiteOr(in.TargetRisk, 0.5), targetRiskMin, targetRiskMax)

	baselineRisk := clamp01(fv.MoistureDeficit*0.45 + fv.WeatherStress*0.25 + math.Max(0, 0.42-fv.NDVIMean)*0.8)
	baselineNDVI30 := clamp(fv.NDVIMean+fv.Delta30d, forecastFloor, forecastCeiling)

	uplift := irrigation*0.18*(0.4+0.6*waterBudget) + fertilizer*0.12
	scenarioNDVI30 := clamp(baselineNDVI30+uplift, forecastFloor, forecastCeiling)
	scenarioRisk := clamp01(baselineRisk - irrigation*0.35*waterBudget - fertilizer*0.10)

	recommendation := "The proposed intervention does not materially reduce short-term risk; consider a larger irrigation adjustment or revisit after fresh imagery."
	if scenarioRisk < baselineRisk {
		recommendation = fmt.Sprintf(
			"The proposed intervention lowers short-term risk to %.2f against a target of %.2f; schedule it within the next irrigation window.",
			scenarioRisk, targetRisk,
		)
	}

	magnitude := math.Abs(irrigation) + math.Abs(fertilizer)
	confidence := clamp(0.85-fv.LatencyPenalty*0.25-magnitude*0.30, 0.2, 0.95)

	return ScenarioResult{
		BaselineRisk7d:     round4(baselineRisk),
		ScenarioRisk7d:     round4(scenarioRisk),
		BaselineNDVI30d:    round4(baselineNDVI30),
		ScenarioNDVI30d:    round4(scenarioNDVI30),
		WaterUseDeltaPct:   round1(irrigation * 100 * (0.6 + 0.4*waterBudget)),
		YieldProxyDeltaPct: round1((scenarioNDVI30 - baselineNDVI30) * 65),
		Confidence:         round4(confidence),
		Recommendation:     recommendation,
	}
}
