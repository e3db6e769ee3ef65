package domain

import (
	"fmt"
	"math"
	"strings"
)

// maxRecommendations caps the emitted list. Rules are evaluated in fixed
// order and never globally re-sorted.
const maxRecommendations = 4

// maxTasks caps how many leading recommendations become tasks.
const maxTasks = 3

// objectiveWeights holds the five sub-risk weights per objective:
// vegetation deficit, water deficit, heat, volatility, negative momentum.
var objectiveWeights = map[Objective][5]float64{
	ObjectiveBalanced: {0.30, 0.25, 0.15, 0.15, 0.15},
	ObjectiveYield:    {0.45, 0.15, 0.10, 0.15, 0.15},
	ObjectiveWater:    {0.20, 0.45, 0.10, 0.10, 0.15},
}

// ObjectiveRisk scores the field against the selected objective: a sigmoid
// of the weighted sub-risk sum, minus a fixed bias, clamped to [0,1].
func ObjectiveRisk(fv FeatureVector, objective Objective) float64 {
	weights, ok := objectiveWeights[objective]
	if !ok {
		weights = objectiveWeights[ObjectiveBalanced]
	}

	subRisks := [5]float64{
		clamp01((0.5 - fv.NDVIMean) * 2), // vegetation deficit
		fv.MoistureDeficit,               // water deficit
		fv.WeatherStress,                 // heat
		clamp01(fv.Volatility * 4),       // volatility
		clamp01(-fv.Momentum * 10),       // negative momentum
	}

	weighted := 0.0
	for i := range subRisks {
		weighted += weights[i] * subRisks[i]
	}
	return round4(clamp01(sigmoid(6*weighted-3) - 0.05))
}

// Synthesize turns the feature vector, objective, and anomaly score into a
// prioritized action list. Rules fire in fixed order; when none fire, a
// single baseline recommendation is emitted.
func Synthesize(fv FeatureVector, objective Objective, anomalyScore float64) []Recommendation {
	objectiveRisk := ObjectiveRisk(fv, objective)
	var recs []Recommendation

	if fv.SoilMoistureMean < 0.2 || objectiveRisk > 0.7 {
		driver := math.Max(objectiveRisk, anomalyScore)
		recs = append(recs, buildRecommendation(
			"irrigation-tightening",
			"Tighten irrigation scheduling",
			driver,
			priorityBucket(driver),
			"Soil moisture is below target or the objective risk is elevated.",
			[]string{
				"Shorten the irrigation interval for the driest zones",
				"Verify emitter flow rates against the schedule",
				"Re-check soil moisture readings after the next cycle",
			},
			[]string{
				fmt.Sprintf("soil moisture mean %.2f", fv.SoilMoistureMean),
				fmt.Sprintf("objective risk %.2f", objectiveRisk),
			},
		))
	}

	if fv.NDVISpread > 0.38 || fv.Volatility > 0.12 {
		driver := clamp01(math.Max(fv.NDVISpread*1.8, fv.Volatility*5))
		recs = append(recs, buildRecommendation(
			"zone-scouting",
			"Run targeted zone scouting",
			driver,
			priorityBucket(clamp01(fv.NDVISpread*1.8)),
			"Canopy response is uneven across the area of interest.",
			[]string{
				"Walk the lowest-index zone transects",
				"Photograph and log any visible stress patterns",
				"Compare findings against the zone centroids",
			},
			[]string{
				fmt.Sprintf("NDVI spread %.2f", fv.NDVISpread),
				fmt.Sprintf("NDVI volatility %.2f", fv.Volatility),
			},
		))
	}

	if fv.HumidityPct > 82 && fv.TemperatureC > 24 {
		driver := clamp01(0.4 + fv.WeatherStress)
		recs = append(recs, buildRecommendation(
			"disease-surveillance",
			"Increase disease surveillance",
			driver,
			PriorityMedium, // fixed bucket for this rule
			"Warm, humid conditions favor fungal development.",
			[]string{
				"Inspect the densest canopy sections for early lesions",
				"Review the spray window for the coming week",
			},
			[]string{
				fmt.Sprintf("humidity %.0f%%", fv.HumidityPct),
				fmt.Sprintf("temperature %.1f°C", fv.TemperatureC),
			},
		))
	}

	if len(recs) == 0 {
		recs = append(recs, buildRecommendation(
			"baseline-operations",
			"Maintain baseline operations",
			0.2,
			PriorityLow,
			"No threshold rule fired; current indicators are within normal ranges.",
			[]string{
				"Continue the current irrigation schedule",
				"Review the next inference after fresh imagery arrives",
			},
			nil,
		))
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// buildRecommendation derives impact, confidence, and time window from the
// triggering risk driver.
func buildRecommendation(id, title string, driver float64, priority, reason string, actions, evidence []string) Recommendation {
	return Recommendation{
		ID:                id,
		Title:             title,
		Priority:          priority,
		Reason:            reason,
		Actions:           actions,
		ExpectedImpactPct: math.Round(driver*22 + 6),
		Confidence:        round2(clamp(0.5+driver*0.4, 0, 0.95)),
		TimeWindow:        timeWindow(priority),
		Evidence:          evidence,
	}
}

// priorityBucket maps a [0,1] driver to a priority label.
func priorityBucket(driver float64) string {
	switch {
	case driver >= 0.7:
		return PriorityHigh
	case driver >= 0.45:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func timeWindow(priority string) string {
	switch priority {
	case PriorityHigh:
		return "next 48 hours"
	case PriorityMedium:
		return "this week"
	default:
		return "next two weeks"
	}
}

// DeriveTasks converts a capped prefix of the recommendations into work
// items, inferring the owner from the recommendation ID.
func DeriveTasks(recs []Recommendation) []Task {
	n := len(recs)
	if n > maxTasks {
		n = maxTasks
	}
	tasks := make([]Task, 0, n)
	for _, rec := range recs[:n] {
		tasks = append(tasks, Task{
			ID:         "task-" + rec.ID,
			Title:      rec.Title,
			Owner:      taskOwner(rec.ID),
			Priority:   rec.Priority,
			TimeWindow: rec.TimeWindow,
		})
	}
	return tasks
}

// taskOwner infers the owning team from a recommendation ID.
func taskOwner(recID string) string {
	switch {
	case strings.Contains(recID, "irrigation"):
		return OwnerIrrigation
	case strings.Contains(recID, "scouting"):
		return OwnerScouting
	default:
		return OwnerOperations
	}
}
