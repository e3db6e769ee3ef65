package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calmFeatures() FeatureVector {
	return FeatureVector{
		NDVIMean:         0.55,
		NDVISpread:       0.1,
		Volatility:       0.02,
		Momentum:         0.01,
		SoilMoistureMean: 0.3,
		MoistureDeficit:  0,
		WeatherStress:    0,
		TemperatureC:     20,
		HumidityPct:      55,
	}
}

func TestSynthesize_IrrigationRuleFiresOnDrySoil(t *testing.T) {
	// Mirrors the documented example: mean NDVI 0.35, soil moisture 0.15,
	// water objective.
	fv := calmFeatures()
	fv.NDVIMean = 0.35
	fv.SoilMoistureMean = 0.15
	fv.MoistureDeficit = 0.45

	recs := Synthesize(fv, ObjectiveWater, 0.2)

	require.NotEmpty(t, recs)
	assert.Equal(t, "irrigation-tightening", recs[0].ID)
	assert.Equal(t, "Tighten irrigation scheduling", recs[0].Title)
}

func TestSynthesize_BaselineOnlyWhenNoRuleFires(t *testing.T) {
	recs := Synthesize(calmFeatures(), ObjectiveBalanced, 0.1)

	require.Len(t, recs, 1)
	assert.Equal(t, "baseline-operations", recs[0].ID)
	assert.Equal(t, PriorityLow, recs[0].Priority)
}

func TestSynthesize_NoBaselineWhenAnyRuleFires(t *testing.T) {
	fv := calmFeatures()
	fv.NDVISpread = 0.5 // trips zone scouting

	recs := Synthesize(fv, ObjectiveBalanced, 0.1)

	for _, rec := range recs {
		assert.NotEqual(t, "baseline-operations", rec.ID)
	}
}

func TestSynthesize_DiseaseRuleNeedsBothConditions(t *testing.T) {
	fv := calmFeatures()
	fv.HumidityPct = 90
	fv.TemperatureC = 20 // warm threshold not met

	recs := Synthesize(fv, ObjectiveBalanced, 0.1)
	for _, rec := range recs {
		assert.NotEqual(t, "disease-surveillance", rec.ID)
	}

	fv.TemperatureC = 28
	recs = Synthesize(fv, ObjectiveBalanced, 0.1)

	found := false
	for _, rec := range recs {
		if rec.ID == "disease-surveillance" {
			found = true
			assert.Equal(t, PriorityMedium, rec.Priority)
		}
	}
	assert.True(t, found)
}

func TestSynthesize_CappedAndOrdered(t *testing.T) {
	// Everything fires at once.
	fv := FeatureVector{
		NDVIMean:         0.1,
		NDVISpread:       0.6,
		Volatility:       0.3,
		Momentum:         -0.2,
		SoilMoistureMean: 0.05,
		MoistureDeficit:  0.9,
		WeatherStress:    0.7,
		TemperatureC:     33,
		HumidityPct:      90,
	}

	recs := Synthesize(fv, ObjectiveYield, 0.8)

	require.LessOrEqual(t, len(recs), maxRecommendations)
	require.Len(t, recs, 3)
	assert.Equal(t, "irrigation-tightening", recs[0].ID)
	assert.Equal(t, "zone-scouting", recs[1].ID)
	assert.Equal(t, "disease-surveillance", recs[2].ID)

	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.Confidence, 0.0)
		assert.LessOrEqual(t, rec.Confidence, 0.95)
		assert.Greater(t, rec.ExpectedImpactPct, 0.0)
		assert.NotEmpty(t, rec.Actions)
		assert.NotEmpty(t, rec.TimeWindow)
	}
}

func TestObjectiveRisk(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		worst := FeatureVector{NDVIMean: -1, MoistureDeficit: 1, WeatherStress: 1, Volatility: 1, Momentum: -1}
		best := FeatureVector{NDVIMean: 1, SoilMoistureMean: 0.5}

		for _, objective := range []Objective{ObjectiveBalanced, ObjectiveYield, ObjectiveWater} {
			assert.GreaterOrEqual(t, ObjectiveRisk(worst, objective), 0.0)
			assert.LessOrEqual(t, ObjectiveRisk(worst, objective), 1.0)
			assert.GreaterOrEqual(t, ObjectiveRisk(best, objective), 0.0)
			assert.LessOrEqual(t, ObjectiveRisk(best, objective), 1.0)
		}
	})

	t.Run("water objective weights moisture highest", func(t *testing.T) {
		dry := FeatureVector{NDVIMean: 0.6, MoistureDeficit: 0.9}

		assert.Greater(t, ObjectiveRisk(dry, ObjectiveWater), ObjectiveRisk(dry, ObjectiveYield))
	})

	t.Run("unknown objective falls back to balanced", func(t *testing.T) {
		fv := calmFeatures()
		assert.Equal(t, ObjectiveRisk(fv, ObjectiveBalanced), ObjectiveRisk(fv, Objective("bogus")))
	})
}

func TestDeriveTasks(t *testing.T) {
	recs := []Recommendation{
		{ID: "irrigation-tightening", Title: "Tighten irrigation scheduling", Priority: PriorityHigh, TimeWindow: "next 48 hours"},
		{ID: "zone-scouting", Title: "Run targeted zone scouting", Priority: PriorityMedium, TimeWindow: "this week"},
		{ID: "disease-surveillance", Title: "Increase disease surveillance", Priority: PriorityMedium, TimeWindow: "this week"},
		{ID: "baseline-operations", Title: "Maintain baseline operations", Priority: PriorityLow, TimeWindow: "next two weeks"},
	}

	tasks := DeriveTasks(recs)

	require.Len(t, tasks, maxTasks)
	assert.Equal(t, OwnerIrrigation, tasks[0].Owner)
	assert.Equal(t, OwnerScouting, tasks[1].Owner)
	assert.Equal(t, OwnerOperations, tasks[2].Owner)
	assert.Equal(t, "task-irrigation-tightening", tasks[0].ID)
	assert.Equal(t, PriorityHigh, tasks[0].Priority)
}
