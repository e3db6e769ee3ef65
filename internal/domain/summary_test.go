package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSummary(t *testing.T) {
	fv := FeatureVector{NDVIMean: 0.42}
	forecast := Forecast{NDVI7d: 0.44, NDVI30d: 0.47, Risk7d: 0.3, Risk30d: 0.25, Trend: TrendImproving}
	anomaly := Anomaly{Level: AnomalyLow}
	recs := []Recommendation{{Title: "Run targeted zone scouting", Priority: PriorityMedium, TimeWindow: "this week"}}

	s := BuildSummary(fv, forecast, anomaly, recs, 0.81)

	assert.Contains(t, s.Headline, "improving")
	assert.Contains(t, s.Headline, "low instability")
	assert.Contains(t, s.ForecastOutlook, "0.44")
	assert.Contains(t, s.ForecastOutlook, "0.47")
	assert.Contains(t, s.RiskOutlook, "easing")
	assert.Contains(t, s.RiskOutlook, "0.81")
	assert.Contains(t, s.RecommendedFocus, "zone scouting")
	assert.Contains(t, s.RecommendedFocus, "medium priority")
}

func TestBuildSummary_NoRecommendations(t *testing.T) {
	s := BuildSummary(FeatureVector{}, Forecast{Trend: TrendStable, Risk30d: 0.4, Risk7d: 0.3}, Anomaly{Level: AnomalyLow}, nil, 0.5)

	assert.Equal(t, "Maintain baseline operations.", s.RecommendedFocus)
	assert.Contains(t, s.RiskOutlook, "rising")
}
