package domain

import "fmt"

// BuildSummary renders the four-field templated narrative from the
// aggregate values. No free text generation happens here.
func BuildSummary(fv FeatureVector, forecast Forecast, anomaly Anomaly, recs []Recommendation, confidence float64) Summary {
	headline := fmt.Sprintf(
		"Canopy health is %s with a mean vegetation index of %.2f and %s instability.",
		trendAdjective(forecast.Trend), fv.NDVIMean, anomaly.Level,
	)

	forecastOutlook := fmt.Sprintf(
		"Vegetation index is projected at %.2f over 7 days and %.2f over 30 days.",
		forecast.NDVI7d, forecast.NDVI30d,
	)

	riskOutlook := fmt.Sprintf(
		"Short-horizon risk is %.2f rising to %.2f at 30 days; overall confidence %.2f.",
		forecast.Risk7d, forecast.Risk30d, confidence,
	)
	if forecast.Risk30d <= forecast.Risk7d {
		riskOutlook = fmt.Sprintf(
			"Short-horizon risk is %.2f easing to %.2f at 30 days; overall confidence %.2f.",
			forecast.Risk7d, forecast.Risk30d, confidence,
		)
	}

	focus := "Maintain baseline operations."
	if len(recs) > 0 {
		focus = fmt.Sprintf("%s (%s priority, %s).", recs[0].Title, recs[0].Priority, recs[0].TimeWindow)
	}

	return Summary{
		Headline:         headline,
		ForecastOutlook:  forecastOutlook,
		RiskOutlook:      riskOutlook,
		RecommendedFocus: focus,
	}
}

func trendAdjective(trend string) string {
	switch trend {
	case TrendImproving:
		return "improving"
	case TrendDeclining:
		return "declining"
	default:
		return "holding steady"
	}
}
