package domain

import (
	"fmt"
	"sort"
)

// Anomaly level thresholds. See the package documentation for the signal
// weighting behind the score.
const (
	anomalyModerateAt = 0.35
	anomalyHighAt     = 0.65
)

// maxAnomalySignals bounds the ranked contributing-signal list.
const maxAnomalySignals = 4

// anomalySignal pairs one weighted contributor with its description.
type anomalySignal struct {
	contribution float64
	description  string
}

// ScoreAnomaly produces the bounded instability score, its discrete level,
// and a ranked list of contributing signals.
func ScoreAnomaly(fv FeatureVector) Anomaly {
	drop := clamp01(-fv.Delta7d * 8)
	volatility := clamp01(fv.Volatility * 5)
	moisture := fv.MoistureDeficit
	weather := fv.WeatherStress
	deceleration := clamp01(-fv.TrendAccel * 20)

	signals := []anomalySignal{
		{0.30 * drop, fmt.Sprintf("vegetation index dropped %.2f over the last week", -fv.Delta7d)},
		{0.20 * volatility, fmt.Sprintf("vegetation index volatility is elevated (%.2f)", fv.Volatility)},
		{0.25 * moisture, fmt.Sprintf("soil moisture deficit index at %.2f", fv.MoistureDeficit)},
		{0.15 * weather, fmt.Sprintf("weather stress index at %.2f", fv.WeatherStress)},
		{0.10 * deceleration, "canopy growth trend is decelerating"},
	}

	score := 0.0
	for _, s := range signals {
		score += s.contribution
	}
	score = clamp01(score)

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].contribution > signals[j].contribution
	})

	var ranked []string
	for _, s := range signals {
		if s.contribution <= 0.05 || len(ranked) == maxAnomalySignals {
			break
		}
		ranked = append(ranked, s.description)
	}

	return Anomaly{
		Score:   round4(score),
		Level:   anomalyLevel(score),
		Signals: ranked,
	}
}

// anomalyLevel maps a score to its discrete level, monotonic in score.
func anomalyLevel(score float64) string {
	switch {
	case score < anomalyModerateAt:
		return AnomalyLow
	case score < anomalyHighAt:
		return AnomalyModerate
	default:
		return AnomalyHigh
	}
}
