package domain

// Smoothing weights for the additive level/trend/seasonal forecast.
const (
	levelWeight    = 0.45
	trendWeight    = 0.25
	seasonalWeight = 0.2
)

// Forecast horizons and output bounds.
const (
	forecastSteps   = 30
	forecastFloor   = -0.3
	forecastCeiling = 0.95
)

// BuildForecast projects the vegetation index 7 and 30 steps ahead using
// additive double-seasonal exponential smoothing over the raw series, and
// derives a horizon risk for each. It is total: non-finite or out-of-range
// samples are coerced to the vegetation-index domain before smoothing, so
// the output bounds hold for any input. A series shorter than 4 samples
// degenerates to the current mean repeated 4x.
func BuildForecast(fv FeatureVector, series []float64) Forecast {
	fill := clamp(finiteOr(fv.NDVIMean, defaultNDVIMean), -1, 1)
	coerced := make([]float64, len(series))
	for i, v := range series {
		coerced[i] = clamp(finiteOr(v, fill), -1, 1)
	}
	series = coerced

	if len(series) < 4 {
		series = []float64{fill, fill, fill, fill}
	}

	projected := smoothedProjection(series, forecastSteps)

	ndvi7 := clamp(mean(projected[:7]), forecastFloor, forecastCeiling)
	ndvi30 := clamp(mean(projected), forecastFloor, forecastCeiling)

	return Forecast{
		NDVI7d:  round4(ndvi7),
		NDVI30d: round4(ndvi30),
		Risk7d:  round4(horizonRisk(ndvi7, fv)),
		Risk30d: round4(horizonRisk(ndvi30, fv)),
		Trend:   trendLabel(series),
	}
}

// seasonLength picks the season adaptively: 12 for long series, 7 for
// medium, 4 otherwise, never more than half the series and never below 2.
func seasonLength(n int) int {
	m := 4
	switch {
	case n >= 24:
		m = 12
	case n >= 14:
		m = 7
	}
	if half := n / 2; m > half {
		m = half
	}
	if m < 2 {
		m = 2
	}
	return m
}

// smoothedProjection runs additive exponential smoothing with level, trend,
// and seasonal components over the series and projects steps ahead.
func smoothedProjection(series []float64, steps int) []float64 {
	n := len(series)
	m := seasonLength(n)

	level := mean(series[:m])
	trend := 0.0
	if n >= 2*m {
		trend = (mean(series[m:2*m]) - mean(series[:m])) / float64(m)
	}
	seasonal := make([]float64, m)
	for i := 0; i < m; i++ {
		seasonal[i] = series[i] - level
	}

	for t := 0; t < n; t++ {
		idx := t % m
		prevLevel := level
		level = levelWeight*(series[t]-seasonal[idx]) + (1-levelWeight)*(level+trend)
		trend = trendWeight*(level-prevLevel) + (1-trendWeight)*trend
		seasonal[idx] = seasonalWeight*(series[t]-level) + (1-seasonalWeight)*seasonal[idx]
	}

	projected := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		projected[h-1] = level + float64(h)*trend + seasonal[(n+h-1)%m]
	}
	return projected
}

// horizonRisk combines canopy, water, heat, and ET stress for a projected
// NDVI value. Weights 0.45/0.25/0.2/0.1.
func horizonRisk(projectedNDVI float64, fv FeatureVector) float64 {
	canopy := clamp01((0.55 - projectedNDVI) * 1.8)
	water := fv.MoistureDeficit
	heat := fv.WeatherStress
	et := clamp01((fv.ETMean - 4.1) / 4)
	return clamp01(0.45*canopy + 0.25*water + 0.2*heat + 0.1*et)
}

// trendLabel compares the first-half and second-half means of the raw
// series: delta beyond ±0.04 labels the trend, anything else is stable.
// Fewer than 3 samples is always stable.
func trendLabel(series []float64) string {
	n := len(series)
	if n < 3 {
		return TrendStable
	}
	half := n / 2
	delta := mean(series[half:]) - mean(series[:half])
	switch {
	case delta > 0.04:
		return TrendImproving
	case delta < -0.04:
		return TrendDeclining
	default:
		return TrendStable
	}
}
