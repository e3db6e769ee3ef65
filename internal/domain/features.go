package domain

import "math"

// Climatological defaults used when an input category is absent. Chosen to
// be neutral: they produce near-zero stress indices on their own.
const (
	defaultNDVIMean     = 0.45
	defaultSoilMoisture = 0.25
	defaultETMean       = 4.1
	defaultTemperatureC = 22.0
	defaultHumidityPct  = 60.0
)

// cellBlendWeight localizes the area-wide NDVI mean toward the selected
// grid cell: 70% area, 30% cell.
const cellBlendWeight = 0.3

// ExtractFeatures normalizes a request into the fixed feature vector and
// its data-quality report. It is total: missing or non-finite inputs are
// replaced by documented defaults, never rejected.
func ExtractFeatures(req InferenceRequest) (FeatureVector, DataQualityReport) {
	series := req.SeriesValues()
	for i, v := range series {
		series[i] = clamp(finiteOr(v, defaultNDVIMean), -1, 1)
	}

	ndviMin, ndviMax, ndviMean := ndviStats(req, series)

	// Blend toward the selected cell when its stats are available.
	if cell := req.Grid.Cell(req.SelectedCell); cell != nil && cell.Stats != nil {
		cellMean := clamp(finiteOr(cell.Stats.Mean, ndviMean), -1, 1)
		ndviMean = (1-cellBlendWeight)*ndviMean + cellBlendWeight*cellMean
	}

	spread := math.Max(0, ndviMax-ndviMin)

	soil := defaultSoilMoisture
	if req.Soil != nil {
		soil = clamp01(finiteOr(req.Soil.Mean, defaultSoilMoisture))
	}
	et := defaultETMean
	if req.ET != nil {
		et = clamp(finiteOr(req.ET.Mean, defaultETMean), 0, 20)
	}

	temp, humidity, precip := defaultTemperatureC, defaultHumidityPct, 0.0
	if req.Weather != nil {
		temp = clamp(finiteOr(req.Weather.TemperatureC, defaultTemperatureC), -60, 60)
		humidity = clamp(finiteOr(req.Weather.HumidityPct, defaultHumidityPct), 0, 100)
		precip = clamp(finiteOr(req.Weather.PrecipitationMM, 0), 0, 500)
	}

	delta7 := delta7d(series)
	delta30 := delta30d(series, delta7)

	humidityTerm := 0.0
	if humidity > 84 {
		humidityTerm = 0.2
	}

	fv := FeatureVector{
		NDVIMin:    round4(ndviMin),
		NDVIMax:    round4(ndviMax),
		NDVIMean:   round4(clamp(ndviMean, -1, 1)),
		NDVISpread: round4(spread),

		Delta7d:    round4(delta7),
		Delta30d:   round4(delta30),
		TrendSlope: round4(olsSlope(series)),
		TrendAccel: round4(trendAcceleration(series)),
		Volatility: round4(stddev(series)),
		Momentum:   round4(momentum(series)),

		SoilMoistureMean: round4(soil),
		MoistureDeficit:  round4(clamp01((0.28-soil)*3.2 + (et-4.1)*0.08)),
		ETMean:           round4(et),
		WeatherStress:    round4(clamp01((temp-30)*0.05 + humidityTerm + precip*0.015)),
		TemperatureC:     round4(temp),
		PrecipitationMM:  round4(precip),
		HumidityPct:      round4(humidity),

		SeasonalIndex:  round4(seasonalIndex(int(clock.Now().UTC().Month()))),
		LatencyPenalty: round4(clamp01(finiteOr(req.LatencyHours, 0) / 96)),
	}

	return fv, assessQuality(req)
}

// ndviStats resolves area-wide NDVI min/max/mean from explicit stats, the
// sample series, or the climatological default, in that order.
func ndviStats(req InferenceRequest, series []float64) (lo, hi, avg float64) {
	if req.NDVI != nil {
		lo = clamp(finiteOr(req.NDVI.Min, defaultNDVIMean), -1, 1)
		hi = clamp(finiteOr(req.NDVI.Max, defaultNDVIMean), -1, 1)
		avg = clamp(finiteOr(req.NDVI.Mean, defaultNDVIMean), -1, 1)
		return lo, hi, avg
	}
	if len(series) > 0 {
		lo, hi = series[0], series[0]
		for _, v := range series {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		return lo, hi, mean(series)
	}
	return defaultNDVIMean, defaultNDVIMean, defaultNDVIMean
}

// delta7d compares the mean of the last 3 samples against a 3-sample window
// offset 7-10 samples back. Short series (< 7 samples) yield 0.
func delta7d(series []float64) float64 {
	n := len(series)
	if n < 7 {
		return 0
	}
	recent := mean(series[n-3:])
	var earlier float64
	if n >= 10 {
		earlier = mean(series[n-10 : n-7])
	} else {
		earlier = mean(series[:3])
	}
	return recent - earlier
}

// delta30d uses 30-sample offset windows when the series is long enough,
// otherwise falls back to the extrapolation heuristic.
func delta30d(series []float64, delta7 float64) float64 {
	n := len(series)
	if n >= 33 {
		return mean(series[n-3:]) - mean(series[n-33:n-30])
	}
	return extrapolate30dDelta(delta7)
}

// extrapolate30dDelta approximates the 30-day delta as 1.8x the 7-day
// delta. The factor is a hand-tuned approximation of unverified long-horizon
// accuracy; it lives in this one function so it can be replaced without
// touching the rest of the extractor.
func extrapolate30dDelta(delta7 float64) float64 {
	return delta7 * 1.8
}

// trendAcceleration is the slope of the last 4 samples minus the slope of
// the 4 before them.
func trendAcceleration(series []float64) float64 {
	n := len(series)
	if n < 8 {
		return 0
	}
	return olsSlope(series[n-4:]) - olsSlope(series[n-8:n-4])
}

// momentum is the mean of the last 3 samples minus the mean of the prior 3.
func momentum(series []float64) float64 {
	n := len(series)
	if n < 6 {
		return 0
	}
	return mean(series[n-3:]) - mean(series[n-6:n-3])
}

// seasonalIndex is a [0,1] sinusoid of the calendar month, phase-shifted so
// the peak lands mid-year (month 6.5).
func seasonalIndex(month int) float64 {
	return 0.5 + 0.5*math.Sin(2*math.Pi*(float64(month)-3.5)/12)
}

// assessQuality checks presence of the five expected input categories and
// summarizes upstream provider health.
func assessQuality(req InferenceRequest) DataQualityReport {
	present := 0
	for _, ok := range []bool{
		req.NDVI != nil,
		len(req.Samples) > 0,
		req.Weather != nil,
		req.Soil != nil,
		req.ET != nil,
	} {
		if ok {
			present++
		}
	}
	completeness := float64(present) / 5

	providerQuality := 0.75 // assumed when no diagnostics are supplied
	if len(req.Providers) > 0 {
		ok := 0
		for _, p := range req.Providers {
			if p.OK {
				ok++
			}
		}
		providerQuality = float64(ok) / float64(len(req.Providers))
	}

	simulated := simulatedInputs(req)

	penalty := 0.0
	if simulated {
		penalty = 0.12
	}
	score := clamp01(completeness*0.65 + providerQuality*0.35 - penalty)

	var warnings []string
	if completeness < 0.7 {
		warnings = append(warnings, "limited input coverage: one or more observation categories are missing")
	}
	if providerQuality < 0.6 {
		warnings = append(warnings, "degraded provider quality: a majority of upstream fetches did not succeed")
	}
	if simulated {
		warnings = append(warnings, "one or more inputs are simulated rather than observed")
	}

	return DataQualityReport{
		Completeness:    round4(completeness),
		ProviderQuality: round4(providerQuality),
		Score:           round4(score),
		SimulatedInputs: simulated,
		Warnings:        warnings,
	}
}

// simulatedInputs reports whether any source self-identifies as simulated.
func simulatedInputs(req InferenceRequest) bool {
	if req.Weather != nil && req.Weather.Simulated {
		return true
	}
	if req.Soil != nil && req.Soil.Simulated {
		return true
	}
	if req.ET != nil && req.ET.Simulated {
		return true
	}
	for _, p := range req.Providers {
		if p.Simulated {
			return true
		}
	}
	return false
}
