// Package domain implements the field inference core: feature extraction,
// short-horizon forecasting, anomaly scoring, spatial zone clustering,
// recommendation synthesis, and counterfactual scenario simulation.
//
// # Data Source
//
// Inputs arrive as already-resolved statistics produced by the upstream
// imagery and weather fetch chain: NDVI summary stats for the area of
// interest, an ordered historical NDVI sample series, a weather snapshot,
// soil moisture and evapotranspiration (ET) means, an optional 3x3 spatial
// grid with per-cell NDVI stats, and provider fetch diagnostics. The core
// performs no network I/O of its own.
//
// # Input Conventions
//
// NDVI values are bounded to [-1, 1]. Soil moisture is a volumetric fraction
// in [0, 1]. ET is mm/day, typically 2-8. Humidity is a percentage in
// [0, 100]. Grid cells are addressed row-major with row letters A-C (north
// to south) and column digits 1-3 (west to east), so "A1" is the northwest
// cell and "C3" the southeast.
//
// Missing inputs never fail extraction; they are replaced by fixed
// climatological defaults:
//
//	NDVI mean       0.45 (min = max = mean when stats are absent)
//	Soil moisture   0.25
//	ET mean         4.1 mm/day
//	Temperature     22 °C
//	Humidity        60 %
//	Precipitation   0 mm
//
// # Derived Indices
//
// Moisture deficit:  clamp((0.28 - soil)*3.2 + (et - 4.1)*0.08, 0, 1)
// Weather stress:    clamp((temp - 30)*0.05 + humidityTerm + precip*0.015, 0, 1)
//
//	where humidityTerm is 0.2 when humidity > 84%.
//
// Seasonal index:    0.5 + 0.5*sin(2π(month - 3.5)/12), peaking mid-year.
// Latency penalty:   clamp(latencyHours/96, 0, 1).
//
// When fewer than 33 history samples exist, the 30-day delta is extrapolated
// as 1.8x the 7-day delta. This is a documented approximation, kept behind
// [extrapolate30dDelta] so it can be recalibrated in isolation.
//
// # Anomaly Levels
//
// The instability score combines five bounded signals (recent NDVI drop,
// volatility, moisture deficit, weather stress, trend deceleration) with
// weights 0.30/0.20/0.25/0.15/0.10. Level thresholds:
//
//	score < 0.35  low | score < 0.65  moderate | otherwise  high
//
// # Determinism
//
// Every function here is a total, pure function of its inputs (plus the
// injected clock). Zone clustering without a preview raster synthesizes its
// point set from a PRNG seeded by a SHA-256 digest of the rounded feature
// values, so identical inputs always produce identical zones.
package domain
