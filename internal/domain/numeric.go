package domain

import "math"

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// round4 rounds to four decimals, the precision carried by all feature and
// result fields.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round2 rounds to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to one decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// finiteOr replaces NaN and infinities with a fallback. Every coerced input
// passes through here so downstream math is total.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev returns the population standard deviation, or 0 for fewer than
// two values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// olsSlope returns the ordinary-least-squares slope of values against their
// index, or 0 for fewer than two values.
func olsSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// sigmoid is the standard logistic function.
func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
