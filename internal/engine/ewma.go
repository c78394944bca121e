package engine

import "math"

// EWMA computes an exponentially weighted moving average over an ordered
// series of daily values using alpha = 2/(N+1), seeded with the first
// observation. The input must already be in chronological order; this
// function does not sort.
func EWMA(values []float64, days int) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	if days < 1 {
		days = 1
	}

	alpha := 2.0 / (float64(days) + 1.0)
	s := values[0]
	for _, v := range values[1:] {
		s += alpha * (v - s)
	}
	return s, nil
}

// TrailingEWMA applies EWMA to only the trailing n values of the series,
// as the acute-load calculation requires.
func TrailingEWMA(values []float64, n int) (float64, error) {
	return EWMA(Trailing(values, n), n)
}

// Trailing returns the last n elements of the series (or the whole series
// when it is shorter than n).
func Trailing[T any](values []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// regressionSlope fits y = a + b*x by least squares over the index positions
// 0..n-1 and returns b, the per-step slope. Returns 0 for fewer than two
// points or a degenerate x spread.
func regressionSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// coefficientOfVariation returns stddev/mean, or 0 when the mean is zero.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 || len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	variance := ss / float64(len(values))
	return math.Sqrt(variance) / m
}
