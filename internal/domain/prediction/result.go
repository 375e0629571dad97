package prediction

import (
	"math"
	"strconv"
)

// Probability thresholds. Each bound belongs to the higher bucket.
const (
	highThreshold   = 0.70
	mediumThreshold = 0.40
)

// Athlete labels, highest first.
const (
	LabelHigh   = "High chance"
	LabelMedium = "Medium chance"
	LabelLow    = "Low chance"
)

// Labels lists every label Bucket can return.
func Labels() []string { return []string{LabelHigh, LabelMedium, LabelLow} }

// Country range parameters.
const (
	minMargin      = 5
	marginFraction = 0.15
)

// Bucket maps a medal probability to its label and confidence.
func Bucket(p float64) (label, confidence string) {
	switch {
	case p >= highThreshold:
		return LabelHigh, "High"
	case p >= mediumThreshold:
		return LabelMedium, "Medium"
	default:
		return LabelLow, "Low"
	}
}

// MedalRange derives the displayed total and range from a raw regression
// output. Negative outputs clamp to zero.
func MedalRange(pred float64) (total float64, low, high int) {
	pred = math.Max(0, pred)
	rounded := int(math.RoundToEven(pred))
	margin := max(minMargin, int(math.RoundToEven(float64(rounded)*marginFraction)))
	return roundTo(pred, 1), max(0, rounded-margin), rounded + margin
}

// roundTo rounds the exact binary value of v to the given number of
// decimals. Ties are broken to even, but only true ties: 0.69995 is stored
// just below the midpoint and rounds down.
func roundTo(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
