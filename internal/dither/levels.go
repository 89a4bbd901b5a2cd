package dither

import "math"

// MinLevels and MaxLevels bound the number of output values per channel.
const (
	MinLevels = 2
	MaxLevels = 256
)

// ClampLevels forces levels into [MinLevels, MaxLevels]. Out-of-range values
// are corrected rather than rejected.
func ClampLevels(levels int) int {
	if levels < MinLevels {
		return MinLevels
	}
	if levels > MaxLevels {
		return MaxLevels
	}
	return levels
}

// Interval returns the distance between adjacent output values for a given
// number of levels, spanning 0..255.
func Interval(levels int) float64 {
	return 255.0 / float64(ClampLevels(levels)-1)
}

// toSample rounds a channel value to the nearest integer and clamps it to a
// valid 8-bit sample.
func toSample(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
