// Package convert holds range-checked integer conversions for values read
// from the environment, such as pool sizes and breaker thresholds.
package convert

import "math"

// IntToUint32Clamped converts v, clamping to [0, MaxUint32].
func IntToUint32Clamped(v int) uint32 {
	if v < 0 {
		return 0
	}
	if uint64(v) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// IntToInt32Clamped converts v, clamping to [MinInt32, MaxInt32].
func IntToInt32Clamped(v int) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}
