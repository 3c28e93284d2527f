package weather

import "math"

// RoundHalfUp rounds to the nearest integer with halves going towards +Inf,
// so -2.5 becomes -2 rather than -3 as math.Round would give.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Round1 rounds to one decimal place, halves towards +Inf.
func Round1(v float64) float64 {
	return RoundHalfUp(v*10) / 10
}
