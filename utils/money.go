package utils

import "math"

// Round2 rounds to two decimal places, matching the numeric(12,2) columns.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
