//go:build !fastmath

package model

import "math"

// expNeg returns e^-a for a >= 0.
func expNeg(a float64) float64 {
	return math.Exp(-a)
}
