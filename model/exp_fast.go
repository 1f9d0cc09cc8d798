//go:build fastmath

package model

import "github.com/meko-christian/algo-approx"

// expNeg returns e^-a for a >= 0 using the fast approximation. The sech
// kernel dominates evaluation cost, one call per (energy, node) pair.
func expNeg(a float64) float64 {
	return approx.FastExp(-a)
}
