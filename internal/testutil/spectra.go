package testutil

import (
	"math"
	"math/rand"
)

// ReferenceParams are the Elliot parameters of the reference synthetic
// spectrum used across package tests, in model.Names order.
var ReferenceParams = []float64{2.62, 0.050, 0.100, 10, 0.060, 0.2}

// EnergyGrid returns n evenly spaced energies from lo to hi inclusive.
func EnergyGrid(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}

// WavelengthGrid returns n evenly spaced wavelengths in nm from lo to hi,
// the way spectrometers export them.
func WavelengthGrid(loNM, hiNM float64, n int) []float64 {
	return EnergyGrid(loNM, hiNM, n)
}

// DeterministicNoise generates uniform noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Linear returns slope*x + intercept for each x.
func Linear(x []float64, slope, intercept float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = slope*v + intercept
	}
	return out
}

// Rayleigh returns c*x^4 for each x.
func Rayleigh(x []float64, c float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = c * math.Pow(v, 4)
	}
	return out
}

// Add returns the element-wise sum of equally long slices.
func Add(a []float64, rest ...[]float64) []float64 {
	out := append([]float64(nil), a...)
	for _, r := range rest {
		for i := range out {
			out[i] += r[i]
		}
	}
	return out
}

// Reverse returns a reversed copy of x.
func Reverse(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}
