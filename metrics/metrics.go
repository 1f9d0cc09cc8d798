package metrics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
	"gonum.org/v1/gonum/stat"
)

const (
	// QSingularity is how close q may come to 1 before the ground-state
	// binding energy is replaced by the Rydberg energy.
	QSingularity = 0.01
	// DefaultUrbachWidth is the width of the sub-gap tail window in eV.
	DefaultUrbachWidth = 0.15
	// MinUrbachPoints is the minimum number of positive tail samples.
	MinUrbachPoints = 3
)

// GroundStateBinding returns Eb/(1-q)², the binding energy of the lowest
// exciton in fractional dimension. Within QSingularity of q = 1 it returns
// eb unchanged together with a non-empty warning.
func GroundStateBinding(eb, q float64) (float64, string) {
	d := 1 - q
	if math.Abs(d) < QSingularity {
		return eb, fmt.Sprintf("q=%.4f is within %g of 1: Eb/(1-q)^2 diverges, reporting Rydberg Eb instead", q, QSingularity)
	}

	return eb / (d * d), ""
}

// EffectiveDimension returns 3 - 2q.
func EffectiveDimension(q float64) float64 { return 3 - 2*q }

// ExcitonEdge returns the n = 1 exciton energy Eg - Eb_gs, never above Eg.
func ExcitonEdge(p model.Params) float64 {
	ebgs, _ := GroundStateBinding(p.Eb, p.Q)
	return math.Min(p.Eg-ebgs, p.Eg)
}

// RSquared returns 1 - SSE/SStot of fitted against observed. Poor fits give
// negative values, which are kept. A constant observation returns 0.
// It panics if the slices differ in length.
func RSquared(fitted, observed []float64) float64 {
	if len(fitted) != len(observed) {
		panic(fmt.Sprintf("metrics: length mismatch %d vs %d", len(fitted), len(observed)))
	}

	if len(observed) == 0 {
		return 0
	}

	mean := stat.Mean(observed, nil)

	var total float64
	for _, v := range observed {
		d := v - mean
		total += d * d
	}

	if total == 0 {
		return 0
	}

	return stat.RSquaredFrom(fitted, observed, nil)
}

// UrbachFit is a log-linear fit of the sub-gap absorption tail.
type UrbachFit struct {
	Energy    float64 // Urbach energy 1/slope in eV
	Slope     float64 // d ln(α)/dE
	Intercept float64
	Points    int
	Range     spectrum.Range
}

// Urbach fits ln(absorption) against energy over the positive samples in
// [edge-width, edge). The fit is absent (ok false) with fewer than
// MinUrbachPoints samples or a non-positive slope. A non-positive width
// selects DefaultUrbachWidth.
func Urbach(energies, absorption []float64, edge, width float64) (UrbachFit, bool) {
	if !(width > 0) {
		width = DefaultUrbachWidth
	}

	lo := edge - width

	var x, y []float64
	for i, e := range energies {
		if e >= lo && e < edge && absorption[i] > 0 {
			x = append(x, e)
			y = append(y, math.Log(absorption[i]))
		}
	}

	if len(x) < MinUrbachPoints {
		return UrbachFit{}, false
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	if !(slope > 0) || math.IsInf(slope, 0) {
		return UrbachFit{}, false
	}

	return UrbachFit{
		Energy:    1 / slope,
		Slope:     slope,
		Intercept: intercept,
		Points:    len(x),
		Range:     spectrum.Range{Lo: lo, Hi: edge},
	}, true
}
