package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PlanckNM is h·c in eV·nm, used to convert wavelength to photon energy.
const PlanckNM = 1239.84193

// Errors returned by spectrum construction and range selection.
var (
	ErrLengthMismatch    = errors.New("spectrum: energy and absorption lengths differ")
	ErrTooShort          = errors.New("spectrum: at least two samples required")
	ErrNonFinite         = errors.New("spectrum: non-finite sample")
	ErrNotMonotonic      = errors.New("spectrum: energy axis must be strictly monotonic")
	ErrInvalidWavelength = errors.New("spectrum: wavelength must be positive")
	ErrInsufficientRange = errors.New("spectrum: insufficient points in range")
)

// Spectrum is an immutable absorption spectrum on an energy grid (eV).
type Spectrum struct {
	energy     []float64
	absorption []float64
	ascending  bool
}

// New validates and copies energy/absorption into a Spectrum.
func New(energy, absorption []float64) (Spectrum, error) {
	if len(energy) != len(absorption) {
		return Spectrum{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(energy), len(absorption))
	}

	if len(energy) < 2 {
		return Spectrum{}, ErrTooShort
	}

	for i := range energy {
		if !isFinite(energy[i]) || !isFinite(absorption[i]) {
			return Spectrum{}, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}

	ascending := energy[1] > energy[0]
	for i := 1; i < len(energy); i++ {
		d := energy[i] - energy[i-1]
		if d == 0 || (d > 0) != ascending {
			return Spectrum{}, fmt.Errorf("%w at index %d", ErrNotMonotonic, i)
		}
	}

	return Spectrum{
		energy:     append([]float64(nil), energy...),
		absorption: append([]float64(nil), absorption...),
		ascending:  ascending,
	}, nil
}

// FromWavelength converts a wavelength axis in nm to energy and builds a
// Spectrum. Ascending wavelengths produce a descending energy axis.
func FromWavelength(nm, absorption []float64) (Spectrum, error) {
	energy, err := WavelengthToEnergy(nm)
	if err != nil {
		return Spectrum{}, err
	}

	return New(energy, absorption)
}

// WavelengthToEnergy converts wavelengths in nm to photon energies in eV.
func WavelengthToEnergy(nm []float64) ([]float64, error) {
	out := make([]float64, len(nm))
	for i, l := range nm {
		if !(l > 0) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrInvalidWavelength, l, i)
		}

		out[i] = PlanckNM / l
	}

	return out, nil
}

// Len returns the number of samples.
func (s Spectrum) Len() int { return len(s.energy) }

// At returns the i-th sample in storage order.
func (s Spectrum) At(i int) (energy, absorption float64) {
	return s.energy[i], s.absorption[i]
}

// Ascending reports whether energies increase with the sample index.
func (s Spectrum) Ascending() bool { return s.ascending }

// Energies returns a copy of the energy axis.
func (s Spectrum) Energies() []float64 {
	return append([]float64(nil), s.energy...)
}

// Absorption returns a copy of the absorption values.
func (s Spectrum) Absorption() []float64 {
	return append([]float64(nil), s.absorption...)
}

// Span returns the lowest and highest energy.
func (s Spectrum) Span() Range {
	if len(s.energy) == 0 {
		return Range{}
	}

	first, last := s.energy[0], s.energy[len(s.energy)-1]

	return NewRange(first, last)
}

// AscendingIndex maps the k-th sample in ascending energy order to its
// storage index.
func (s Spectrum) AscendingIndex(k int) int {
	if s.ascending {
		return k
	}

	return len(s.energy) - 1 - k
}

// MedianEnergy returns the median of the energy axis.
func (s Spectrum) MedianEnergy() float64 {
	n := len(s.energy)
	if n == 0 {
		return 0
	}

	lo := s.energy[s.AscendingIndex((n-1)/2)]
	hi := s.energy[s.AscendingIndex(n/2)]

	return 0.5 * (lo + hi)
}

// MaxAbsorption returns the largest absorption value.
func (s Spectrum) MaxAbsorption() float64 {
	if len(s.absorption) == 0 {
		return 0
	}

	m := s.absorption[0]
	for _, v := range s.absorption[1:] {
		if v > m {
			m = v
		}
	}

	return m
}

// Count returns how many samples fall inside r.
func (s Spectrum) Count(r Range) int {
	n := 0
	for _, e := range s.energy {
		if r.Contains(e) {
			n++
		}
	}

	return n
}

// Select returns the samples inside r, preserving order. The result may have
// fewer than two samples; callers check Len before fitting.
func (s Spectrum) Select(r Range) Spectrum {
	out := Spectrum{ascending: s.ascending}
	for i, e := range s.energy {
		if r.Contains(e) {
			out.energy = append(out.energy, e)
			out.absorption = append(out.absorption, s.absorption[i])
		}
	}

	return out
}

// SelectMin is Select with a minimum sample count.
func (s Spectrum) SelectMin(r Range, minPoints int) (Spectrum, error) {
	out := s.Select(r)
	if out.Len() < minPoints {
		return Spectrum{}, fmt.Errorf("%w: [%.4f, %.4f] eV holds %d points, need %d",
			ErrInsufficientRange, r.Lo, r.Hi, out.Len(), minPoints)
	}

	return out, nil
}

// Subtract returns a new spectrum with curve[i] removed from each absorption
// value. The curve must be sampled on the same grid.
func (s Spectrum) Subtract(curve []float64) (Spectrum, error) {
	if len(curve) != len(s.absorption) {
		return Spectrum{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(curve), len(s.absorption))
	}

	out := Spectrum{
		energy:     append([]float64(nil), s.energy...),
		absorption: make([]float64, len(s.absorption)),
		ascending:  s.ascending,
	}
	for i, a := range s.absorption {
		out.absorption[i] = a - curve[i]
	}

	return out, nil
}

// Percentile returns the p-th (0..1) energy percentile, linearly
// interpolated between samples.
func (s Spectrum) Percentile(p float64) float64 {
	if len(s.energy) == 0 {
		return 0
	}

	sorted := append([]float64(nil), s.energy...)
	sort.Float64s(sorted)

	return stat.Quantile(math.Min(math.Max(p, 0), 1), stat.LinInterp, sorted, nil)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
