package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-elliot/spectrum"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by baseline fitting.
var (
	ErrSingularFit = errors.New("baseline: degenerate baseline range")
	ErrUnknownMode = errors.New("baseline: unknown fit mode")
)

// Mode selects the functional form of the background.
type Mode int

const (
	// None subtracts nothing.
	None Mode = iota
	// Linear fits a*E + b.
	Linear
	// Rayleigh fits c*E^4 through the origin (nanoparticle scattering).
	Rayleigh
)

// ParseMode maps the numeric fit mode used in configuration files
// (0 none, 1 linear, 2 Rayleigh).
func ParseMode(v int) (Mode, error) {
	switch m := Mode(v); m {
	case None, Linear, Rayleigh:
		return m, nil
	default:
		return None, fmt.Errorf("%w: %d", ErrUnknownMode, v)
	}
}

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Rayleigh:
		return "rayleigh"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Model is a fitted background curve. The zero value is the None baseline.
type Model struct {
	Mode        Mode
	Slope       float64 // Linear
	Intercept   float64 // Linear
	Coefficient float64 // Rayleigh
}

// Fit estimates the background over the samples inside r by ordinary least
// squares. The range is ignored in None mode.
func Fit(s spectrum.Spectrum, mode Mode, r spectrum.Range) (Model, error) {
	minPoints := 0
	switch mode {
	case None:
		return Model{}, nil
	case Linear:
		minPoints = 2
	case Rayleigh:
		minPoints = 1
	default:
		return Model{}, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	if !(r.Width() > 0) {
		return Model{}, fmt.Errorf("%w: range %v has no spread", ErrSingularFit, r)
	}

	sub, err := s.SelectMin(r, minPoints)
	if err != nil {
		return Model{}, fmt.Errorf("baseline %s: %w", mode, err)
	}

	energy := sub.Energies()
	absorption := sub.Absorption()

	if mode == Linear {
		intercept, slope := stat.LinearRegression(energy, absorption, nil, false)
		if math.IsNaN(slope) || math.IsNaN(intercept) {
			return Model{}, fmt.Errorf("%w: linear regression over %v", ErrSingularFit, r)
		}

		return Model{Mode: Linear, Slope: slope, Intercept: intercept}, nil
	}

	e4 := make([]float64, len(energy))
	var norm float64
	for i, e := range energy {
		e2 := e * e
		e4[i] = e2 * e2
		norm += e4[i] * e4[i]
	}

	if norm == 0 {
		return Model{}, fmt.Errorf("%w: zero energies in %v", ErrSingularFit, r)
	}

	_, c := stat.LinearRegression(e4, absorption, nil, true)

	return Model{Mode: Rayleigh, Coefficient: c}, nil
}

// IsZero reports whether the baseline is identically zero.
func (m Model) IsZero() bool {
	switch m.Mode {
	case Linear:
		return m.Slope == 0 && m.Intercept == 0
	case Rayleigh:
		return m.Coefficient == 0
	default:
		return true
	}
}

// Eval returns the background at energy e.
func (m Model) Eval(e float64) float64 {
	switch m.Mode {
	case Linear:
		return m.Slope*e + m.Intercept
	case Rayleigh:
		e2 := e * e
		return m.Coefficient * e2 * e2
	default:
		return 0
	}
}

// Curve samples the background on energies.
func (m Model) Curve(energies []float64) []float64 {
	out := make([]float64, len(energies))
	for i, e := range energies {
		out[i] = m.Eval(e)
	}

	return out
}

// Subtract returns a new spectrum with the background removed. Applying it
// twice removes a non-zero background twice.
func (m Model) Subtract(s spectrum.Spectrum) spectrum.Spectrum {
	out, err := s.Subtract(m.Curve(s.Energies()))
	if err != nil {
		// Curve is sampled on the spectrum's own grid.
		panic(err)
	}

	return out
}

func (m Model) String() string {
	switch m.Mode {
	case Linear:
		return fmt.Sprintf("linear(slope=%.6g, intercept=%.6g)", m.Slope, m.Intercept)
	case Rayleigh:
		return fmt.Sprintf("rayleigh(c=%.6g)", m.Coefficient)
	default:
		return "none"
	}
}
