package bandgap

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
)

const (
	// EgBoundHalfWidth is the Eg search half-width around the initial guess.
	EgBoundHalfWidth = 0.4
	// DefaultNarrowHalfWidth is the refinement window half-width around Eg.
	DefaultNarrowHalfWidth = 0.5
)

// Errors returned by Overrides.Validate.
var (
	ErrUnknownParam = errors.New("bandgap: unknown parameter")
	ErrDerivedParam = errors.New("bandgap: Eg bounds are derived from the initial band gap")
)

// Source records where the initial band gap came from.
type Source int

const (
	// Detected means the onset scan supplied Eg.
	Detected Source = iota
	// User means the caller's starting Eg was used.
	User
)

func (s Source) String() string {
	if s == User {
		return "user"
	}

	return "detected"
}

// Resolve picks the initial band gap. A positive user value inside the
// plausible window wins over the detected onset.
func Resolve(user, detected float64, plausible spectrum.Range) (float64, Source) {
	if user > 0 && plausible.Contains(user) {
		return user, User
	}

	return detected, Detected
}

// DefaultBounds returns the static parameter box. The Eg limits are
// placeholders replaced by ComputeBounds.
func DefaultBounds() model.Bounds {
	return model.Bounds{
		Lower: model.Params{Eg: 1.0, Eb: 0.01, Gamma: 0, Ucvsq: 0.01, Mhcnp: 0, Q: 0},
		Upper: model.Params{Eg: 10.0, Eb: 2.0, Gamma: 0.5, Ucvsq: 10000, Mhcnp: 0.999, Q: 1.5},
	}
}

// Limit overrides one parameter's box. NaN leaves that side unchanged.
type Limit struct {
	Lower float64
	Upper float64
}

// Overrides maps parameter names (model.Names) to replacement limits.
type Overrides map[string]Limit

// Validate reports names that match no model parameter and any Eg entry,
// whose window is always Eg₀ ± EgBoundHalfWidth.
func (o Overrides) Validate() error {
	for name := range o {
		switch model.ParamIndex(name) {
		case -1:
			return fmt.Errorf("%w: %q", ErrUnknownParam, name)
		case 0:
			return fmt.Errorf("%w: override for %q not allowed", ErrDerivedParam, name)
		}
	}

	return nil
}

// ComputeBounds derives the fit box for an initial band gap: Eg is always
// [eg0-0.4, eg0+0.4]; the other parameters take defaults, then overrides.
// Eg entries, which Validate rejects, are skipped.
func ComputeBounds(eg0 float64, defaults model.Bounds, overrides Overrides) model.Bounds {
	lo, hi := defaults.Lower.Vector(), defaults.Upper.Vector()

	for name, l := range overrides {
		i := model.ParamIndex(name)
		if i <= 0 {
			continue
		}

		if !math.IsNaN(l.Lower) {
			lo[i] = l.Lower
		}

		if !math.IsNaN(l.Upper) {
			hi[i] = l.Upper
		}
	}

	lo[0] = eg0 - EgBoundHalfWidth
	hi[0] = eg0 + EgBoundHalfWidth

	return model.Bounds{Lower: model.FromVector(lo), Upper: model.FromVector(hi)}
}

// Narrow restricts s to [eg-halfWidth, eg+halfWidth]. A non-positive
// halfWidth selects DefaultNarrowHalfWidth.
func Narrow(s spectrum.Spectrum, eg, halfWidth float64) spectrum.Spectrum {
	return s.Select(Window(eg, halfWidth))
}

// Window returns the refinement interval around eg.
func Window(eg, halfWidth float64) spectrum.Range {
	if !(halfWidth > 0) {
		halfWidth = DefaultNarrowHalfWidth
	}

	return spectrum.Around(eg, halfWidth)
}
