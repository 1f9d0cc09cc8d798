package model

import (
	"fmt"
	"math"
)

// NumParams is the number of free parameters of the Elliot model.
const NumParams = 6

// Params are the physical parameters of the Elliot absorption model.
type Params struct {
	Eg    float64 // band gap (eV)
	Eb    float64 // exciton binding energy, Rydberg (eV)
	Gamma float64 // linewidth (eV)
	Ucvsq float64 // transition dipole moment squared scale
	Mhcnp float64 // continuum non-parabolicity / mass parameter
	Q     float64 // fractional dimension parameter, Deff = 3 - 2q
}

// Names lists parameter names in vector order.
var Names = [NumParams]string{"Eg", "Eb", "Gamma", "ucvsq", "mhcnp", "q"}

// ParamIndex returns the vector index of a parameter name, or -1.
func ParamIndex(name string) int {
	for i, n := range Names {
		if n == name {
			return i
		}
	}

	return -1
}

// Vector returns the parameters in Names order.
func (p Params) Vector() []float64 {
	return []float64{p.Eg, p.Eb, p.Gamma, p.Ucvsq, p.Mhcnp, p.Q}
}

// FromVector builds Params from a slice in Names order.
func FromVector(v []float64) Params {
	if len(v) < NumParams {
		panic(fmt.Sprintf("model: parameter vector has %d entries, want %d", len(v), NumParams))
	}

	return Params{Eg: v[0], Eb: v[1], Gamma: v[2], Ucvsq: v[3], Mhcnp: v[4], Q: v[5]}
}

// Get returns the parameter at vector index i.
func (p Params) Get(i int) float64 { return p.Vector()[i] }

// With returns a copy of p with the parameter at vector index i replaced.
func (p Params) With(i int, v float64) Params {
	vec := p.Vector()
	vec[i] = v

	return FromVector(vec)
}

// Finite reports whether all parameters are finite.
func (p Params) Finite() bool {
	for _, v := range p.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

func (p Params) String() string {
	return fmt.Sprintf("Eg=%.4f Eb=%.4f Gamma=%.4f ucvsq=%.4g mhcnp=%.4f q=%.4f",
		p.Eg, p.Eb, p.Gamma, p.Ucvsq, p.Mhcnp, p.Q)
}

// Bounds is a per-parameter box constraint. A parameter whose lower and upper
// limits are equal is held fixed.
type Bounds struct {
	Lower Params
	Upper Params
}

// Validate reports inverted or non-finite limits.
func (b Bounds) Validate() error {
	lo, hi := b.Lower.Vector(), b.Upper.Vector()
	for i := range lo {
		if math.IsNaN(lo[i]) || math.IsNaN(hi[i]) {
			return fmt.Errorf("model: bound for %s is NaN", Names[i])
		}

		if lo[i] > hi[i] {
			return fmt.Errorf("model: bound for %s inverted: %g > %g", Names[i], lo[i], hi[i])
		}
	}

	return nil
}

// Clamp projects p into the box.
func (b Bounds) Clamp(p Params) Params {
	v, lo, hi := p.Vector(), b.Lower.Vector(), b.Upper.Vector()
	for i := range v {
		v[i] = math.Min(math.Max(v[i], lo[i]), hi[i])
	}

	return FromVector(v)
}

// Fixed reports whether the parameter at vector index i is pinned.
func (b Bounds) Fixed(i int) bool {
	return b.Lower.Get(i) == b.Upper.Get(i)
}
