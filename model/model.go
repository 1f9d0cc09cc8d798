package model

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultLevels is the number of exciton levels summed (n = 1..50).
	DefaultLevels = 50
	// DefaultNodes is the continuum quadrature node count: ten nodes per
	// default baseline point (NS = 20).
	DefaultNodes = 200

	minGamma    = 1e-10
	minLevelGap = 1e-10
	expCutoff   = 700.0
)

// Config holds evaluator settings.
type Config struct {
	Levels int // exciton series truncation
	Nodes  int // fixed trapezoid nodes over [Eg, 2Eg]
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the evaluator defaults.
func DefaultConfig() Config {
	return Config{
		Levels: DefaultLevels,
		Nodes:  DefaultNodes,
	}
}

// WithLevels sets the exciton series truncation.
func WithLevels(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Levels = n
		}
	}
}

// WithNodes sets the continuum quadrature node count (at least 2).
func WithNodes(n int) Option {
	return func(c *Config) {
		if n >= 2 {
			c.Nodes = n
		}
	}
}

// Model evaluates the Elliot absorption spectrum. A Model has no mutable
// state and may be shared between goroutines.
type Model struct {
	cfg Config
}

// New creates a Model.
func New(opts ...Option) *Model {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Model{cfg: cfg}
}

// Config returns the evaluator settings.
func (m *Model) Config() Config { return m.cfg }

var defaultModel = New()

// Evaluate computes the total absorption with the default evaluator.
func Evaluate(p Params, energies []float64) []float64 {
	return defaultModel.Evaluate(p, energies)
}

// Evaluate returns ucvsq*sqrt(Eb)*(exciton+band) at each energy.
func (m *Model) Evaluate(p Params, energies []float64) []float64 {
	_, _, total := m.Components(p, energies)
	return total
}

// Components returns the scaled exciton and band contributions and their sum.
// Every output element depends only on the matching input energy.
func (m *Model) Components(p Params, energies []float64) (exciton, band, total []float64) {
	n := len(energies)
	exciton = make([]float64, n)
	band = make([]float64, n)
	total = make([]float64, n)

	if n == 0 || !(p.Eb > 0) {
		return exciton, band, total
	}

	gamma := math.Max(math.Abs(p.Gamma), minGamma)
	scale := p.Ucvsq * math.Sqrt(p.Eb)

	centers, strengths := m.levels(p)
	if len(centers) > 0 {
		row := make([]float64, len(centers))
		for i, e := range energies {
			for k, c := range centers {
				row[k] = sech((e - c) / gamma)
			}

			exciton[i] = vecmath.DotProduct(row, strengths)
		}
	}

	nodes, weights := m.continuum(p)
	if len(nodes) > 0 {
		row := make([]float64, len(nodes))
		for i, e := range energies {
			for k, x := range nodes {
				row[k] = sech((e - x) / gamma)
			}

			band[i] = vecmath.DotProduct(row, weights)
		}
	}

	vecmath.AddMulBlock(total, exciton, band, scale)
	vecmath.ScaleBlockInPlace(exciton, scale)
	vecmath.ScaleBlockInPlace(band, scale)

	return exciton, band, total
}

// SSE returns the sum of squared differences between the model and data.
func (m *Model) SSE(p Params, energies, absorption []float64) float64 {
	fitted := m.Evaluate(p, energies)

	var sse float64
	for i, y := range absorption {
		d := fitted[i] - y
		sse += d * d
	}

	return sse
}

// levels returns the exciton line positions Eg - Eb/(n-q)^2 and their
// oscillator strengths 2Eb/(n-q)^3.
func (m *Model) levels(p Params) (centers, strengths []float64) {
	centers = make([]float64, 0, m.cfg.Levels)
	strengths = make([]float64, 0, m.cfg.Levels)

	for n := 1; n <= m.cfg.Levels; n++ {
		d := float64(n) - p.Q
		if math.Abs(d) < minLevelGap {
			continue
		}

		centers = append(centers, p.Eg-p.Eb/(d*d))
		strengths = append(strengths, 2*p.Eb/(d*d*d))
	}

	return centers, strengths
}

// continuum returns the quadrature nodes over [Eg, 2Eg] and the trapezoid
// weights already multiplied by the continuum enhancement f(E').
func (m *Model) continuum(p Params) (nodes, weights []float64) {
	if !(p.Eg > 0) {
		return nil, nil
	}

	nodes = floats.Span(make([]float64, m.cfg.Nodes), p.Eg, 2*p.Eg)
	weights = make([]float64, len(nodes))

	h := p.Eg / float64(len(nodes)-1)
	for k, x := range nodes {
		w := h
		if k == 0 || k == len(nodes)-1 {
			w = 0.5 * h
		}

		weights[k] = w * enhancement(x-p.Eg, p.Eb, p.Mhcnp)
	}

	return nodes, weights
}

// enhancement is the Sommerfeld-enhanced continuum density
// (1+b)/(1-exp(-2π sqrt(Eb/x))) at x = E'-Eg. At x = 0 the exponential
// vanishes and b = 0, so the limit is 1.
func enhancement(x, eb, mhcnp float64) float64 {
	if x <= 0 {
		return 1
	}

	b := 10*mhcnp*x + 126*mhcnp*mhcnp*x*x
	den := -math.Expm1(-2 * math.Pi * math.Sqrt(eb/x))

	return (1 + b) / den
}

// sech evaluates 1/cosh(z) as 2e^-|z|/(1+e^-2|z|), which cannot overflow.
func sech(z float64) float64 {
	a := math.Abs(z)
	if a > expCutoff {
		return 0
	}

	t := expNeg(a)

	return 2 * t / (1 + t*t)
}
