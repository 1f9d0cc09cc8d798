package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-elliot/internal/lsq"
	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
	"gonum.org/v1/gonum/floats"
)

// ErrOptimization is returned when the objective becomes non-finite or the
// problem is malformed. It aborts the fit; non-convergence does not.
var ErrOptimization = errors.New("fit: optimization failed")

const (
	// DefaultMaxIterations bounds the solver iterations of each stage.
	DefaultMaxIterations = 500
	// DefaultSaturationEpsilon is the relative distance to a bound treated as
	// touching the bound.
	DefaultSaturationEpsilon = 1e-3
)

// Config holds fitter settings.
type Config struct {
	MaxIterations     int
	FTol              float64
	XTol              float64
	GTol              float64
	SaturationEpsilon float64
	ModelOptions      []model.Option
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the fitter defaults.
func DefaultConfig() Config {
	s := lsq.DefaultSettings()

	return Config{
		MaxIterations:     DefaultMaxIterations,
		FTol:              s.FTol,
		XTol:              s.XTol,
		GTol:              s.GTol,
		SaturationEpsilon: DefaultSaturationEpsilon,
	}
}

// WithMaxIterations caps solver iterations per stage.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithTolerances sets the relative function, step and gradient tolerances.
// Non-positive values keep the current setting.
func WithTolerances(ftol, xtol, gtol float64) Option {
	return func(c *Config) {
		if ftol > 0 {
			c.FTol = ftol
		}

		if xtol > 0 {
			c.XTol = xtol
		}

		if gtol > 0 {
			c.GTol = gtol
		}
	}
}

// WithSaturationEpsilon sets the bound-proximity fraction for warnings.
func WithSaturationEpsilon(eps float64) Option {
	return func(c *Config) {
		if eps >= 0 && eps < 0.5 {
			c.SaturationEpsilon = eps
		}
	}
}

// WithModel passes evaluator options (series truncation, quadrature nodes).
func WithModel(opts ...model.Option) Option {
	return func(c *Config) {
		c.ModelOptions = append(c.ModelOptions, opts...)
	}
}

// Result is the outcome of one bounded fit.
type Result struct {
	Params      model.Params
	SSE         float64
	Iterations  int
	Evaluations int
	Converged   bool
	Status      string
	Saturated   []string // parameters resting on a bound, model.Names order
	Points      int
	Range       spectrum.Range // energy span of the fitted samples
}

// Fitter fits the Elliot model with box constraints. It holds no per-fit
// state and may be used from several goroutines.
type Fitter struct {
	cfg   Config
	model *model.Model
}

// New creates a Fitter.
func New(opts ...Option) *Fitter {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Fitter{cfg: cfg, model: model.New(cfg.ModelOptions...)}
}

// Config returns the fitter settings.
func (f *Fitter) Config() Config { return f.cfg }

// Model returns the evaluator used as objective.
func (f *Fitter) Model() *model.Model { return f.model }

// Fit minimises Σ(model-absorption)² over all samples of s, starting from
// start projected into b.
func (f *Fitter) Fit(s spectrum.Spectrum, start model.Params, b model.Bounds) (Result, error) {
	if s.Len() == 0 {
		return Result{}, fmt.Errorf("fit: %w: no samples", spectrum.ErrInsufficientRange)
	}

	if err := b.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrOptimization, err)
	}

	if !start.Finite() {
		return Result{}, fmt.Errorf("%w: non-finite start %v", ErrOptimization, start)
	}

	energies := s.Energies()
	absorption := s.Absorption()

	problem := lsq.Problem{
		M: len(energies),
		Residuals: func(dst, x []float64) {
			floats.SubTo(dst, f.model.Evaluate(model.FromVector(x), energies), absorption)
		},
		Lower: b.Lower.Vector(),
		Upper: b.Upper.Vector(),
	}

	settings := lsq.DefaultSettings()
	settings.MaxIterations = f.cfg.MaxIterations
	settings.FTol = f.cfg.FTol
	settings.XTol = f.cfg.XTol
	settings.GTol = f.cfg.GTol

	res, err := lsq.Minimize(problem, start.Vector(), settings)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrOptimization, err)
	}

	p := model.FromVector(res.X)

	return Result{
		Params:      p,
		SSE:         res.SSE,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Converged:   res.Converged,
		Status:      res.Status.String(),
		Saturated:   Saturated(p, b, f.cfg.SaturationEpsilon),
		Points:      len(energies),
		Range:       s.Span(),
	}, nil
}

// Saturated lists the non-fixed parameters resting on a bound. Closeness is
// relative to the bound itself: a parameter is at a bound when it lies within
// eps·min(upper-lower, max(|bound|, 1)) of it, so boxes spanning several
// decades do not swallow their interior.
func Saturated(p model.Params, b model.Bounds, eps float64) []string {
	var names []string

	v, lo, hi := p.Vector(), b.Lower.Vector(), b.Upper.Vector()
	for i := range v {
		if b.Fixed(i) {
			continue
		}

		width := hi[i] - lo[i]
		if math.Abs(v[i]-lo[i]) <= boundTolerance(lo[i], width, eps) ||
			math.Abs(hi[i]-v[i]) <= boundTolerance(hi[i], width, eps) {
			names = append(names, model.Names[i])
		}
	}

	return names
}

func boundTolerance(bound, width, eps float64) float64 {
	return eps * math.Min(width, math.Max(math.Abs(bound), 1))
}
