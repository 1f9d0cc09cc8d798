package analysis

import (
	"github.com/cwbudde/algo-elliot/bandgap"
	"github.com/cwbudde/algo-elliot/baseline"
	"github.com/cwbudde/algo-elliot/fit"
	"github.com/cwbudde/algo-elliot/metrics"
	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
)

const (
	// DefaultDeltaE is the normalisation offset above the n = 1 exciton (eV).
	DefaultDeltaE = 0.2
	// DefaultNS is the baseline point density; the continuum quadrature uses
	// NodesPerNS·NS nodes.
	DefaultNS = 20
	// NodesPerNS converts NS into continuum quadrature nodes.
	NodesPerNS = 10
	// MinFitPoints is the smallest user fit range accepted.
	MinFitPoints = 10
)

// Config carries every per-run setting. It is passed by value; Run never
// mutates it.
type Config struct {
	DeltaE  float64
	NS      int
	FitMode baseline.Mode

	// Datasets lists 1-based dataset numbers (table columns after the
	// energy axis). Empty selects all.
	Datasets []int

	Start     model.Params
	Bounds    model.Bounds // static box; Eg limits are always derived
	Overrides bandgap.Overrides

	// AutoRange enables the Eg ± NarrowHalfWidth refinement stage.
	AutoRange       bool
	NarrowHalfWidth float64
	Preliminary     bool // 10-90 % interior seed fit before the initial stage

	BaselineRange spectrum.Range
	FitRange      spectrum.Range // zero value fits the whole spectrum

	Workers       int
	MaxIterations int
	Levels        int
	SmoothSigma   float64 // onset detection pre-smoothing, samples
	UrbachWidth   float64
}

// DefaultConfig returns the analysis defaults.
func DefaultConfig() Config {
	return Config{
		DeltaE:          DefaultDeltaE,
		NS:              DefaultNS,
		FitMode:         baseline.None,
		Start:           model.Params{Eg: 2.62, Eb: 0.050, Gamma: 0.100, Ucvsq: 10, Mhcnp: 0.060, Q: 0.2},
		Bounds:          bandgap.DefaultBounds(),
		AutoRange:       true,
		NarrowHalfWidth: bandgap.DefaultNarrowHalfWidth,
		Workers:         1,
		MaxIterations:   fit.DefaultMaxIterations,
		Levels:          model.DefaultLevels,
		UrbachWidth:     metrics.DefaultUrbachWidth,
	}
}

func (c Config) fitter() *fit.Fitter {
	nodes := model.DefaultNodes
	if c.NS > 0 {
		nodes = NodesPerNS * c.NS
	}

	return fit.New(
		fit.WithMaxIterations(c.MaxIterations),
		fit.WithModel(model.WithNodes(nodes), model.WithLevels(c.Levels)),
	)
}
