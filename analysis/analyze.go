package analysis

import (
	"fmt"

	"github.com/cwbudde/algo-elliot/bandgap"
	"github.com/cwbudde/algo-elliot/baseline"
	"github.com/cwbudde/algo-elliot/fit"
	"github.com/cwbudde/algo-elliot/metrics"
	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
	"gonum.org/v1/gonum/floats"
)

// Curves are sampled on the raw spectrum's grid, in its original order.
type Curves struct {
	Energy   []float64
	Raw      []float64
	Baseline []float64
	Cleaned  []float64
	Exciton  []float64
	Band     []float64
	Fitted   []float64 // exciton + band
	Total    []float64 // exciton + band + baseline, comparable with Raw
}

// Normalization is the model absorption DeltaE above the n = 1 exciton.
type Normalization struct {
	Energy     float64
	Absorption float64
}

// Result is the outcome of one dataset. It is never modified after Analyze
// returns it.
type Result struct {
	Dataset int

	Params        model.Params
	SSE           float64
	EbGroundState float64
	QWarning      string
	Deff          float64
	RSquared      float64
	Urbach        *metrics.UrbachFit // nil when the tail is unusable
	Saturated     []string
	Converged     bool
	Stages        []fit.Stage

	Baseline      baseline.Model
	Detection     bandgap.Detection
	InitialEg     float64
	EgSource      bandgap.Source
	Bounds        model.Bounds
	FitRange      spectrum.Range // samples used by the final stage
	Normalization Normalization
	Curves        Curves
}

// Analyze runs the full pipeline on one raw spectrum: baseline removal,
// onset detection, bound derivation, the staged fit and derived metrics.
func Analyze(raw spectrum.Spectrum, cfg Config) (Result, error) {
	if err := cfg.Overrides.Validate(); err != nil {
		return Result{}, err
	}

	bl, err := baseline.Fit(raw, cfg.FitMode, cfg.BaselineRange)
	if err != nil {
		return Result{}, err
	}

	cleaned := bl.Subtract(raw)

	det, err := bandgap.Detect(cleaned, bandgap.WithSmoothing(cfg.SmoothSigma))
	if err != nil {
		return Result{}, err
	}

	eg0, source := bandgap.Resolve(cfg.Start.Eg, det.Energy, det.Plausible)
	bounds := bandgap.ComputeBounds(eg0, cfg.Bounds, cfg.Overrides)

	start := cfg.Start
	start.Eg = eg0

	data := cleaned
	if !cfg.FitRange.IsZero() {
		data, err = cleaned.SelectMin(cfg.FitRange, MinFitPoints)
		if err != nil {
			return Result{}, fmt.Errorf("analysis: fit range: %w", err)
		}
	}

	fitter := cfg.fitter()

	staged, err := fitter.FitStaged(data, start, bounds, fit.StageOptions{
		Narrow:      cfg.AutoRange,
		HalfWidth:   cfg.NarrowHalfWidth,
		Preliminary: cfg.Preliminary,
	})
	if err != nil {
		return Result{}, err
	}

	p := staged.Params

	// The final stage fitted exactly the samples inside its span.
	final := data.Select(staged.Range)

	ebgs, qwarn := metrics.GroundStateBinding(p.Eb, p.Q)

	res := Result{
		Params:        p,
		SSE:           staged.SSE,
		EbGroundState: ebgs,
		QWarning:      qwarn,
		Deff:          metrics.EffectiveDimension(p.Q),
		RSquared:      metrics.RSquared(fitter.Model().Evaluate(p, final.Energies()), final.Absorption()),
		Saturated:     staged.Saturated,
		Converged:     staged.Converged,
		Stages:        staged.Stages,
		Baseline:      bl,
		Detection:     det,
		InitialEg:     eg0,
		EgSource:      source,
		Bounds:        bounds,
		FitRange:      staged.Range,
	}

	if u, ok := metrics.Urbach(final.Energies(), final.Absorption(), metrics.ExcitonEdge(p), cfg.UrbachWidth); ok {
		res.Urbach = &u
	}

	normE := metrics.ExcitonEdge(p) + cfg.DeltaE
	res.Normalization = Normalization{
		Energy:     normE,
		Absorption: fitter.Model().Evaluate(p, []float64{normE})[0],
	}

	energies := raw.Energies()
	exciton, band, fitted := fitter.Model().Components(p, energies)
	baseCurve := bl.Curve(energies)

	res.Curves = Curves{
		Energy:   energies,
		Raw:      raw.Absorption(),
		Baseline: baseCurve,
		Cleaned:  cleaned.Absorption(),
		Exciton:  exciton,
		Band:     band,
		Fitted:   fitted,
		Total:    floats.AddTo(make([]float64, len(fitted)), fitted, baseCurve),
	}

	return res, nil
}
