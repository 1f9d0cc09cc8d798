package fit

import (
	"fmt"

	"github.com/cwbudde/algo-elliot/bandgap"
	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
)

const (
	// MinRefinePoints is the sample count the refinement window must exceed.
	MinRefinePoints = 10

	preliminaryLo = 0.10
	preliminaryHi = 0.90
)

// Stage names reported in StagedResult.Stages.
const (
	StagePreliminary = "preliminary"
	StageInitial     = "initial"
	StageRefinement  = "refinement"
)

// Stage records one pass of the staged protocol.
type Stage struct {
	Name   string
	Result Result
}

// StageOptions selects the optional passes of FitStaged.
type StageOptions struct {
	// Narrow refits on [Eg-HalfWidth, Eg+HalfWidth] around the initial result.
	Narrow bool
	// HalfWidth of the refinement window; 0 means bandgap.DefaultNarrowHalfWidth.
	HalfWidth float64
	// Preliminary seeds the initial pass with a fit over the 10th to 90th
	// energy percentile interior.
	Preliminary bool
}

// StagedResult is the final pass together with every pass that ran.
type StagedResult struct {
	Result
	Stages []Stage
}

// Stage returns the named pass, if it ran.
func (r StagedResult) Stage(name string) (Result, bool) {
	for _, st := range r.Stages {
		if st.Name == name {
			return st.Result, true
		}
	}

	return Result{}, false
}

// FitStaged runs the optional preliminary pass, the initial pass over all of
// s and, when enabled and the window holds more than MinRefinePoints
// samples, a refinement pass around the fitted Eg seeded with the initial
// result. All passes share the same bounds.
func (f *Fitter) FitStaged(s spectrum.Spectrum, start model.Params, b model.Bounds, opts StageOptions) (StagedResult, error) {
	var out StagedResult

	if opts.Preliminary {
		interior := s.Select(spectrum.NewRange(s.Percentile(preliminaryLo), s.Percentile(preliminaryHi)))
		if interior.Len() > 0 {
			pre, err := f.Fit(interior, start, b)
			if err != nil {
				return StagedResult{}, fmt.Errorf("%s stage: %w", StagePreliminary, err)
			}

			out.Stages = append(out.Stages, Stage{Name: StagePreliminary, Result: pre})
			start = pre.Params
		}
	}

	initial, err := f.Fit(s, start, b)
	if err != nil {
		return StagedResult{}, fmt.Errorf("%s stage: %w", StageInitial, err)
	}

	out.Stages = append(out.Stages, Stage{Name: StageInitial, Result: initial})
	out.Result = initial

	if !opts.Narrow {
		return out, nil
	}

	window := bandgap.Narrow(s, initial.Params.Eg, opts.HalfWidth)
	if window.Len() <= MinRefinePoints {
		return out, nil
	}

	refined, err := f.Fit(window, initial.Params, b)
	if err != nil {
		return StagedResult{}, fmt.Errorf("%s stage: %w", StageRefinement, err)
	}

	out.Stages = append(out.Stages, Stage{Name: StageRefinement, Result: refined})
	out.Result = refined

	return out, nil
}
