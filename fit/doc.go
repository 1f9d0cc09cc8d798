// Package fit recovers Elliot model parameters from a cleaned absorption
// spectrum.
//
// Each pass minimises the sum of squared residuals with a bounded
// Levenberg–Marquardt solver. [Fitter.FitStaged] chains the passes: an
// optional preliminary fit over the spectrum interior, the initial fit over
// the whole spectrum, and a refinement over Eg ± 0.5 eV seeded with the
// initial result.
//
// Hitting the iteration limit is reported through Result.Converged, and
// parameters left on a bound are listed in Result.Saturated. Only a
// non-finite objective is an error ([ErrOptimization]).
//
// # Usage
//
//	f := fit.New(fit.WithMaxIterations(200))
//	res, err := f.FitStaged(cleaned, start, bounds, fit.StageOptions{Narrow: true})
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Params, res.Saturated)
package fit
