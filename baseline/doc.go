// Package baseline removes background absorption before model fitting.
//
// Three forms are supported: no baseline, a straight line a·E + b, and a
// Rayleigh scattering tail c·E⁴ forced through the origin. Both fitted forms
// are ordinary least squares over the samples inside a caller-chosen energy
// range, solved with gonum's stat.LinearRegression.
//
// # Usage
//
//	bl, err := baseline.Fit(raw, baseline.Linear, spectrum.NewRange(1.6, 1.9))
//	if err != nil {
//		return err
//	}
//	cleaned := bl.Subtract(raw)
//
// Subtract always allocates a new spectrum; callers own the decision of
// whether subtraction already happened.
package baseline
