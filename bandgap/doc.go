// Package bandgap locates the absorption onset and derives the parameter box
// and refinement window for fitting.
//
// Detection walks the cleaned spectrum from low to high energy and reports
// the first sample above max(0.1, 5% of the peak). Noisy data can be
// pre-smoothed with an FFT Gaussian ([WithSmoothing]). [Resolve] then chooses
// between a user-supplied band gap and the detected one, [ComputeBounds]
// centres a ±0.4 eV Eg box on the choice, and [Narrow] cuts the ±0.5 eV
// window used by the refinement stage.
//
// # Usage
//
//	det, err := bandgap.Detect(cleaned)
//	eg0, _ := bandgap.Resolve(start.Eg, det.Energy, det.Plausible)
//	bounds := bandgap.ComputeBounds(eg0, bandgap.DefaultBounds(), nil)
package bandgap
