// Package spectrum holds the immutable absorption spectrum type consumed by
// the fitting packages.
//
// A [Spectrum] is an ordered sequence of (energy, absorption) pairs with a
// strictly monotonic energy axis in eV. The original sample order is kept so
// that fitted curves can be reported on the grid the data arrived on; helpers
// that care about energy order (for example band-gap detection) walk the
// samples in ascending energy regardless of storage direction.
//
// # Usage
//
//	s, err := spectrum.FromWavelength(nm, absorption) // E = 1239.84193/λ
//	window := s.Select(spectrum.NewRange(2.0, 3.0))
package spectrum
