// Package model evaluates the Elliot absorption model for excitonic
// semiconductors in fractional dimension.
//
// The spectrum is the sum of a bound-exciton series and a Sommerfeld-enhanced
// band-to-band continuum, both broadened with a hyperbolic secant lineshape:
//
//	Enx(n)     = Eg - Eb/(n-q)^2
//	exciton(E) = Σ_{n=1..L} 2Eb/(n-q)^3 · sech((E-Enx(n))/Γ)
//	f(E')      = (1 + b(E')) / (1 - exp(-2π·sqrt(Eb/(E'-Eg))))
//	b(E')      = 10·mhcnp·(E'-Eg) + 126·mhcnp²·(E'-Eg)²
//	band(E)    = ∫_{Eg}^{2Eg} sech((E-E')/Γ) · f(E') dE'
//	α(E)       = ucvsq · sqrt(Eb) · (exciton(E) + band(E))
//
// The series is truncated at L levels ([DefaultLevels]) and the continuum is
// integrated with a fixed-node trapezoid rule ([DefaultNodes]); both are
// tunable through [WithLevels] and [WithNodes].
//
// Building with -tags fastmath replaces the exponential inside the sech kernel
// with the algo-approx approximation.
package model
