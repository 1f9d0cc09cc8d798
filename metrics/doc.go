// Package metrics derives physical and quality figures from a fitted Elliot
// model: the ground-state exciton binding energy, the effective dimension,
// the coefficient of determination and the Urbach tail energy.
package metrics
