package bandgap

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-elliot/internal/smooth"
	"github.com/cwbudde/algo-elliot/spectrum"
)

const (
	// DefaultThresholdFloor is the minimum absorption counted as an onset.
	DefaultThresholdFloor = 0.1
	// DefaultThresholdFraction is the onset threshold relative to the peak.
	DefaultThresholdFraction = 0.05
)

// Config controls onset detection.
type Config struct {
	ThresholdFloor    float64
	ThresholdFraction float64
	// SmoothSigma is the Gaussian pre-smoothing width in samples; 0 disables it.
	SmoothSigma float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		ThresholdFloor:    DefaultThresholdFloor,
		ThresholdFraction: DefaultThresholdFraction,
	}
}

// WithThreshold sets the absolute floor and the fraction of the peak
// absorption; the effective threshold is the larger of the two.
func WithThreshold(floor, fraction float64) Option {
	return func(c *Config) {
		if floor >= 0 && fraction >= 0 && fraction <= 1 {
			c.ThresholdFloor = floor
			c.ThresholdFraction = fraction
		}
	}
}

// WithSmoothing enables FFT Gaussian smoothing of width sigma samples before
// the threshold scan. Zero disables smoothing; negative values are ignored.
func WithSmoothing(sigma float64) Option {
	return func(c *Config) {
		if sigma >= 0 && !math.IsInf(sigma, 0) {
			c.SmoothSigma = sigma
		}
	}
}

// Detection is the outcome of an onset scan.
type Detection struct {
	Energy    float64        // onset energy, or the median energy when Found is false
	Threshold float64        // absorption level that had to be exceeded
	Found     bool           // a sample crossed the threshold
	Plausible spectrum.Range // energy window a user-supplied Eg must fall in
}

// Detect returns the lowest energy at which the cleaned absorption exceeds
// max(floor, fraction·peak). Samples are scanned in ascending energy order
// whatever the storage direction. When nothing crosses, the median energy is
// returned with Found unset.
func Detect(s spectrum.Spectrum, opts ...Option) (Detection, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	absorption := s.Absorption()
	if cfg.SmoothSigma > 0 && len(absorption) > 0 {
		smoothed, err := smooth.Gaussian(absorption, cfg.SmoothSigma)
		if err != nil {
			return Detection{}, fmt.Errorf("bandgap: %w", err)
		}

		absorption = smoothed
	}

	peak := 0.0
	if len(absorption) > 0 {
		peak = absorption[0]
		for _, v := range absorption[1:] {
			peak = math.Max(peak, v)
		}
	}

	d := Detection{
		Threshold: math.Max(cfg.ThresholdFloor, cfg.ThresholdFraction*peak),
		Plausible: s.Span(),
	}

	for k := 0; k < s.Len(); k++ {
		i := s.AscendingIndex(k)
		if absorption[i] > d.Threshold {
			d.Energy, _ = s.At(i)
			d.Found = true

			return d, nil
		}
	}

	d.Energy = s.MedianEnergy()

	return d, nil
}
