// Package smooth provides FFT-based Gaussian smoothing for noisy spectra.
package smooth

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrInvalidSigma is returned for a non-positive or non-finite width.
var ErrInvalidSigma = errors.New("smooth: sigma must be positive and finite")

// Kernel returns a unit-sum Gaussian of standard deviation sigma (in samples)
// truncated at ±3σ.
func Kernel(sigma float64) ([]float64, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSigma, sigma)
	}

	half := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*half+1)

	var sum float64
	for i := range kernel {
		x := float64(i-half) / sigma
		kernel[i] = math.Exp(-0.5 * x * x)
		sum += kernel[i]
	}

	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel, nil
}

// Gaussian returns y smoothed with a Gaussian of width sigma samples. Near the
// edges the kernel is renormalised over the samples it covers, so a constant
// input is returned unchanged and no zero padding leaks into the result.
//
// The data and an all-ones signal are convolved in a single complex FFT pass
// (data in the real part, ones in the imaginary part); the kernel is real so
// the two convolutions do not mix.
func Gaussian(y []float64, sigma float64) ([]float64, error) {
	kernel, err := Kernel(sigma)
	if err != nil {
		return nil, err
	}

	n := len(y)
	if n == 0 {
		return nil, nil
	}

	half := len(kernel) / 2
	fftSize := nextPowerOf2(n + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("smooth: failed to create FFT plan: %w", err)
	}

	kernelPadded := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelPadded[i] = complex(v, 0)
	}

	kernelFFT := make([]complex128, fftSize)
	if err := plan.Forward(kernelFFT, kernelPadded); err != nil {
		return nil, fmt.Errorf("smooth: kernel FFT failed: %w", err)
	}

	signal := make([]complex128, fftSize)
	for i, v := range y {
		signal[i] = complex(v, 1)
	}

	if err := plan.Forward(signal, signal); err != nil {
		return nil, fmt.Errorf("smooth: forward FFT failed: %w", err)
	}

	for i := range signal {
		signal[i] *= kernelFFT[i]
	}

	if err := plan.Inverse(signal, signal); err != nil {
		return nil, fmt.Errorf("smooth: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		c := signal[i+half]
		out[i] = real(c) / imag(c)
	}

	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
