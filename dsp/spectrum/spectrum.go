// Package spectrum provides magnitude, level, and dominant-frequency
// analysis of real-valued signals and complex spectra.
package spectrum

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

var errEmptySignal = errors.New("spectrum: empty signal")

// Magnitude returns |X[k]| for each complex spectrum bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re := make([]float64, len(in))
	im := make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)

	return out
}

// MagnitudeFromParts computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
// All three slices must share the same length. This is the zero-allocation
// path for callers that keep real and imaginary parts separated.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// RMS returns the root-mean-square level of signal, or 0 for an empty slice.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range signal {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(signal)))
}

// Peak returns the maximum absolute sample value in signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, v := range signal {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return peak
}

// DominantBin returns the index of the largest-magnitude bin, ignoring DC.
func DominantBin(magnitudes []float64) int {
	if len(magnitudes) < 2 {
		return 0
	}

	maxBin := 1
	maxMag := magnitudes[1]

	for k := 2; k < len(magnitudes); k++ {
		if magnitudes[k] > maxMag {
			maxMag = magnitudes[k]
			maxBin = k
		}
	}

	return maxBin
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of signal, measured with a real-input FFT over the whole slice.
func DominantFrequency(signal []float64, sampleRate float64) (float64, error) {
	if len(signal) == 0 {
		return 0, errEmptySignal
	}

	fft := fourier.NewFFT(len(signal))
	coeffs := fft.Coefficients(nil, signal)

	maxBin := 0
	maxMag := 0.0

	for k := 1; k < len(coeffs); k++ {
		re := real(coeffs[k])
		im := imag(coeffs[k])

		mag := re*re + im*im
		if mag > maxMag {
			maxMag = mag
			maxBin = k
		}
	}

	return fft.Freq(maxBin) * sampleRate, nil
}
