package spectrum

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pitchfx/internal/testutil"
)

func TestMagnitude(t *testing.T) {
	in := []complex128{3 + 4i, 0, 1}

	got := Magnitude(in)
	want := []float64{5, 0, 1}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)

	if Magnitude(nil) != nil {
		t.Fatal("empty input should return nil")
	}
}

func TestMagnitudeFromPartsMatchesMagnitude(t *testing.T) {
	in := []complex128{1 + 1i, -2 + 0.5i, 0.25 - 4i}

	re := make([]float64, len(in))
	im := make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	dst := make([]float64, len(in))
	MagnitudeFromParts(dst, re, im)

	testutil.RequireSliceNearlyEqual(t, dst, Magnitude(in), 1e-12)
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}

	if got := RMS(testutil.DC(0.5, 64)); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("RMS(DC 0.5) = %v, want 0.5", got)
	}

	// A full-cycle sine has RMS amplitude/sqrt(2).
	sine := testutil.DeterministicSine(1000, 48000, 1.0, 48000)
	if got := RMS(sine); math.Abs(got-1/math.Sqrt2) > 1e-3 {
		t.Fatalf("RMS(sine) = %v, want %v", got, 1/math.Sqrt2)
	}
}

func TestPeak(t *testing.T) {
	if got := Peak([]float64{0.1, -0.9, 0.5}); got != 0.9 {
		t.Fatalf("Peak = %v, want 0.9", got)
	}
}

func TestDominantBin(t *testing.T) {
	mags := []float64{10, 0, 3, 7, 1}
	if got := DominantBin(mags); got != 3 {
		t.Fatalf("DominantBin = %d, want 3 (DC ignored)", got)
	}

	if got := DominantBin([]float64{1}); got != 0 {
		t.Fatalf("DominantBin of single bin = %d, want 0", got)
	}
}

func TestDominantFrequency(t *testing.T) {
	const (
		sampleRate = 48000.0
		n          = 4096
	)

	// Exact-bin frequency avoids leakage in the measurement.
	freq := sampleRate * 86 / n
	sine := testutil.DeterministicSine(freq, sampleRate, 0.8, n)

	got, err := DominantFrequency(sine, sampleRate)
	if err != nil {
		t.Fatalf("DominantFrequency() error = %v", err)
	}

	if math.Abs(got-freq) > sampleRate/n {
		t.Fatalf("DominantFrequency = %v Hz, want %v Hz", got, freq)
	}

	if _, err := DominantFrequency(nil, sampleRate); err == nil {
		t.Fatal("expected error for empty signal")
	}
}
