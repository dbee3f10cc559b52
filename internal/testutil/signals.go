// Package testutil provides deterministic signals and tolerance helpers for tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// SineBlocks generates count consecutive blocks of a continuous sine wave,
// as an audio runtime would deliver them one callback at a time.
func SineBlocks(freqHz, sampleRate, amplitude float64, blockSize, count int) [][]float64 {
	full := DeterministicSine(freqHz, sampleRate, amplitude, blockSize*count)
	blocks := make([][]float64, count)
	for i := range blocks {
		blocks[i] = full[i*blockSize : (i+1)*blockSize]
	}
	return blocks
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
