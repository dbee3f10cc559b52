// Package wavio reads and writes mono WAV files as float64 sample slices
// for the offline processing path. Multi-channel files are rejected; the
// processing chain is mono end to end.
package wavio

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-pitchfx/dsp/core"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const outputBitDepth = 16

// ReadMono decodes a mono WAV file into normalized float64 samples in
// [-1, 1] and returns them with the file's sample rate.
func ReadMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: opening %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("wavio: %s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: decoding %s: %w", path, err)
	}

	if buf.Format.NumChannels != 1 {
		return nil, 0, fmt.Errorf("wavio: %s has %d channels, only mono is supported",
			path, buf.Format.NumChannels)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}

	return samples, buf.Format.SampleRate, nil
}

// WriteMono encodes float64 samples as a 16-bit mono WAV file. Samples
// outside [-1, 1] are clipped.
func WriteMono(path string, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wavio: sample rate must be positive: %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: creating %s: %w", path, err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, outputBitDepth, 1, 1)

	const scale = 1 << (outputBitDepth - 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: outputBitDepth,
	}

	for i, v := range samples {
		buf.Data[i] = int(core.Clamp(v, -1, 1) * (scale - 1))
	}

	if err := encoder.Write(buf); err != nil {
		encoder.Close()
		return fmt.Errorf("wavio: writing %s: %w", path, err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("wavio: finalizing %s: %w", path, err)
	}

	return nil
}
