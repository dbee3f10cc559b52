package shift

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-pitchfx/dsp/buffer"
	"github.com/cwbudde/algo-pitchfx/dsp/core"
	"github.com/cwbudde/algo-pitchfx/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// FFTSize is the analysis frame length in samples.
	FFTSize = 2048

	// Hop is the analysis stride between sub-frames (75% overlap).
	Hop = FFTSize / 4

	// SmoothingAlpha is the exponential blend factor applied to each
	// resynthesized frame before overlap-add. The blend runs across
	// sub-frame index, acting as a one-pole lowpass over the chunk
	// sequence rather than within a single chunk.
	SmoothingAlpha = 0.5
)

var (
	// ErrInvalidShiftFactor reports a shift factor that is zero, negative,
	// or non-finite. Calls failing with it perform no output mutation.
	ErrInvalidShiftFactor = errors.New("shift: shift factor must be positive and finite")

	// ErrBlockLengthMismatch reports input and output blocks of unequal length.
	ErrBlockLengthMismatch = errors.New("shift: input and output blocks differ in length")
)

// StatusFlags is the opaque per-block status bitmask handed over by the
// audio runtime. A nonzero value indicates a stream irregularity such as an
// input overflow; it is diagnostic only and never aborts processing.
type StatusFlags uint64

// Option configures an Engine.
type Option func(*Engine)

// WithStatusHandler installs a handler invoked whenever Process receives
// nonzero status flags. The handler runs on the audio callback thread and
// must not block.
func WithStatusHandler(handler func(StatusFlags)) Option {
	return func(e *Engine) {
		e.statusFunc = handler
	}
}

// Engine is a streaming phase-vocoder pitch shifter.
//
// One Engine instance serves one audio stream. The smoothing buffer is the
// only state carried between calls; it is owned exclusively by the instance,
// so independent engines can coexist. Process must never be invoked
// concurrently or reentrantly on the same instance: the runtime contract is
// one synchronous call per block on a single real-time thread, and the
// smoothing buffer is deliberately unsynchronized.
type Engine struct {
	plan       *algofft.Plan[complex128]
	statusFunc func(StatusFlags)

	windowCoeffs []float64

	// Work buffers, allocated once in New and reused every call.
	frame     []float64
	spectrum  []complex128
	shifted   []complex128
	timeFrame []complex128

	// smoothing persists across calls for the lifetime of the engine.
	smoothing []float64
}

// New creates an engine with all analysis buffers preallocated.
func New(opts ...Option) (*Engine, error) {
	plan, err := algofft.NewPlan64(FFTSize)
	if err != nil {
		return nil, fmt.Errorf("shift: failed to create FFT plan: %w", err)
	}

	engine := &Engine{
		plan:         plan,
		windowCoeffs: window.Generate(window.TypeHann, FFTSize, window.WithPeriodic()),
		frame:        make([]float64, FFTSize),
		spectrum:     make([]complex128, FFTSize),
		shifted:      make([]complex128, FFTSize),
		timeFrame:    make([]complex128, FFTSize),
		smoothing:    make([]float64, FFTSize),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}

	return engine, nil
}

// Reset zeroes the smoothing buffer without reallocating, returning the
// engine to its freshly constructed state.
func (e *Engine) Reset() {
	core.Zero(e.smoothing)
}

// Process pitch-shifts one audio block.
//
// input is read-only; output is fully overwritten and must have the same
// length as input. Both are caller-owned and no reference to either is
// retained past the call. shiftFactor must be positive and finite and is
// expected to stay constant for the stream's lifetime.
//
// Each sub-frame of Hop stride is zero-padded to FFTSize before the full
// Hann window is applied. At block edges this windows only the available
// prefix of the signal (the padded tail is zero under any windowing), which
// keeps short final slices well defined.
//
// The spectral remap moves bin k to round(k*shiftFactor) and discards bins
// that land at or beyond FFTSize. It is a bin permutation in increasing
// source order, not a frequency-axis interpolation; remapped collisions and
// clipped output writes resolve silently in favor of the later value.
func (e *Engine) Process(input, output []float64, flags StatusFlags, shiftFactor float64) error {
	if !core.IsFinitePositive(shiftFactor) {
		return fmt.Errorf("%w: %v", ErrInvalidShiftFactor, shiftFactor)
	}

	if len(input) != len(output) {
		return fmt.Errorf("%w: %d vs %d", ErrBlockLengthMismatch, len(input), len(output))
	}

	if flags != 0 && e.statusFunc != nil {
		e.statusFunc(flags)
	}

	core.Zero(output)

	numChunks := (len(input) + Hop - 1) / Hop
	for chunk := range numChunks {
		start := chunk * Hop
		end := min(start+FFTSize, len(input))

		n := copy(e.frame, input[start:end])
		core.Zero(e.frame[n:])
		vecmath.MulBlockInPlace(e.frame, e.windowCoeffs)

		for i, v := range e.frame {
			e.spectrum[i] = complex(v, 0)
		}

		err := e.plan.Forward(e.spectrum, e.spectrum)
		if err != nil {
			return fmt.Errorf("shift: forward FFT failed: %w", err)
		}

		core.ZeroComplex(e.shifted)

		// round(k*shiftFactor) is nondecreasing in k, so the retained
		// source bins are always the prefix before the first overflow.
		// The comparison stays in float64 so huge factors cannot wrap
		// through the int conversion.
		for k := range FFTSize {
			newIndex := math.Round(float64(k) * shiftFactor)
			if newIndex >= FFTSize {
				break
			}

			e.shifted[int(newIndex)] = e.spectrum[k]
		}

		err = e.plan.Inverse(e.timeFrame, e.shifted)
		if err != nil {
			return fmt.Errorf("shift: inverse FFT failed: %w", err)
		}

		for i := range e.smoothing {
			e.smoothing[i] = (1-SmoothingAlpha)*e.smoothing[i] + SmoothingAlpha*real(e.timeFrame[i])
		}

		outPos := math.Floor(float64(start) / shiftFactor)
		if outPos >= float64(len(output)) {
			continue
		}

		outStart := int(outPos)
		span := min(FFTSize, len(output)-outStart)
		vecmath.AddBlockInPlace(output[outStart:outStart+span], e.smoothing[:span])
	}

	return nil
}

// blockPool recycles the scratch blocks used by ProcessBlocks.
var blockPool = buffer.NewPool()

// ProcessBlocks feeds input through one engine in consecutive fixed-size
// blocks, the way a live runtime would, and returns the concatenated output
// trimmed to len(input). The final short block, if any, is zero-padded
// before processing. Intended for offline (file) use; the live path calls
// Process directly.
func ProcessBlocks(e *Engine, input []float64, blockSize int, shiftFactor float64) ([]float64, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("shift: block size must be positive: %d", blockSize)
	}

	if len(input) == 0 {
		return nil, nil
	}

	inBlock := blockPool.Get(blockSize)
	defer blockPool.Put(inBlock)

	outBlock := blockPool.Get(blockSize)
	defer blockPool.Put(outBlock)

	in := inBlock.Samples()
	out := outBlock.Samples()
	result := make([]float64, 0, len(input))

	for start := 0; start < len(input); start += blockSize {
		end := min(start+blockSize, len(input))

		n := copy(in, input[start:end])
		core.Zero(in[n:])

		err := e.Process(in, out, 0, shiftFactor)
		if err != nil {
			return nil, err
		}

		result = append(result, out[:n]...)
	}

	return result, nil
}
