// Package stream runs the live audio session: it owns the PortAudio device
// pair, invokes the pitch-shift engine once per block on the audio callback
// thread, and bridges the device's float32 buffers to the engine's float64
// blocks. The engine never sees the device; the runtime contract is one
// synchronous Process call per block, never overlapping.
package stream

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-pitchfx/dsp/shift"
	"github.com/cwbudde/algo-pitchfx/dsp/spectrum"
	"github.com/cwbudde/algo-pitchfx/internal/config"
	"github.com/cwbudde/algo-pitchfx/internal/log"
	"github.com/gordonklaus/portaudio"
)

// meterInterval is how often Run logs the output level.
const meterInterval = 2 * time.Second

// Session is one live pitch-shifting session over a duplex mono stream.
// All processing buffers are allocated in NewSession; the callback itself
// does not allocate.
type Session struct {
	engine      *shift.Engine
	shiftFactor float64

	stream *portaudio.Stream

	// Bridge buffers between the device's float32 frames and the engine.
	inBlock  []float64
	outBlock []float64

	blocks   atomic.Uint64
	warnings atomic.Uint64
	level    atomic.Uint64 // math.Float64bits of the last output block's RMS
}

// Stats is a point-in-time snapshot of session counters.
type Stats struct {
	Blocks   uint64
	Warnings uint64
}

// NewSession opens (but does not start) a duplex mono float32 stream
// configured from cfg. The config is validated before the stream opens, so
// an invalid shift factor fails here and the stream never starts.
func NewSession(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	in, err := inputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	out, err := outputDevice(cfg.Audio.OutputDevice)
	if err != nil {
		return nil, err
	}

	proc := cfg.Processor()

	session := &Session{
		shiftFactor: proc.ShiftFactor,
		inBlock:     make([]float64, proc.BlockSize),
		outBlock:    make([]float64, proc.BlockSize),
	}

	engine, err := shift.New(shift.WithStatusHandler(session.onStatus))
	if err != nil {
		return nil, err
	}
	session.engine = engine

	inLatency := in.DefaultHighInputLatency
	outLatency := out.DefaultHighOutputLatency
	if cfg.Audio.LowLatency {
		inLatency = in.DefaultLowInputLatency
		outLatency = out.DefaultLowOutputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   in,
			Channels: 1,
			Latency:  inLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   out,
			Channels: 1,
			Latency:  outLatency,
		},
		SampleRate:      proc.SampleRate,
		FramesPerBuffer: proc.BlockSize,
	}

	stream, err := portaudio.OpenStream(params, session.processBlock)
	if err != nil {
		return nil, fmt.Errorf("stream: opening duplex stream: %w", err)
	}
	session.stream = stream

	log.Infof("session: %s -> %s, %.0f Hz, %d frames/block, factor %.3f",
		in.Name, out.Name, proc.SampleRate, proc.BlockSize, session.shiftFactor)

	return session, nil
}

// Run starts the stream and blocks until the duration elapses or ctx is
// cancelled, then stops and closes the stream. The session cannot be reused
// after Run returns.
func (s *Session) Run(ctx context.Context, duration time.Duration) error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("stream: starting: %w", err)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	meter := time.NewTicker(meterInterval)
	defer meter.Stop()

	for running := true; running; {
		select {
		case <-ctx.Done():
			log.Infof("session: cancelled after %d blocks", s.blocks.Load())
			running = false
		case <-timer.C:
			log.Debugf("session: duration elapsed after %d blocks", s.blocks.Load())
			running = false
		case <-meter.C:
			log.Infof("session: level %.4f RMS, %d blocks", s.Level(), s.blocks.Load())
		}
	}

	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return fmt.Errorf("stream: stopping: %w", err)
	}

	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("stream: closing: %w", err)
	}

	return nil
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Blocks:   s.blocks.Load(),
		Warnings: s.warnings.Load(),
	}
}

// Level returns the RMS of the most recently processed output block.
func (s *Session) Level() float64 {
	return math.Float64frombits(s.level.Load())
}

// processBlock is the per-block audio callback. It runs on the real-time
// audio thread: no allocation, no blocking.
func (s *Session) processBlock(in, out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s.blocks.Add(1)

	widen(s.inBlock, in)

	err := s.engine.Process(s.inBlock, s.outBlock, shift.StatusFlags(flags), s.shiftFactor)
	if err != nil {
		// The factor was validated before the stream opened, so this is
		// unreachable in practice; output silence rather than stale data.
		for i := range out {
			out[i] = 0
		}
		log.Errorf("session: block dropped: %v", err)
		return
	}

	narrow(out, s.outBlock)
	s.level.Store(math.Float64bits(spectrum.RMS(s.outBlock)))
}

// onStatus reports nonzero runtime status flags. Non-fatal: the block that
// carried the flags is still processed.
func (s *Session) onStatus(flags shift.StatusFlags) {
	s.warnings.Add(1)
	log.Warnf("session: stream status flags %#x", uint64(flags))
}

// widen converts device float32 samples into the engine's float64 block.
// Short callbacks leave the block's tail zeroed.
func widen(dst []float64, src []float32) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// narrow converts the engine's float64 block back to device float32 samples.
func narrow(dst []float32, src []float64) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i])
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
