// Package config loads and validates the runtime configuration for the
// pitchfx tool from YAML, with built-in defaults when no file is present.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-pitchfx/dsp/core"
	"github.com/cwbudde/algo-pitchfx/internal/log"
	"gopkg.in/yaml.v3"
)

// Bounds and defaults for the audio session.
const (
	DefaultSampleRate = 48000.0
	DefaultBlockSize  = 1024
	DefaultDeviceID   = -1 // -1 selects the system default device
	DefaultFactor     = 1.0
	DefaultDuration   = Duration(10 * time.Second)
	DefaultLogLevel   = "info"

	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0
	MaxBlockSize  = 8192

	// MinFactor and MaxFactor bound the usable shift range; the engine only
	// requires factor > 0, but extreme values shift all content out of band.
	MinFactor = 0.25
	MaxFactor = 4.0
)

// Duration wraps time.Duration so YAML accepts Go duration strings ("5s").
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML parses a duration string node.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", node.Value, err)
	}

	*d = Duration(parsed)

	return nil
}

// Config is the root configuration, loaded from YAML.
type Config struct {
	LogLevel string      `yaml:"log_level"`
	Audio    AudioConfig `yaml:"audio"`
	Shift    ShiftConfig `yaml:"shift"`
	Duration Duration    `yaml:"duration"`
}

// AudioConfig holds device and stream settings.
type AudioConfig struct {
	InputDevice  int     `yaml:"input_device"`  // PortAudio device index (-1 for default)
	OutputDevice int     `yaml:"output_device"` // PortAudio device index (-1 for default)
	SampleRate   float64 `yaml:"sample_rate"`
	BlockSize    int     `yaml:"block_size"`
	LowLatency   bool    `yaml:"low_latency"`
}

// ShiftConfig holds the pitch-shift amount. Factor takes precedence; when
// Factor is zero and Semitones is set, the factor is derived from it.
type ShiftConfig struct {
	Factor    float64 `yaml:"factor"`
	Semitones float64 `yaml:"semitones"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:  DefaultDeviceID,
			OutputDevice: DefaultDeviceID,
			SampleRate:   DefaultSampleRate,
			BlockSize:    DefaultBlockSize,
		},
		Shift: ShiftConfig{
			Factor: DefaultFactor,
		},
		Duration: DefaultDuration,
	}
}

// Load reads the configuration from path, or returns defaults when path is
// empty. The result is validated; an invalid shift factor fails here so the
// stream never starts with one.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Factor resolves the effective shift factor from the shift section.
func (c *Config) Factor() float64 {
	if c.Shift.Factor != 0 {
		return c.Shift.Factor
	}

	if c.Shift.Semitones != 0 {
		return core.SemitonesToRatio(c.Shift.Semitones)
	}

	return DefaultFactor
}

// Processor maps the validated configuration onto the DSP layer's processor
// settings. The stream session and the offline path both consume this rather
// than reading audio fields directly.
func (c *Config) Processor() core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(c.Audio.SampleRate),
		core.WithBlockSize(c.Audio.BlockSize),
		core.WithShiftFactor(c.Factor()),
	)
}

// Validate checks all fields against their documented bounds.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("config: sample rate %v out of range [%v, %v]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}

	if c.Audio.BlockSize <= 0 || c.Audio.BlockSize > MaxBlockSize {
		return fmt.Errorf("config: block size %d out of range [1, %d]",
			c.Audio.BlockSize, MaxBlockSize)
	}

	factor := c.Factor()
	if math.IsNaN(factor) || factor < MinFactor || factor > MaxFactor {
		return fmt.Errorf("config: shift factor %v out of range [%v, %v]",
			factor, MinFactor, MaxFactor)
	}

	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive: %v", c.Duration.Std())
	}

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}

	return nil
}
