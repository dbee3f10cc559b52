// Command pitchfx pitch-shifts audio in real time through a PortAudio
// duplex stream, or offline between WAV files, using the same engine path
// for both.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-pitchfx/dsp/shift"
	"github.com/cwbudde/algo-pitchfx/dsp/spectrum"
	"github.com/cwbudde/algo-pitchfx/internal/config"
	"github.com/cwbudde/algo-pitchfx/internal/log"
	"github.com/cwbudde/algo-pitchfx/internal/stream"
	"github.com/cwbudde/algo-pitchfx/internal/wavio"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pitchfx:", err)
		os.Exit(1)
	}
}

type cliOptions struct {
	configPath string
	logLevel   string

	factor    float64
	semitones float64

	sampleRate float64
	blockSize  int
	duration   time.Duration

	inputDevice  int
	outputDevice int
	lowLatency   bool

	inputFile  string
	outputFile string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "pitchfx",
		Short:         "Real-time phase-vocoder pitch shifter",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64VarP(&opts.factor, "factor", "f", config.DefaultFactor,
		"Pitch-shift factor (2.0 = up one octave)")
	rootCmd.PersistentFlags().Float64Var(&opts.semitones, "semitones", 0,
		"Pitch shift in semitones (overridden by --factor)")
	rootCmd.PersistentFlags().Float64VarP(&opts.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hz")
	rootCmd.PersistentFlags().IntVarP(&opts.blockSize, "block-size", "b", config.DefaultBlockSize,
		"Samples per processing block")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "Run a live session between the input and output devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runLive(cfg)
		},
	}
	liveCmd.Flags().DurationVarP(&opts.duration, "duration", "t", config.DefaultDuration.Std(),
		"Session duration")
	liveCmd.Flags().IntVarP(&opts.inputDevice, "device", "d", config.DefaultDeviceID,
		"Input device ID (-1 for system default)")
	liveCmd.Flags().IntVar(&opts.outputDevice, "output-device", config.DefaultDeviceID,
		"Output device ID (-1 for system default)")
	liveCmd.Flags().BoolVarP(&opts.lowLatency, "low-latency", "l", false,
		"Request low-latency device settings")
	rootCmd.AddCommand(liveCmd)

	wavCmd := &cobra.Command{
		Use:   "wav",
		Short: "Pitch-shift a mono WAV file block by block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runWav(cfg, opts.inputFile, opts.outputFile)
		},
	}
	wavCmd.Flags().StringVarP(&opts.inputFile, "input", "i", "", "Input WAV file")
	wavCmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output WAV file")
	_ = wavCmd.MarkFlagRequired("input")
	_ = wavCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(wavCmd)

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDevices()
		},
	}
	rootCmd.AddCommand(devicesCmd)

	return rootCmd
}

// resolveConfig loads the config file (or defaults) and applies any flags
// the user set explicitly on top of it, then validates the result.
func resolveConfig(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("factor") {
		cfg.Shift.Factor = opts.factor
		cfg.Shift.Semitones = 0
	} else if flags.Changed("semitones") {
		cfg.Shift.Factor = 0
		cfg.Shift.Semitones = opts.semitones
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate = opts.sampleRate
	}
	if flags.Changed("block-size") {
		cfg.Audio.BlockSize = opts.blockSize
	}
	if flags.Changed("duration") {
		cfg.Duration = config.Duration(opts.duration)
	}
	if flags.Changed("device") {
		cfg.Audio.InputDevice = opts.inputDevice
	}
	if flags.Changed("output-device") {
		cfg.Audio.OutputDevice = opts.outputDevice
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency = opts.lowLatency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}

	return cfg, nil
}

func runLive(cfg *config.Config) error {
	if err := stream.Initialize(); err != nil {
		return err
	}
	defer stream.Terminate()

	session, err := stream.NewSession(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx, cfg.Duration.Std()); err != nil {
		return err
	}

	stats := session.Stats()
	log.Infof("session finished: %d blocks, %d stream warnings", stats.Blocks, stats.Warnings)

	return nil
}

func runWav(cfg *config.Config, inputPath, outputPath string) error {
	samples, sampleRate, err := wavio.ReadMono(inputPath)
	if err != nil {
		return err
	}

	log.Infof("read %s: %d samples at %d Hz", inputPath, len(samples), sampleRate)

	engine, err := shift.New(shift.WithStatusHandler(func(flags shift.StatusFlags) {
		log.Warnf("offline block carried status flags %#x", uint64(flags))
	}))
	if err != nil {
		return err
	}

	proc := cfg.Processor()

	out, err := shift.ProcessBlocks(engine, samples, proc.BlockSize, proc.ShiftFactor)
	if err != nil {
		return err
	}

	if err := wavio.WriteMono(outputPath, out, sampleRate); err != nil {
		return err
	}

	inRMS := spectrum.RMS(samples)
	outRMS := spectrum.RMS(out)
	log.Infof("wrote %s: factor %.3f, RMS %.4f -> %.4f", outputPath, proc.ShiftFactor, inRMS, outRMS)

	if dominant, err := spectrum.DominantFrequency(out, float64(sampleRate)); err == nil {
		log.Debugf("output dominant frequency: %.1f Hz", dominant)
	}

	return nil
}

func runDevices() error {
	if err := stream.Initialize(); err != nil {
		return err
	}
	defer stream.Terminate()

	devices, err := stream.Devices()
	if err != nil {
		return err
	}

	for _, d := range devices {
		kind := "input/output"
		switch {
		case d.MaxInputChannels == 0:
			kind = "output"
		case d.MaxOutputChannels == 0:
			kind = "input"
		}

		fmt.Printf("[%d] %s (%s, in:%d out:%d, %.0f Hz)\n",
			d.ID, d.Name, kind, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}

	return nil
}
