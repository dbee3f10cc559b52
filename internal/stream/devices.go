package stream

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes one audio device known to PortAudio.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("stream: failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("stream: failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Devices returns all devices known to PortAudio. Initialize must have been
// called first.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("stream: listing devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}

	return devices, nil
}

// inputDevice resolves a device ID to a PortAudio input device.
// An ID of -1 selects the system default.
func inputDevice(id int) (*portaudio.DeviceInfo, error) {
	if id < 0 {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("stream: default input device: %w", err)
		}
		return dev, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("stream: listing devices: %w", err)
	}

	if id >= len(infos) {
		return nil, fmt.Errorf("stream: invalid input device ID %d", id)
	}

	return infos[id], nil
}

// outputDevice resolves a device ID to a PortAudio output device.
// An ID of -1 selects the system default.
func outputDevice(id int) (*portaudio.DeviceInfo, error) {
	if id < 0 {
		dev, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("stream: default output device: %w", err)
		}
		return dev, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("stream: listing devices: %w", err)
	}

	if id >= len(infos) {
		return nil, fmt.Errorf("stream: invalid output device ID %d", id)
	}

	return infos[id], nil
}
