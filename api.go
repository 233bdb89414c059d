package proaudio

import (
	"context"
	"sync"
)

var (
	defaultDetector    = sync.OnceValue(func() *Detector { return NewDetector(DefaultOptions()) })
	defaultCoordinator = sync.OnceValue(func() *Coordinator { return NewCoordinator(DefaultOptions()) })
)

// DetectCurrentAudioSettings reads the active backend's settings with
// DefaultOptions. The result is not validated.
func DetectCurrentAudioSettings() (Settings, error) {
	det, err := defaultDetector().DetectCurrent(context.Background())
	if err != nil {
		return Settings{}, err
	}
	return det.Settings, nil
}

// DetectAudioDevice returns a human-readable description of the active device
func DetectAudioDevice() (string, error) {
	return defaultDetector().DetectDeviceDescription(context.Background())
}

// DetectAllAudioDevices lists the devices of the active backend
func DetectAllAudioDevices() ([]DeviceDescriptor, error) {
	return defaultDetector().DetectAllDevices(context.Background())
}

// ApplyAudioSettingsWithAuthBlocking applies settings through the polkit
// prompt and blocks until the prompt is answered and the change verified.
// It never panics when backend commands or pkexec are missing; every
// failure is returned as an error.
func ApplyAudioSettingsWithAuthBlocking(settings Settings) (Outcome, error) {
	return defaultCoordinator().Apply(context.Background(), settings)
}
