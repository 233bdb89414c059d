package proaudio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_DetectCurrent(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		avail  CommandAvailability
		want   Detection
	}{
		{
			name: "pipewire",
			runner: newFakeRunner().
				on("pw-metadata -n settings", pwMetadataOutput).
				on("wpctl inspect @DEFAULT_AUDIO_SINK@", wpctlInspectOutput),
			avail: allAvailable(),
			want: Detection{
				Settings: NewSettings(48000, 32, 1024, "pipewire:56"),
				Backend:  BackendPipeWire,
			},
		},
		{
			name: "pulse",
			runner: newFakeRunner().
				on("pactl info", pactlInfoOutput).
				on("pactl list short sinks", pactlSinksOutput),
			avail: availableOnly("pactl", "aplay"),
			want: Detection{
				Settings:  NewSettings(48000, 24, 256, "pulse:0"),
				Backend:   BackendPulse,
				Defaulted: Defaulted{BufferSize: true},
			},
		},
		{
			name: "alsa",
			runner: newFakeRunner().
				on("aplay -l", aplayListOutput).
				on("cat "+alsaHwParamsPath, alsaHwParamsOutput),
			avail: availableOnly("aplay", "cat"),
			want: Detection{
				Settings: NewSettings(96000, 24, 512, "alsa:hw:0,0"),
				Backend:  BackendALSA,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, err := NewDetector(testOptions(tt.runner, tt.avail)).DetectCurrent(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, det)
		})
	}
}

func TestDetector_DetectCurrent_NoBackend(t *testing.T) {
	_, err := NewDetector(testOptions(newFakeRunner(), availableOnly())).DetectCurrent(context.Background())
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestDetector_DetectDeviceDescription(t *testing.T) {
	r := newFakeRunner().
		on("pw-metadata -n settings", pwMetadataOutput).
		on("wpctl inspect @DEFAULT_AUDIO_SINK@", wpctlInspectOutput)

	desc, err := NewDetector(testOptions(r, allAvailable())).DetectDeviceDescription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Built-in Audio Analog Stereo", desc)
}

func TestDetector_DetectDeviceDescription_Empty(t *testing.T) {
	r := newFakeRunner().on("pactl info", "Default Sample Specification: s16le 2ch 44100Hz\n")

	_, err := NewDetector(testOptions(r, availableOnly("pactl"))).DetectDeviceDescription(context.Background())
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestDetector_DetectAllDevices(t *testing.T) {
	r := newFakeRunner().
		on("pw-metadata -n settings", pwMetadataOutput).
		on("wpctl status", wpctlStatusOutput)

	devices, err := NewDetector(testOptions(r, allAvailable())).DetectAllDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 3)
	for _, d := range devices {
		assert.Equal(t, BackendPipeWire, d.Backend)
	}
}

func TestDetector_DetectAllDevices_ListFails(t *testing.T) {
	r := newFakeRunner().on("pw-metadata -n settings", pwMetadataOutput)

	_, err := NewDetector(testOptions(r, allAvailable())).DetectAllDevices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list pipewire devices")
}
