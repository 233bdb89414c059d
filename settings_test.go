package proaudio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettings_StoresValuesUnmodified(t *testing.T) {
	s := NewSettings(1, 7, 99999, "")
	assert.Equal(t, Settings{SampleRate: 1, BitDepth: 7, BufferSize: 99999, DeviceID: ""}, s)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		field    string
		sentinel error
	}{
		{"valid studio", NewSettings(48000, 24, 512, "default"), "", nil},
		{"valid lower bounds", NewSettings(8000, 16, 64, "alsa:hw:0"), "", nil},
		{"valid upper bounds", NewSettings(384000, 32, 8192, "pipewire:56"), "", nil},
		{"rate too low", NewSettings(7999, 24, 512, "default"), "sample_rate", ErrInvalidSampleRate},
		{"rate too high", NewSettings(384001, 24, 512, "default"), "sample_rate", ErrInvalidSampleRate},
		{"bit depth 20", NewSettings(48000, 20, 512, "default"), "bit_depth", ErrInvalidBitDepth},
		{"bit depth 8", NewSettings(48000, 8, 512, "default"), "bit_depth", ErrInvalidBitDepth},
		{"buffer too small", NewSettings(48000, 24, 63, "default"), "buffer_size", ErrInvalidBufferSize},
		{"buffer too large", NewSettings(48000, 24, 8193, "default"), "buffer_size", ErrInvalidBufferSize},
		{"empty device", NewSettings(48000, 24, 512, ""), "device_id", ErrEmptyDeviceID},
		{"first failing field wins", NewSettings(1, 8, 1, ""), "sample_rate", ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.sentinel == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSettings_ValidateIsPure(t *testing.T) {
	s := NewSettings(48000, 20, 512, "default")
	first := s.Validate()
	second := s.Validate()
	assert.Equal(t, first.Error(), second.Error())
	assert.Equal(t, NewSettings(48000, 20, 512, "default"), s)
}

func TestSettings_String(t *testing.T) {
	s := NewSettings(48000, 24, 512, "alsa:hw:0")
	assert.Contains(t, s.String(), "SampleRate: 48000")
	assert.Contains(t, s.String(), `DeviceID: "alsa:hw:0"`)
	assert.Equal(t, "48000 Hz / 24 bit / 512 samples / alsa:hw:0", s.Label())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, NewSettings(44100, 16, 256, "default"), s)
	assert.NoError(t, s.Validate())
	assert.Equal(t, CD_QUALITY, s)
}
