package proaudio

import (
	"fmt"
	"strings"
)

// SampleFormat is a little-endian signed integer sample encoding
type SampleFormat string

const (
	FORMAT_S16LE SampleFormat = "S16LE"
	FORMAT_S24LE SampleFormat = "S24LE"
	FORMAT_S32LE SampleFormat = "S32LE"
)

// FormatForBitDepth maps a bit depth to its sample format.
// Unknown depths map to S24LE.
func FormatForBitDepth(bitDepth int) SampleFormat {
	switch bitDepth {
	case 16:
		return FORMAT_S16LE
	case 24:
		return FORMAT_S24LE
	case 32:
		return FORMAT_S32LE
	default:
		return FORMAT_S24LE
	}
}

// BitDepth returns the sample width in bits
func (f SampleFormat) BitDepth() int {
	switch f {
	case FORMAT_S16LE:
		return 16
	case FORMAT_S32LE:
		return 32
	default:
		return 24
	}
}

// PulseName is the lowercase spelling used by daemon.conf and pactl
func (f SampleFormat) PulseName() string {
	return strings.ToLower(string(f))
}

// AlsaName is the spelling used by asound.conf and hw_params, e.g. S24_LE.
// Anything that is not a known format is reported as S24_LE.
func (f SampleFormat) AlsaName() string {
	s := string(f)
	if len(s) < 3 || !strings.HasSuffix(s, "LE") {
		return "S24_LE"
	}
	return s[:len(s)-2] + "_" + s[len(s)-2:]
}

// Common settings presets for convenience

var (
	// CD_QUALITY - 44.1kHz 16-bit, the conservative detection fallback
	CD_QUALITY = Settings{
		SampleRate: 44100,
		BitDepth:   16,
		BufferSize: 256,
		DeviceID:   DefaultDeviceID,
	}

	// STUDIO_48K_24BIT - 48kHz 24-bit (video and broadcast standard)
	STUDIO_48K_24BIT = Settings{
		SampleRate: 48000,
		BitDepth:   24,
		BufferSize: 512,
		DeviceID:   DefaultDeviceID,
	}

	// HIRES_96K_24BIT - 96kHz 24-bit high resolution
	HIRES_96K_24BIT = Settings{
		SampleRate: 96000,
		BitDepth:   24,
		BufferSize: 1024,
		DeviceID:   DefaultDeviceID,
	}

	HIRES_192K_32BIT = Settings{
		SampleRate: 192000,
		BitDepth:   32,
		BufferSize: 2048,
		DeviceID:   DefaultDeviceID,
	}
)

// Option is one selectable value with its display label
type Option struct {
	Value int
	Label string
}

// SampleRateOptions lists the sample rates offered to front ends
var SampleRateOptions = []Option{
	{44100, "44.1 kHz - CD Quality"},
	{48000, "48 kHz - Standard Audio"},
	{88200, "88.2 kHz - High Resolution"},
	{96000, "96 kHz - High Resolution"},
	{176400, "176.4 kHz - Studio Quality"},
	{192000, "192 kHz - Studio Quality"},
	{352800, "352.8 kHz - Ultra High Resolution"},
	{384000, "384 kHz - Ultra High Resolution"},
}

var BitDepthOptions = []Option{
	{16, "16 bit - CD Quality"},
	{24, "24 bit - High Resolution"},
	{32, "32 bit - Studio Quality"},
}

// BufferSizeOptions lists buffer sizes labelled with their latency at 48kHz
var BufferSizeOptions = bufferSizeOptions(48000, 64, 128, 256, 512, 1024, 2048, 4096, 8192)

func bufferSizeOptions(rate int, sizes ...int) []Option {
	opts := make([]Option, 0, len(sizes))
	for _, size := range sizes {
		opts = append(opts, Option{
			Value: size,
			Label: fmt.Sprintf("%d samples (%.1fms @%dkHz)", size, LatencyMillis(size, rate), rate/1000),
		})
	}
	return opts
}

// LatencyMillis returns the duration of one buffer of frames at rate
func LatencyMillis(frames, rate int) float64 {
	if rate <= 0 {
		return 0
	}
	return float64(frames) * 1000 / float64(rate)
}
