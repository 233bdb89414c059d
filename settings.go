package proaudio

import (
	"errors"
	"fmt"
)

// Accepted ranges for Settings fields
const (
	MinSampleRate = 8000
	MaxSampleRate = 384000
	MinBufferSize = 64
	MaxBufferSize = 8192
)

// Fallback values used when a backend does not report a field
const (
	DefaultSampleRate = 44100
	DefaultBitDepth   = 16
	DefaultBufferSize = 256
	DefaultDeviceID   = "default"
)

// Validation errors
var (
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidBitDepth   = errors.New("invalid bit depth")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
	ErrEmptyDeviceID     = errors.New("empty device id")
)

// ValidationError names the first Settings field that failed validation
type ValidationError struct {
	Field string
	Value any
	err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v", e.err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// Settings is the system-wide audio output configuration.
//
// A Settings value may hold out-of-range fields; call Validate before
// handing it to anything that touches the system.
type Settings struct {
	SampleRate int    // Hz, 8000..384000
	BitDepth   int    // 16, 24 or 32
	BufferSize int    // frames per cycle, 64..8192
	DeviceID   string // "<backend>:<identifier>" or "default"
}

// NewSettings stores the given values unmodified. It never fails.
func NewSettings(sampleRate, bitDepth, bufferSize int, deviceID string) Settings {
	return Settings{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		BufferSize: bufferSize,
		DeviceID:   deviceID,
	}
}

// DefaultSettings returns the conservative fallback used by detection
func DefaultSettings() Settings {
	return NewSettings(DefaultSampleRate, DefaultBitDepth, DefaultBufferSize, DefaultDeviceID)
}

// Validate checks each field in order and reports the first one out of range
func (s Settings) Validate() error {
	if s.SampleRate < MinSampleRate || s.SampleRate > MaxSampleRate {
		return &ValidationError{Field: "sample_rate", Value: s.SampleRate, err: ErrInvalidSampleRate}
	}

	switch s.BitDepth {
	case 16, 24, 32:
	default:
		return &ValidationError{Field: "bit_depth", Value: s.BitDepth, err: ErrInvalidBitDepth}
	}

	if s.BufferSize < MinBufferSize || s.BufferSize > MaxBufferSize {
		return &ValidationError{Field: "buffer_size", Value: s.BufferSize, err: ErrInvalidBufferSize}
	}

	if s.DeviceID == "" {
		return &ValidationError{Field: "device_id", Value: s.DeviceID, err: ErrEmptyDeviceID}
	}

	return nil
}

// Format returns the sample format for the configured bit depth
func (s Settings) Format() SampleFormat {
	return FormatForBitDepth(s.BitDepth)
}

func (s Settings) String() string {
	return fmt.Sprintf("Settings{SampleRate: %d, BitDepth: %d, BufferSize: %d, DeviceID: %q}",
		s.SampleRate, s.BitDepth, s.BufferSize, s.DeviceID)
}

// Label renders settings the way front ends display them
func (s Settings) Label() string {
	return fmt.Sprintf("%d Hz / %d bit / %d samples / %s", s.SampleRate, s.BitDepth, s.BufferSize, s.DeviceID)
}
