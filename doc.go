// Package proaudio detects the active Linux audio backend and applies
// system-wide output settings (sample rate, bit depth, buffer size and
// default device) through a privileged, verified apply.
//
// Three backends are supported and probed in priority order; the first
// one whose status query answers is the active backend:
//   - PipeWire (pw-metadata, wpctl)
//   - the PulseAudio compatibility layer (pactl)
//   - raw ALSA (aplay, arecord, /proc/asound)
//
// # Basic Usage
//
// Detection:
//
//	settings, err := proaudio.DetectCurrentAudioSettings()
//	desc, err := proaudio.DetectAudioDevice()
//	devices, err := proaudio.DetectAllAudioDevices()
//
// Applying (blocks on the polkit prompt):
//
//	target := proaudio.NewSettings(48000, 24, 512, "default")
//	outcome, err := proaudio.ApplyAudioSettingsWithAuthBlocking(target)
//	switch {
//	case errors.Is(err, proaudio.ErrInvalidSettings):
//	case errors.Is(err, proaudio.ErrPrivilegeDenied):
//	case errors.Is(err, proaudio.ErrTimeout):
//	}
//
// Custom wiring with injected capabilities:
//
//	opts := proaudio.DefaultOptions()
//	opts.ApplyTimeout = 30 * time.Second
//	coord := proaudio.NewCoordinator(opts).WithExecutor(myExecutor)
//	outcome, err := coord.Apply(ctx, target)
//
// # Settings
//
// Settings may be constructed with any values; Validate enforces
// 8000..384000 Hz, 16/24/32 bit, 64..8192 frames and a non-empty device id.
// Device ids take the form "<backend>:<identifier>", e.g. "alsa:hw:0",
// "pipewire:56", "pulse:1", or the literal "default".
//
// # Verification
//
// After the elevated script exits zero the active backend is probed again.
// A full match yields OutcomeVerified; anything else (including a backend
// that does not answer) yields OutcomeAppliedUnverified with whatever was
// detected.
//
// # Requirements
//
// Applying requires pkexec (polkit) and an authentication agent. Detection
// needs at least one of pw-metadata, pactl or aplay in PATH.
package proaudio
