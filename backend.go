package proaudio

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Binaries invoked by probes and generated scripts
const (
	pwMetadataBin = "pw-metadata"
	wpctlBin      = "wpctl"
	pactlBin      = "pactl"
	aplayBin      = "aplay"
	arecordBin    = "arecord"
	catBin        = "cat"
	systemctlBin  = "systemctl"
	runuserBin    = "runuser"
)

// Backend is implemented once per BackendKind
type Backend interface {
	// Kind returns the backend tag
	Kind() BackendKind

	// StatusBinary is the binary whose presence gates probing
	StatusBinary() string

	// Probe runs the status query and any detail queries. It fails when the
	// status query fails or prints nothing.
	Probe(ctx context.Context, r CommandRunner) (string, error)

	// ParseSettings extracts settings from probe output, defaulting per field
	ParseSettings(raw string) Detection

	// Describe extracts a human-readable description of the active device
	Describe(raw string) string

	// ListDevices enumerates playback and capture devices
	ListDevices(ctx context.Context, r CommandRunner) ([]DeviceDescriptor, error)

	// BuildSteps maps target settings to backend-native configuration steps
	BuildSteps(target Settings, opts ScriptOptions) []Step
}

// BackendFor returns the implementation for kind, or nil for BackendNone
func BackendFor(kind BackendKind) Backend {
	return backendFor(kind, DefaultScriptPaths())
}

// backendFor lets ALSA read back the asound.conf the scripts write
func backendFor(kind BackendKind, paths ScriptPaths) Backend {
	switch kind {
	case BackendPipeWire:
		return pipeWireBackend{}
	case BackendPulse:
		return pulseBackend{}
	case BackendALSA:
		return alsaBackend{asoundConf: paths.AsoundConf}
	default:
		return nil
	}
}

// formatTokenPattern matches s16le, S24_LE, s24-32le, S24_3LE, S32LE ...
var formatTokenPattern = regexp.MustCompile(`(?i)\bs(16|24|32)(?:-32|_?3)?_?le\b`)

// parseBitDepth returns the bit depth of the first format token in s, or 0
func parseBitDepth(s string) int {
	m := formatTokenPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	return atoiOrZero(m[1])
}

// submatchInt returns the first capture group of re in s as a positive int, or 0
func submatchInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0
	}
	return atoiOrZero(m[1])
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// newDetection builds a Detection, substituting defaults for zero/empty fields
func newDetection(kind BackendKind, rate, depth, buffer int, device string) Detection {
	d := Detection{Backend: kind, Settings: DefaultSettings()}

	if rate > 0 {
		d.Settings.SampleRate = rate
	} else {
		d.Defaulted.SampleRate = true
	}
	if depth > 0 {
		d.Settings.BitDepth = depth
	} else {
		d.Defaulted.BitDepth = true
	}
	if buffer > 0 {
		d.Settings.BufferSize = buffer
	} else {
		d.Defaulted.BufferSize = true
	}
	if device != "" {
		d.Settings.DeviceID = device
	} else {
		d.Defaulted.DeviceID = true
	}

	return d
}

// runOptional runs a detail query and swallows its failure
func runOptional(ctx context.Context, r CommandRunner, name string, args ...string) string {
	out, err := r.Run(ctx, name, args...)
	if err != nil {
		return ""
	}
	return string(out)
}

func nonEmpty(out []byte) bool {
	return strings.TrimSpace(string(out)) != ""
}
