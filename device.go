package proaudio

import (
	"fmt"
	"strconv"
	"strings"
)

// BackendKind identifies an audio subsystem. Values are ordered by probe priority.
type BackendKind int

const (
	BackendNone BackendKind = iota
	BackendPipeWire
	BackendPulse
	BackendALSA
)

// ProbeOrder is the order in which backends are tried
var ProbeOrder = []BackendKind{BackendPipeWire, BackendPulse, BackendALSA}

// String returns the device-id namespace of the backend
func (k BackendKind) String() string {
	switch k {
	case BackendPipeWire:
		return "pipewire"
	case BackendPulse:
		return "pulse"
	case BackendALSA:
		return "alsa"
	default:
		return "none"
	}
}

// DeviceID is a parsed "<backend>:<identifier>" device reference
type DeviceID struct {
	Backend    BackendKind // BackendNone for "default"
	Identifier string
}

// IsDefault reports whether the id names the system default device
func (d DeviceID) IsDefault() bool {
	return d.Backend == BackendNone || d.Identifier == "" || d.Identifier == DefaultDeviceID
}

func (d DeviceID) String() string {
	if d.Backend == BackendNone {
		return DefaultDeviceID
	}
	if d.Identifier == "" {
		return d.Backend.String()
	}
	return d.Backend.String() + ":" + d.Identifier
}

// ParseDeviceID parses ("alsa"|"pipewire"|"pulse"|"default") [":" identifier]
func ParseDeviceID(s string) (DeviceID, error) {
	prefix, ident, _ := strings.Cut(s, ":")

	var kind BackendKind
	switch prefix {
	case "default":
		return DeviceID{Backend: BackendNone, Identifier: ident}, nil
	case "pipewire":
		kind = BackendPipeWire
	case "pulse":
		kind = BackendPulse
	case "alsa":
		kind = BackendALSA
	default:
		return DeviceID{}, fmt.Errorf("unknown device namespace %q in %q", prefix, s)
	}

	return DeviceID{Backend: kind, Identifier: ident}, nil
}

// alsaCardDevice extracts the card and device numbers from "hw:C[,D]"
// or "plughw:C[,D]". Missing device defaults to 0.
func alsaCardDevice(ident string) (card, device int, ok bool) {
	_, rest, found := strings.Cut(ident, ":")
	if !found {
		return 0, 0, false
	}
	c, d, hasDevice := strings.Cut(rest, ",")

	card, err := strconv.Atoi(c)
	if err != nil || card < 0 {
		return 0, 0, false
	}
	if hasDevice {
		device, err = strconv.Atoi(d)
		if err != nil || device < 0 {
			return 0, 0, false
		}
	}
	return card, device, true
}

// Direction tells playback devices from capture devices
type Direction string

const (
	DirectionPlayback Direction = "playback"
	DirectionCapture  Direction = "capture"
)

// DeviceDescriptor describes one device exposed by the active backend
type DeviceDescriptor struct {
	ID          string
	Description string
	Backend     BackendKind
	Direction   Direction
	Default     bool
}
